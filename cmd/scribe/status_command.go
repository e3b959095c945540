package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/preflight"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and environment readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				mark := "FAIL"
				if result.Passed {
					mark = "OK"
				}
				rows = append(rows, []string{result.Name, mark, result.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Check", "Result", "Detail"},
				rows,
			))

			if !preflight.Passed(results) {
				return fmt.Errorf("one or more preflight checks failed")
			}
			return nil
		},
	}
}
