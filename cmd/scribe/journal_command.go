package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scribe/internal/journal"
)

func newJournalCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	var workflowID string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded workflow stage transitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			if store == nil {
				return fmt.Errorf("journaling is disabled (set journal.dir in %s)", cmdCtx.configPath)
			}
			defer store.Close()

			var entries []journal.Entry
			if workflowID != "" {
				entries, err = store.WorkflowHistory(cmd.Context(), workflowID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transitions recorded.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					shortID(entry.WorkflowID),
					entry.MeetingID,
					stageLabel(entry.Stage),
					entry.Status,
					entry.Detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Time", "Workflow", "Meeting", "Stage", "Status", "Detail"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of transitions to show")
	cmd.Flags().StringVar(&workflowID, "workflow", "", "Show the full history of one workflow ID")
	return cmd
}

// stageLabel prettifies a snake_case stage name for display.
func stageLabel(stage string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(stage, "_", " "))
}

// shortID truncates a UUID to its first group for table display.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}
