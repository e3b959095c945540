package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/daemon"
	"scribe/internal/journal"
	"scribe/internal/logging"
	"scribe/internal/server"
	"scribe/internal/services/lark"
	"scribe/internal/workflow"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scribe daemon",
		Long:  "Starts the event intake server and both workflow workers, blocking until SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}

			clientOpts := []lark.Option{}
			if cfg.App.RequestTimeout > 0 {
				clientOpts = append(clientOpts, lark.WithTimeout(time.Duration(cfg.App.RequestTimeout)*time.Second))
			}
			client := lark.NewClient(cfg.App.AppID, cfg.App.AppSecret, cfg.App.APIHost, clientOpts...)

			manager := workflow.NewManager(cfg, client, store, logger)
			intake := server.New(cfg, manager, client, logger)

			d, err := daemon.New(cfg, store, manager, intake, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			d.Stop()
			return nil
		},
	}
}
