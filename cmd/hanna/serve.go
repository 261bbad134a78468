package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hanna-ai/internal/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the sync scheduler",
	Long: `Start the HTTP API and the sync scheduler.

On start every sync job still marked active is re-registered, so timers survive
restarts. SIGINT / SIGTERM stop accepting requests and wait for in-flight sync
passes to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return bootstrap.Run(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
