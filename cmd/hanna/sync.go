package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"hanna-ai/internal/bootstrap"
	"hanna-ai/internal/data"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and run sync jobs",
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one sync pass for an existing job and print the result",
	Long: `Run one sync pass for an existing job and print the result as JSON.

The pass takes the same Redis per-job lock as the scheduler, so it is skipped
if the server is syncing the same job right now. Without data.redis_addr the
lock only lives inside one process and cannot see the server's passes, so the
command refuses to run unless --local is given (use it only when no server is
running against the same database).

Only active jobs can be run; start a stopped job through the API first.

Example:
  hanna sync run --user 9fA2x --agent my-bot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		agentID, _ := cmd.Flags().GetString("agent")
		local, _ := cmd.Flags().GetBool("local")

		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.Data.RedisAddr == "" && !local {
			return errors.New("data.redis_addr is not set, the pass lock cannot guard against a running server; pass --local to run anyway")
		}

		ctx := context.Background()
		d, cleanup, err := data.NewData(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		app, err := bootstrap.NewApp(cfg, d, log)
		if err != nil {
			return err
		}
		res, err := app.Sync.RunOnce(ctx, userID, agentID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	syncRunCmd.Flags().String("user", "", "user id owning the job")
	syncRunCmd.Flags().String("agent", "", "Chatbase agent id of the job")
	syncRunCmd.Flags().Bool("local", false, "run without the Redis pass lock (no server may be running)")
	_ = syncRunCmd.MarkFlagRequired("user")
	_ = syncRunCmd.MarkFlagRequired("agent")

	syncCmd.AddCommand(syncRunCmd)
	rootCmd.AddCommand(syncCmd)
}
