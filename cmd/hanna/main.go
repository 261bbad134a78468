package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hanna-ai/internal/conf"
	"hanna-ai/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hanna",
	Short: "HannaAI backend: Google Drive to Chatbase knowledge sync",
	Long: `HannaAI backend service.

Runs the HTTP API used by the HannaAI front end and the background scheduler
that keeps each user's Chatbase agent in sync with a Google Drive folder.

Configuration is read from --config (or ./config.*) and HANNA_* environment
variables, e.g. HANNA_SYNC_INTERVAL=5m overrides sync.interval.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, toml, json or env)")
}

// loadRuntime 读配置并按配置建 logger，子命令共用
func loadRuntime() (*conf.Config, *zap.Logger, error) {
	cfg, err := conf.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log, cfg.App.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
