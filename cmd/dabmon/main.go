// dabmon monitors DAB converter telemetry snapshots and raises threshold-
// and trend-based alerts with cooldown suppression and persisted history.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dabmon/internal/config"
	"dabmon/internal/logger"
)

var (
	// Version info (set by ldflags)
	version = "dev"

	// Flags
	configPath string
	debug      bool

	// cfg is loaded once in the root PersistentPreRunE.
	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dabmon",
		Short: "DAB converter telemetry alerting",
		Long: `dabmon evaluates DAB power-converter telemetry snapshots against
per-metric threshold tables and percent-change trend tiers, suppresses
duplicate alerts with per-severity cooldowns, and keeps an acknowledgeable
alert history in SQLite.

Evaluation:
  dabmon check --input data.csv     Run one evaluation pass
  dabmon watch --input data.csv     Re-evaluate on an interval
  dabmon trend --input data.csv     Plot a metric's trend window

History:
  dabmon history                    Show persisted alerts
  dabmon ack <id>                   Acknowledge an alert
  dabmon summary                    Alert counts over a trailing window
  dabmon export                     Dump history as CSV`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.LoadConfigFromPath(configPath)
			} else {
				cfg, err = config.LoadConfig()
			}
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			level := logger.ParseLevel(cfg.Log.Level)
			if debug {
				level = logger.LevelDebug
			}
			logger.InitLogger(level, cfg.Log.Path)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/dabmon/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newCheckCmd(),
		newWatchCmd(),
		newTrendCmd(),
		newHistoryCmd(),
		newAckCmd(),
		newSummaryCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
