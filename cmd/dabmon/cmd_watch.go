package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dabmon/internal/logger"
	"dabmon/internal/telemetry"
)

// newWatchCmd creates the watch subcommand: periodic re-evaluation of a
// growing snapshot file.
func newWatchCmd() *cobra.Command {
	var (
		input    string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate a snapshot file on an interval",
		Long: `Watch re-reads the snapshot file on each tick, pushes readings it has
not seen before into a bounded series buffer, and runs an evaluation pass.
Cooldowns keep repeated violations from flooding the history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			db, store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer db.Close()

			engine, dispatcher, err := buildEngine(ctx, store)
			if err != nil {
				return err
			}
			defer dispatcher.Stop()

			series := telemetry.NewSeries(cfg.History.MaxEntries * 10)
			seen := 0

			evaluate := func() {
				readings, err := telemetry.LoadCSVFile(input)
				if err != nil {
					logger.Warn("failed to load snapshot", "path", input, "error", err.Error())
					return
				}
				telemetry.AddHealthScores(readings)

				if len(readings) < seen {
					// File was truncated or replaced; start over.
					logger.Info("snapshot shrank, resetting series", "rows", len(readings))
					series = telemetry.NewSeries(cfg.History.MaxEntries * 10)
					seen = 0
				}
				for _, r := range readings[seen:] {
					series.Push(r)
				}
				seen = len(readings)

				result := engine.Evaluate(ctx, series.Snapshot())
				for _, a := range result.Raised {
					printAlert(a)
				}
			}

			fmt.Printf("Watching %s every %v (Ctrl-C to stop)\n", input, interval)
			evaluate()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case <-ticker.C:
					evaluate()
				case <-sig:
					fmt.Println("\nStopping.")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "telemetry snapshot CSV (required)")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "evaluation interval")
	cmd.MarkFlagRequired("input")

	return cmd
}
