package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dabmon/internal/telemetry"
)

// newCheckCmd creates the check subcommand: one evaluation pass over a
// telemetry snapshot.
func newCheckCmd() *cobra.Command {
	var (
		input      string
		noCooldown bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one alert evaluation pass over a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			readings, err := telemetry.LoadCSVFile(input)
			if err != nil {
				return err
			}
			telemetry.AddHealthScores(readings)

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

			if noCooldown {
				engine.SetCooldownEnabled(false)
			}

			result := engine.Evaluate(ctx, readings)

			if len(result.Raised) == 0 {
				fmt.Println("No new alerts.")
			} else {
				fmt.Printf("%d new alert(s):\n", len(result.Raised))
				for _, a := range result.Raised {
					printAlert(a)
				}
			}
			fmt.Println()
			printSummary(result.Summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "telemetry snapshot CSV (required)")
	cmd.Flags().BoolVar(&noCooldown, "no-cooldown", false, "disable cooldown suppression")
	cmd.MarkFlagRequired("input")

	return cmd
}
