package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dabmon/internal/alerts"
)

// newHistoryCmd creates the history subcommand.
func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		metric     string
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show persisted alert history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			db, store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer db.Close()

			var list []alerts.Alert
			switch {
			case activeOnly:
				list, err = store.Active(ctx)
			case metric != "":
				list, err = store.HistoryForMetric(ctx, metric, limit)
			default:
				list, err = store.History(ctx, limit)
			}
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}

			if len(list) == 0 {
				fmt.Println("No alerts.")
				return nil
			}

			for _, a := range list {
				printAlert(a)
				fmt.Printf("        raised %s\n", humanize.Time(a.Timestamp))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum alerts to show (0 for all)")
	cmd.Flags().StringVar(&metric, "metric", "", "only show alerts for this metric")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only show unacknowledged alerts")

	return cmd
}

// newAckCmd creates the ack subcommand.
func newAckCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid alert id %q", args[0])
			}

			db, store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Acknowledge(ctx, id, user); err != nil {
				return err
			}
			fmt.Printf("Alert %d acknowledged.\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "who is acknowledging")

	return cmd
}

// newSummaryCmd creates the summary subcommand.
func newSummaryCmd() *cobra.Command {
	var windowHours float64

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Alert counts over a trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			db, store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer db.Close()

			summary, err := store.Summary(ctx, parseWindow(windowHours), time.Now())
			if err != nil {
				return fmt.Errorf("computing summary: %w", err)
			}

			printSummary(summary)
			return nil
		},
	}

	cmd.Flags().Float64Var(&windowHours, "window", 0, "window in hours (default: trend window)")

	return cmd
}
