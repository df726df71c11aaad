package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"dabmon/internal/telemetry"
)

// newTrendCmd creates the trend subcommand: plot one metric's trend window.
func newTrendCmd() *cobra.Command {
	var (
		input       string
		metric      string
		windowHours float64
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Plot a metric over the trend window",
		RunE: func(cmd *cobra.Command, args []string) error {
			readings, err := telemetry.LoadCSVFile(input)
			if err != nil {
				return err
			}
			telemetry.AddHealthScores(readings)

			window := telemetry.Window(readings, parseWindow(windowHours))

			var values []float64
			for _, r := range window {
				if v, ok := r.Get(metric); ok {
					values = append(values, v)
				}
			}
			if len(values) < 2 {
				fmt.Printf("Not enough in-window data for %s.\n", metric)
				return nil
			}

			fmt.Println(asciigraph.Plot(values,
				asciigraph.Height(12),
				asciigraph.Caption(fmt.Sprintf("%s, last %gh (%d points)",
					metric, parseWindow(windowHours).Hours(), len(values)))))

			start, end := values[0], values[len(values)-1]
			if start != 0 {
				pct := (end - start) / abs(start) * 100
				fmt.Printf("\nChange: %+.2f%% (%.2f -> %.2f)\n", pct, start, end)
			} else {
				fmt.Println("\nChange: undefined (start value is zero)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "telemetry snapshot CSV (required)")
	cmd.Flags().StringVar(&metric, "metric", telemetry.MetricEfficiency, "metric to plot")
	cmd.Flags().Float64Var(&windowHours, "window", 0, "window in hours (default: trend window)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
