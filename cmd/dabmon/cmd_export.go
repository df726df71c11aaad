package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dabmon/internal/alerts"
)

// newExportCmd creates the export subcommand: flattened CSV of the history.
func newExportCmd() *cobra.Command {
	var (
		out   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export alert history as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			db, store, err := openAlertStore()
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := store.History(ctx, limit)
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := alerts.WriteCSV(w, list); err != nil {
				return err
			}
			if out != "" {
				fmt.Printf("Exported %d alert(s) to %s\n", len(list), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum alerts to export (0 for all)")

	return cmd
}
