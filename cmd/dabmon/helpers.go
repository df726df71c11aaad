package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"dabmon/internal/alerts"
	"dabmon/internal/logger"
	"dabmon/internal/notify"
	"dabmon/internal/storage/sqlite"
)

// openAlertStore opens the persisted history database from configuration.
func openAlertStore() (*sqlite.DB, *sqlite.AlertStore, error) {
	db, err := sqlite.Open(cfg.History.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	return db, sqlite.NewAlertStore(db), nil
}

// buildEngine wires an engine to the persisted history and the configured
// notifiers. The returned dispatcher is started; callers stop it when done.
func buildEngine(ctx context.Context, store *sqlite.AlertStore) (*alerts.Engine, *notify.Dispatcher, error) {
	engine, err := alerts.NewEngine(cfg.Alerts, cfg.History.MaxEntries)
	if err != nil {
		return nil, nil, err
	}

	engine.SetSink(store)

	// Rehydrate the in-memory history so cooldown suppression and ID
	// assignment carry across process restarts.
	recent, err := store.History(ctx, cfg.History.MaxEntries)
	if err != nil {
		logger.Warn("failed to load persisted history, cooldown gate starts cold", "error", err.Error())
		if maxID, idErr := store.MaxID(ctx); idErr == nil {
			engine.Store().SeedNextID(maxID + 1)
		} else {
			logger.Warn("failed to read max persisted alert id", "error", idErr.Error())
		}
	} else {
		engine.Store().Restore(recent)
	}

	var notifiers []notify.Notifier
	if cfg.Notify.Webhook.Enabled {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.Notify.Webhook))
	}
	if cfg.Notify.Email.Enabled {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.Notify.Email))
	}

	dispatcher := notify.NewDispatcher(notifiers, cfg.Notify.Timeout)
	dispatcher.Start()
	engine.SetNotifier(dispatcher)

	return engine, dispatcher, nil
}

// severityColor returns the display color for a severity.
func severityColor(s alerts.Severity) *color.Color {
	switch s {
	case alerts.SeverityEmergency:
		return color.New(color.FgRed, color.Bold)
	case alerts.SeverityCritical:
		return color.New(color.FgRed)
	case alerts.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// printAlert renders one alert line.
func printAlert(a alerts.Alert) {
	sev := severityColor(a.Severity).Sprintf("%-9s", a.Severity.String())
	ack := " "
	if a.IsAcknowledged() {
		ack = "*"
	}
	fmt.Printf("%5d %s %s %-19s %-20s %s\n",
		a.ID, ack, sev,
		a.Kind.String(),
		a.Timestamp.Format("2006-01-02 15:04:05"),
		a.Message)
	for _, rec := range a.Recommendations {
		fmt.Printf("        - %s\n", rec)
	}
}

// printSummary renders an alert summary.
func printSummary(s alerts.Summary) {
	fmt.Printf("Alerts in the last %gh: %d (%d unacknowledged)\n",
		s.WindowHours, s.Total, s.Unacknowledged)
	for _, sev := range alerts.SeveritiesDesc {
		if n := s.BySeverity[sev]; n > 0 {
			fmt.Printf("  %s %d\n", severityColor(sev).Sprintf("%-9s", sev.String()), n)
		}
	}
	for _, kind := range []alerts.Kind{
		alerts.KindThreshold,
		alerts.KindTrend,
		alerts.KindHealthDegradation,
	} {
		if n := s.ByKind[kind]; n > 0 {
			fmt.Printf("  %-19s %d\n", kind.String(), n)
		}
	}
}

// parseWindow converts a window-hours flag into a duration.
func parseWindow(hours float64) time.Duration {
	if hours <= 0 {
		hours = cfg.Alerts.TrendWindowHours
	}
	return time.Duration(hours * float64(time.Hour))
}
