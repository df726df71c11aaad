package alerts

import (
	"time"

	"dabmon/internal/config"
	"dabmon/internal/logger"
)

// historyLookup is the slice of store behavior the gate needs.
type historyLookup interface {
	LastRaised(metric string, kind Kind, severity Severity) (time.Time, bool)
}

// CooldownGate suppresses repeat alerts for the same (metric, kind,
// severity) bucket within a per-severity cooldown interval. Buckets are
// independent per kind, so a threshold alert does not silence a trend alert
// on the same metric.
type CooldownGate struct {
	enabled   bool
	durations map[Severity]time.Duration
}

// NewCooldownGate builds a gate from configured cooldown durations.
func NewCooldownGate(cfg config.CooldownConfig) *CooldownGate {
	return &CooldownGate{
		enabled: cfg.Enabled,
		durations: map[Severity]time.Duration{
			SeverityInfo:      cfg.Info,
			SeverityWarning:   cfg.Warning,
			SeverityCritical:  cfg.Critical,
			SeverityEmergency: cfg.Emergency,
		},
	}
}

// Enabled returns whether cooldown suppression is active.
func (g *CooldownGate) Enabled() bool {
	return g.enabled
}

// SetEnabled toggles cooldown suppression (disabled for tests and demos).
func (g *CooldownGate) SetEnabled(enabled bool) {
	g.enabled = enabled
}

// Duration returns the cooldown interval for a severity.
func (g *CooldownGate) Duration(s Severity) time.Duration {
	return g.durations[s]
}

// Allow reports whether the alert may be emitted at the given evaluation
// time, based on the most recent matching alert in history.
func (g *CooldownGate) Allow(history historyLookup, a Alert, now time.Time) bool {
	if !g.enabled {
		return true
	}

	last, ok := history.LastRaised(a.Metric, a.Kind, a.Severity)
	if !ok {
		return true
	}

	cooldown := g.durations[a.Severity]
	if now.Sub(last) < cooldown {
		logger.Debug("alert suppressed by cooldown",
			"metric", a.Metric,
			"kind", a.Kind.String(),
			"severity", a.Severity.String(),
			"last_raised", last,
			"cooldown", cooldown)
		return false
	}

	return true
}
