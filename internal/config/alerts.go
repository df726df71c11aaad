package config

import (
	"fmt"
	"time"
)

// Severity names in increasing order of severity. The alerts package
// defines the typed enum; config validates against the same closed set.
var severityOrder = []string{"info", "warning", "critical", "emergency"}

// Threshold directions.
const (
	DirectionLowerIsWorse  = "lower_is_worse"
	DirectionHigherIsWorse = "higher_is_worse"
)

// AlertsConfig holds alert engine configuration.
type AlertsConfig struct {
	// Enabled is the master switch for alert evaluation.
	Enabled bool `mapstructure:"enabled"`

	// TrendWindowHours is the trailing window for trend analysis.
	TrendWindowHours float64 `mapstructure:"trend_window_hours"`

	// Cooldown configures duplicate-alert suppression.
	Cooldown CooldownConfig `mapstructure:"cooldown"`

	// Thresholds are the per-metric threshold tables.
	Thresholds []ThresholdConfig `mapstructure:"thresholds"`

	// Trends are the per-metric signed percent-change tiers.
	Trends []TrendConfig `mapstructure:"trends"`
}

// CooldownConfig holds per-severity cooldown durations. More severe alerts
// repeat more often, so durations must strictly decrease with severity.
type CooldownConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Info      time.Duration `mapstructure:"info"`
	Warning   time.Duration `mapstructure:"warning"`
	Critical  time.Duration `mapstructure:"critical"`
	Emergency time.Duration `mapstructure:"emergency"`
}

// ThresholdConfig is one metric's threshold table.
type ThresholdConfig struct {
	// Metric is the telemetry metric name.
	Metric string `mapstructure:"metric"`

	// Direction is lower_is_worse or higher_is_worse.
	Direction string `mapstructure:"direction"`

	// Tiers maps severity names to boundaries.
	Tiers map[string]float64 `mapstructure:"tiers"`
}

// TrendConfig is one metric's trend tier table. Boundaries are signed
// percent changes; the sign encodes the degrading direction.
type TrendConfig struct {
	Metric string             `mapstructure:"metric"`
	Tiers  map[string]float64 `mapstructure:"tiers"`
}

// defaultThresholds mirrors the converter's stock operating limits.
func defaultThresholds() []ThresholdConfig {
	return []ThresholdConfig{
		{
			Metric:    "efficiency_percent",
			Direction: DirectionLowerIsWorse,
			Tiers:     map[string]float64{"warning": 95.0, "critical": 90.0},
		},
		{
			Metric:    "temperature_C",
			Direction: DirectionHigherIsWorse,
			Tiers:     map[string]float64{"warning": 60.0, "critical": 70.0},
		},
		{
			Metric:    "health_score",
			Direction: DirectionLowerIsWorse,
			Tiers:     map[string]float64{"warning": 80.0, "critical": 60.0},
		},
	}
}

// defaultTrends flags a 5% degradation as warning and a 10% degradation
// as critical over the trend window.
func defaultTrends() []TrendConfig {
	return []TrendConfig{
		{Metric: "efficiency_percent", Tiers: map[string]float64{"warning": -5.0, "critical": -10.0}},
		{Metric: "temperature_C", Tiers: map[string]float64{"warning": 5.0, "critical": 10.0}},
		{Metric: "health_score", Tiers: map[string]float64{"warning": -5.0, "critical": -10.0}},
	}
}

func severityRank(name string) (int, bool) {
	for i, s := range severityOrder {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// Validate checks ordering invariants across thresholds, trends, and
// cooldowns. Defects here corrupt highest-tier-first matching, so they are
// configuration errors, not runtime warnings.
func (c *AlertsConfig) Validate() error {
	if c.TrendWindowHours <= 0 {
		return fmt.Errorf("alerts.trend_window_hours must be positive, got %v", c.TrendWindowHours)
	}

	seen := make(map[string]bool)
	for _, t := range c.Thresholds {
		if t.Metric == "" {
			return fmt.Errorf("alerts.thresholds entry is missing a metric name")
		}
		if seen[t.Metric] {
			return fmt.Errorf("alerts.thresholds has duplicate entry for metric %q", t.Metric)
		}
		seen[t.Metric] = true
		if err := t.Validate(); err != nil {
			return err
		}
	}

	seen = make(map[string]bool)
	for _, t := range c.Trends {
		if t.Metric == "" {
			return fmt.Errorf("alerts.trends entry is missing a metric name")
		}
		if seen[t.Metric] {
			return fmt.Errorf("alerts.trends has duplicate entry for metric %q", t.Metric)
		}
		seen[t.Metric] = true
		if err := t.Validate(); err != nil {
			return err
		}
	}

	return c.Cooldown.Validate()
}

// Validate checks that tiers use known severities and that boundaries are
// monotonically stricter in the worse direction as severity increases.
func (t *ThresholdConfig) Validate() error {
	if t.Direction != DirectionLowerIsWorse && t.Direction != DirectionHigherIsWorse {
		return fmt.Errorf("thresholds.%s: direction must be %s or %s, got %q",
			t.Metric, DirectionLowerIsWorse, DirectionHigherIsWorse, t.Direction)
	}
	if len(t.Tiers) == 0 {
		return fmt.Errorf("thresholds.%s: at least one tier is required", t.Metric)
	}

	for name := range t.Tiers {
		if _, ok := severityRank(name); !ok {
			return fmt.Errorf("thresholds.%s: unknown severity %q", t.Metric, name)
		}
	}

	// Walk configured tiers from least to most severe and require each
	// boundary to be strictly stricter than the previous one.
	var prev *float64
	var prevName string
	for _, name := range severityOrder {
		boundary, ok := t.Tiers[name]
		if !ok {
			continue
		}
		if prev != nil {
			stricter := boundary > *prev
			if t.Direction == DirectionLowerIsWorse {
				stricter = boundary < *prev
			}
			if !stricter {
				return fmt.Errorf("thresholds.%s: %s boundary (%.2f) must be stricter than %s boundary (%.2f) for direction %s",
					t.Metric, name, boundary, prevName, *prev, t.Direction)
			}
		}
		b := boundary
		prev = &b
		prevName = name
	}

	return nil
}

// Validate checks that trend tiers use known severities, share one sign,
// and grow in magnitude with severity.
func (t *TrendConfig) Validate() error {
	if len(t.Tiers) == 0 {
		return fmt.Errorf("trends.%s: at least one tier is required", t.Metric)
	}

	var prev *float64
	var prevName string
	for _, name := range severityOrder {
		boundary, ok := t.Tiers[name]
		if !ok {
			continue
		}
		if boundary == 0 {
			return fmt.Errorf("trends.%s: %s boundary must be non-zero", t.Metric, name)
		}
		if prev != nil {
			if (boundary < 0) != (*prev < 0) {
				return fmt.Errorf("trends.%s: tiers must share one sign, got %.2f and %.2f",
					t.Metric, *prev, boundary)
			}
			if abs(boundary) <= abs(*prev) {
				return fmt.Errorf("trends.%s: %s boundary (%.2f) must exceed %s boundary (%.2f) in magnitude",
					t.Metric, name, boundary, prevName, *prev)
			}
		}
		b := boundary
		prev = &b
		prevName = name
	}

	for name := range t.Tiers {
		if _, ok := severityRank(name); !ok {
			return fmt.Errorf("trends.%s: unknown severity %q", t.Metric, name)
		}
	}

	return nil
}

// Validate checks that cooldown durations strictly decrease as severity
// increases, so more severe alerts re-notify sooner.
func (c *CooldownConfig) Validate() error {
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"info", c.Info},
		{"warning", c.Warning},
		{"critical", c.Critical},
		{"emergency", c.Emergency},
	}

	for i, entry := range durations {
		if entry.d <= 0 {
			return fmt.Errorf("alerts.cooldown.%s must be positive, got %v", entry.name, entry.d)
		}
		if i > 0 && entry.d >= durations[i-1].d {
			return fmt.Errorf("alerts.cooldown.%s (%v) must be shorter than alerts.cooldown.%s (%v)",
				entry.name, entry.d, durations[i-1].name, durations[i-1].d)
		}
	}

	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
