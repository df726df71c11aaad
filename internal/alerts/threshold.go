package alerts

import (
	"fmt"
	"sort"

	"dabmon/internal/config"
	"dabmon/internal/logger"
	"dabmon/internal/telemetry"
)

// ThresholdTier is one severity boundary in a threshold table.
type ThresholdTier struct {
	Severity Severity
	Boundary float64
}

// ThresholdTable holds one metric's ordered severity boundaries. Tiers are
// kept sorted most severe first so classification can return the first
// violated tier.
type ThresholdTable struct {
	Metric    string
	Direction Direction
	Tiers     []ThresholdTier
}

// NewThresholdTable builds a validated table from configuration.
func NewThresholdTable(cfg config.ThresholdConfig) (ThresholdTable, error) {
	table := ThresholdTable{
		Metric:    cfg.Metric,
		Direction: Direction(cfg.Direction),
	}
	if !table.Direction.IsValid() {
		return table, fmt.Errorf("threshold table %q: invalid direction %q", cfg.Metric, cfg.Direction)
	}

	for name, boundary := range cfg.Tiers {
		sev, err := ParseSeverity(name)
		if err != nil {
			return table, fmt.Errorf("threshold table %q: %w", cfg.Metric, err)
		}
		table.Tiers = append(table.Tiers, ThresholdTier{Severity: sev, Boundary: boundary})
	}

	sort.Slice(table.Tiers, func(i, j int) bool {
		return table.Tiers[i].Severity > table.Tiers[j].Severity
	})

	// Boundaries must be monotonically stricter in the worse direction as
	// severity increases; otherwise highest-tier-first matching is wrong.
	for i := 1; i < len(table.Tiers); i++ {
		worse, milder := table.Tiers[i-1], table.Tiers[i]
		stricter := worse.Boundary > milder.Boundary
		if table.Direction == LowerIsWorse {
			stricter = worse.Boundary < milder.Boundary
		}
		if !stricter {
			return table, fmt.Errorf("threshold table %q: %s boundary (%.2f) is not stricter than %s boundary (%.2f)",
				cfg.Metric, worse.Severity, worse.Boundary, milder.Severity, milder.Boundary)
		}
	}

	return table, nil
}

// Classify returns the single highest-severity tier the value violates.
func (t *ThresholdTable) Classify(value float64) (ThresholdTier, bool) {
	for _, tier := range t.Tiers {
		if t.Direction.Violated(value, tier.Boundary) {
			return tier, true
		}
	}
	return ThresholdTier{}, false
}

// Classifier maps the latest reading's metrics to severity tiers.
type Classifier struct {
	tables []ThresholdTable
}

// NewClassifier builds a classifier from configured threshold tables,
// failing fast on ordering defects.
func NewClassifier(cfgs []config.ThresholdConfig) (*Classifier, error) {
	c := &Classifier{}
	for _, cfg := range cfgs {
		table, err := NewThresholdTable(cfg)
		if err != nil {
			return nil, err
		}
		c.tables = append(c.tables, table)
	}
	return c, nil
}

// Check classifies each configured metric of the reading, returning one
// alert per violated table. A metric missing from the reading is skipped,
// not an error.
func (c *Classifier) Check(reading telemetry.Reading) []Alert {
	var alerts []Alert

	for i := range c.tables {
		table := &c.tables[i]
		value, ok := reading.Get(table.Metric)
		if !ok {
			logger.Debug("metric absent from reading, skipping threshold check", "metric", table.Metric)
			continue
		}

		tier, violated := table.Classify(value)
		if !violated {
			continue
		}

		boundary := tier.Boundary
		alerts = append(alerts, Alert{
			Timestamp: reading.Timestamp,
			Severity:  tier.Severity,
			Kind:      KindThreshold,
			Metric:    table.Metric,
			Value:     value,
			Threshold: &boundary,
			Message:   thresholdMessage(table.Metric, value, boundary),
		})
	}

	return alerts
}

// Tables returns the configured threshold tables.
func (c *Classifier) Tables() []ThresholdTable {
	return c.tables
}
