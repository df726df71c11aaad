package alerts

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/VividCortex/ewma"

	"dabmon/internal/config"
	"dabmon/internal/logger"
	"dabmon/internal/telemetry"
)

// TrendTier is one signed percent-change boundary. The sign encodes the
// degrading direction: negative boundaries fire on drops, positive on rises.
type TrendTier struct {
	Severity Severity
	Boundary float64
}

// Violated reports whether the percent change breaches the boundary.
func (t TrendTier) Violated(pctChange float64) bool {
	if t.Boundary < 0 {
		return pctChange <= t.Boundary
	}
	return pctChange >= t.Boundary
}

// TrendTable holds one metric's trend tiers, most severe first.
type TrendTable struct {
	Metric string
	Tiers  []TrendTier
}

// NewTrendTable builds a validated trend table from configuration.
func NewTrendTable(cfg config.TrendConfig) (TrendTable, error) {
	table := TrendTable{Metric: cfg.Metric}

	for name, boundary := range cfg.Tiers {
		sev, err := ParseSeverity(name)
		if err != nil {
			return table, fmt.Errorf("trend table %q: %w", cfg.Metric, err)
		}
		if boundary == 0 {
			return table, fmt.Errorf("trend table %q: %s boundary must be non-zero", cfg.Metric, name)
		}
		table.Tiers = append(table.Tiers, TrendTier{Severity: sev, Boundary: boundary})
	}

	sort.Slice(table.Tiers, func(i, j int) bool {
		return table.Tiers[i].Severity > table.Tiers[j].Severity
	})

	for i := 1; i < len(table.Tiers); i++ {
		worse, milder := table.Tiers[i-1], table.Tiers[i]
		if (worse.Boundary < 0) != (milder.Boundary < 0) {
			return table, fmt.Errorf("trend table %q: tiers must share one sign", cfg.Metric)
		}
		if math.Abs(worse.Boundary) <= math.Abs(milder.Boundary) {
			return table, fmt.Errorf("trend table %q: %s boundary (%.2f) does not exceed %s boundary (%.2f) in magnitude",
				cfg.Metric, worse.Severity, worse.Boundary, milder.Severity, milder.Boundary)
		}
	}

	return table, nil
}

// Classify returns the single highest-severity tier the percent change
// violates.
func (t *TrendTable) Classify(pctChange float64) (TrendTier, bool) {
	for _, tier := range t.Tiers {
		if tier.Violated(pctChange) {
			return tier, true
		}
	}
	return TrendTier{}, false
}

// TrendAnalyzer computes percent-change trends over a trailing window and
// classifies their magnitude.
type TrendAnalyzer struct {
	tables []TrendTable
	window time.Duration
}

// NewTrendAnalyzer builds an analyzer from configured trend tables.
func NewTrendAnalyzer(cfgs []config.TrendConfig, windowHours float64) (*TrendAnalyzer, error) {
	if windowHours <= 0 {
		return nil, fmt.Errorf("trend window must be positive, got %g hours", windowHours)
	}
	a := &TrendAnalyzer{
		window: time.Duration(windowHours * float64(time.Hour)),
	}
	for _, cfg := range cfgs {
		table, err := NewTrendTable(cfg)
		if err != nil {
			return nil, err
		}
		a.tables = append(a.tables, table)
	}
	return a, nil
}

// WindowHours returns the configured lookback window in hours.
func (a *TrendAnalyzer) WindowHours() float64 {
	return a.window.Hours()
}

// Check computes trends over the window ending at the latest reading in the
// sequence and returns one alert per violated table. Fewer than two
// in-window points, or a zero start value, yields no result for that metric:
// the trend is undefined, not 0%.
func (a *TrendAnalyzer) Check(readings []telemetry.Reading) []Alert {
	window := telemetry.Window(readings, a.window)
	if len(window) < 2 {
		return nil
	}

	var alerts []Alert

	for i := range a.tables {
		table := &a.tables[i]

		detail, endTS, ok := a.measure(window, table.Metric)
		if !ok {
			continue
		}

		tier, violated := table.Classify(detail.PctChange)
		if !violated {
			continue
		}

		kind := KindTrend
		if table.Metric == telemetry.MetricHealthScore {
			kind = KindHealthDegradation
		}

		d := detail
		alerts = append(alerts, Alert{
			Timestamp: endTS,
			Severity:  tier.Severity,
			Kind:      kind,
			Metric:    table.Metric,
			Value:     detail.End,
			Trend:     &d,
			Message:   trendMessage(table.Metric, detail.PctChange, a.window.Hours()),
		})
	}

	return alerts
}

// measure computes the trend detail for one metric over the window.
func (a *TrendAnalyzer) measure(window []telemetry.Reading, metric string) (TrendDetail, time.Time, bool) {
	var (
		values []float64
		endTS  time.Time
	)
	for _, r := range window {
		if v, ok := r.Get(metric); ok {
			values = append(values, v)
			endTS = r.Timestamp
		}
	}
	if len(values) < 2 {
		return TrendDetail{}, time.Time{}, false
	}

	start, end := values[0], values[len(values)-1]
	if start == 0 {
		// Division by zero: the trend is undefined for this metric.
		logger.Debug("zero start value, trend undefined", "metric", metric)
		return TrendDetail{}, time.Time{}, false
	}

	smoothed := ewma.NewMovingAverage()
	var sum float64
	for _, v := range values {
		sum += v
		smoothed.Add(v)
	}

	return TrendDetail{
		Start:       start,
		End:         end,
		PctChange:   (end - start) / math.Abs(start) * 100,
		Average:     sum / float64(len(values)),
		Smoothed:    smoothed.Value(),
		WindowHours: a.window.Hours(),
	}, endTS, true
}
