package alerts

import (
	"math"
	"testing"
	"time"

	"dabmon/internal/config"
	"dabmon/internal/telemetry"
)

func trendSeries(t *testing.T, metric string, points []struct {
	offset time.Duration
	value  float64
}) []telemetry.Reading {
	t.Helper()
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var readings []telemetry.Reading
	for _, p := range points {
		r := telemetry.NewReading(t0.Add(p.offset))
		r.Set(metric, p.value)
		readings = append(readings, r)
	}
	return readings
}

func defaultAnalyzer(t *testing.T) *TrendAnalyzer {
	t.Helper()
	a, err := NewTrendAnalyzer([]config.TrendConfig{
		{Metric: "health_score", Tiers: map[string]float64{"warning": -5.0, "critical": -10.0}},
		{Metric: "temperature_C", Tiers: map[string]float64{"warning": 5.0, "critical": 10.0}},
	}, 24)
	if err != nil {
		t.Fatalf("unexpected error building analyzer: %v", err)
	}
	return a
}

func TestTrendPctChange(t *testing.T) {
	a := defaultAnalyzer(t)

	// health_score 90 -> 80 over 6h inside a 24h window.
	readings := trendSeries(t, "health_score", []struct {
		offset time.Duration
		value  float64
	}{
		{0, 90.0},
		{6 * time.Hour, 80.0},
	})

	got := a.Check(readings)
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(got))
	}

	alert := got[0]
	if alert.Trend == nil {
		t.Fatal("expected trend detail")
	}

	wantPct := (80.0 - 90.0) / 90.0 * 100
	if math.Abs(alert.Trend.PctChange-wantPct) > 1e-9 {
		t.Errorf("expected pct change %.4f, got %.4f", wantPct, alert.Trend.PctChange)
	}
	if alert.Trend.Start != 90.0 || alert.Trend.End != 80.0 {
		t.Errorf("expected start/end 90/80, got %.1f/%.1f", alert.Trend.Start, alert.Trend.End)
	}
	if alert.Trend.WindowHours != 24 {
		t.Errorf("expected 24h window, got %g", alert.Trend.WindowHours)
	}

	// -11.11% breaches the -10% critical tier; highest tier wins.
	if alert.Severity != SeverityCritical {
		t.Errorf("expected critical, got %s", alert.Severity)
	}

	// health_score trends surface as degradation alerts.
	if alert.Kind != KindHealthDegradation {
		t.Errorf("expected health_degradation, got %s", alert.Kind)
	}
}

func TestTrendSignMatchesDirection(t *testing.T) {
	a := defaultAnalyzer(t)

	// Rising temperature: positive tiers fire, pct is positive.
	readings := trendSeries(t, "temperature_C", []struct {
		offset time.Duration
		value  float64
	}{
		{0, 50.0},
		{2 * time.Hour, 52.0},
		{4 * time.Hour, 54.0},
	})

	got := a.Check(readings)
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(got))
	}
	if got[0].Kind != KindTrend {
		t.Errorf("expected trend kind, got %s", got[0].Kind)
	}
	if got[0].Trend.PctChange <= 0 {
		t.Errorf("expected positive pct change, got %.2f", got[0].Trend.PctChange)
	}

	// A falling temperature must not fire a positive-signed table.
	falling := trendSeries(t, "temperature_C", []struct {
		offset time.Duration
		value  float64
	}{
		{0, 54.0},
		{4 * time.Hour, 50.0},
	})
	if got := a.Check(falling); len(got) != 0 {
		t.Errorf("expected no alerts for improving temperature, got %d", len(got))
	}
}

func TestTrendZeroStartUndefined(t *testing.T) {
	a := defaultAnalyzer(t)

	readings := trendSeries(t, "health_score", []struct {
		offset time.Duration
		value  float64
	}{
		{0, 0.0},
		{6 * time.Hour, -50.0},
	})

	// start == 0: the trend is undefined, not 0% and not an alert.
	if got := a.Check(readings); len(got) != 0 {
		t.Errorf("expected no alerts for zero start value, got %d", len(got))
	}
}

func TestTrendNeedsTwoInWindowPoints(t *testing.T) {
	a := defaultAnalyzer(t)

	// Two points 48h apart: only one falls inside the 24h window.
	readings := trendSeries(t, "health_score", []struct {
		offset time.Duration
		value  float64
	}{
		{0, 90.0},
		{48 * time.Hour, 40.0},
	})

	if got := a.Check(readings); len(got) != 0 {
		t.Errorf("expected no alerts with one in-window point, got %d", len(got))
	}

	if got := a.Check(readings[1:]); len(got) != 0 {
		t.Errorf("expected no alerts with a single reading, got %d", len(got))
	}
	if got := a.Check(nil); len(got) != 0 {
		t.Errorf("expected no alerts for empty input, got %d", len(got))
	}
}

func TestTrendWindowAnchoredAtLatestReading(t *testing.T) {
	a := defaultAnalyzer(t)

	// Old data far in the past must still analyze: the window ends at the
	// latest reading, not at wall-clock now.
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	r1 := telemetry.NewReading(t0)
	r1.Set("health_score", 90.0)
	r2 := telemetry.NewReading(t0.Add(6 * time.Hour))
	r2.Set("health_score", 80.0)

	got := a.Check([]telemetry.Reading{r1, r2})
	if len(got) != 1 {
		t.Fatalf("expected 1 alert on historical data, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(t0.Add(6 * time.Hour)) {
		t.Errorf("alert timestamp should be the latest in-window reading, got %v", got[0].Timestamp)
	}
}

func TestTrendAverages(t *testing.T) {
	a := defaultAnalyzer(t)

	readings := trendSeries(t, "health_score", []struct {
		offset time.Duration
		value  float64
	}{
		{0, 90.0},
		{3 * time.Hour, 85.0},
		{6 * time.Hour, 80.0},
	})

	got := a.Check(readings)
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(got))
	}

	trend := got[0].Trend
	if math.Abs(trend.Average-85.0) > 1e-9 {
		t.Errorf("expected arithmetic mean 85.0, got %.4f", trend.Average)
	}
	if trend.Smoothed < 80.0 || trend.Smoothed > 90.0 {
		t.Errorf("smoothed value %.2f outside observed range [80, 90]", trend.Smoothed)
	}
}

func TestNewTrendTableRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TrendConfig
	}{
		{
			"mixed signs",
			config.TrendConfig{Metric: "health_score", Tiers: map[string]float64{"warning": -5.0, "critical": 10.0}},
		},
		{
			"non-increasing magnitude",
			config.TrendConfig{Metric: "health_score", Tiers: map[string]float64{"warning": -10.0, "critical": -5.0}},
		},
		{
			"zero boundary",
			config.TrendConfig{Metric: "health_score", Tiers: map[string]float64{"warning": 0}},
		},
		{
			"unknown severity",
			config.TrendConfig{Metric: "health_score", Tiers: map[string]float64{"disaster": -5.0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTrendTable(tt.cfg); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
