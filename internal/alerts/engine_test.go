package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dabmon/internal/config"
	"dabmon/internal/telemetry"
)

func testAlertsConfig() config.AlertsConfig {
	return config.AlertsConfig{
		Enabled:          true,
		TrendWindowHours: 24,
		Cooldown:         testCooldowns(),
		Thresholds: []config.ThresholdConfig{
			{
				Metric:    "efficiency_percent",
				Direction: "lower_is_worse",
				Tiers:     map[string]float64{"warning": 95.0, "critical": 90.0},
			},
			{
				Metric:    "health_score",
				Direction: "lower_is_worse",
				Tiers:     map[string]float64{"warning": 80.0, "critical": 60.0},
			},
		},
		Trends: []config.TrendConfig{
			{Metric: "health_score", Tiers: map[string]float64{"warning": -5.0, "critical": -10.0}},
		},
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testAlertsConfig(), 100)
	if err != nil {
		t.Fatalf("unexpected error building engine: %v", err)
	}
	return e
}

// recordingNotifier captures notified alerts.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
}

func (n *recordingNotifier) Notify(a Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

// capturingSink retains every persisted alert, standing in for durable
// history across engine lifetimes.
type capturingSink struct {
	mu    sync.Mutex
	saved []Alert
}

func (s *capturingSink) SaveAlert(ctx context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *a)
	return nil
}

func (s *capturingSink) Acknowledge(ctx context.Context, id int64, by string) error {
	return nil
}

func (s *capturingSink) all() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.saved...)
}

// failingSink always fails persistence.
type failingSink struct{}

func (failingSink) SaveAlert(ctx context.Context, a *Alert) error {
	return errors.New("disk on fire")
}

func (failingSink) Acknowledge(ctx context.Context, id int64, by string) error {
	return errors.New("disk on fire")
}

func engineSeries(offsets []time.Duration, healthValues []float64, efficiency float64) []telemetry.Reading {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var readings []telemetry.Reading
	for i, off := range offsets {
		r := telemetry.NewReading(t0.Add(off))
		r.Set("health_score", healthValues[i])
		r.Set("efficiency_percent", efficiency)
		r.ZVS = true
		readings = append(readings, r)
	}
	return readings
}

func TestEvaluateRaisesThresholdAndTrend(t *testing.T) {
	e := testEngine(t)

	// Efficiency 88 breaches the critical threshold. Health 90 -> 80
	// breaches the critical trend tier, and the final value sits on the
	// inclusive warning boundary, so the warning threshold fires too.
	readings := engineSeries(
		[]time.Duration{0, 6 * time.Hour},
		[]float64{90.0, 80.0},
		88.0,
	)

	result := e.Evaluate(context.Background(), readings)

	kinds := make(map[Kind]int)
	for _, a := range result.Raised {
		kinds[a.Kind]++
	}
	if kinds[KindThreshold] != 2 {
		t.Errorf("expected 2 threshold alerts (efficiency, health), got %d", kinds[KindThreshold])
	}
	if kinds[KindHealthDegradation] != 1 {
		t.Errorf("expected 1 degradation alert, got %d", kinds[KindHealthDegradation])
	}

	if result.Summary.Total != len(result.Raised) {
		t.Errorf("summary total %d does not match raised %d", result.Summary.Total, len(result.Raised))
	}
	if e.Store().Len() != len(result.Raised) {
		t.Errorf("store length %d does not match raised %d", e.Store().Len(), len(result.Raised))
	}
}

func TestEvaluateCooldownAppendsExactlyOnce(t *testing.T) {
	e := testEngine(t)

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)

	first := e.Evaluate(context.Background(), readings)
	if len(first.Raised) != 1 {
		t.Fatalf("expected 1 alert on first pass, got %d", len(first.Raised))
	}

	// Identical violating reading a minute later: same (metric, kind,
	// severity) bucket, well within the critical cooldown.
	repeat := engineSeries([]time.Duration{time.Minute}, []float64{95.0}, 88.0)
	second := e.Evaluate(context.Background(), repeat)
	if len(second.Raised) != 0 {
		t.Fatalf("expected repeat suppressed, got %d alerts", len(second.Raised))
	}

	if e.Store().Len() != 1 {
		t.Errorf("expected exactly one appended alert, got %d", e.Store().Len())
	}
}

func TestCooldownSurvivesRestart(t *testing.T) {
	sink := &capturingSink{}

	e1 := testEngine(t)
	e1.SetSink(sink)

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)
	first := e1.Evaluate(context.Background(), readings)
	if len(first.Raised) != 1 {
		t.Fatalf("expected 1 alert on first pass, got %d", len(first.Raised))
	}

	// A fresh engine rehydrated from persisted history, the way the CLI
	// builds one per invocation. The same violation a minute later falls
	// inside the critical cooldown and must not be appended again.
	e2 := testEngine(t)
	e2.SetSink(sink)
	e2.Store().Restore(sink.all())

	repeat := engineSeries([]time.Duration{time.Minute}, []float64{95.0}, 88.0)
	second := e2.Evaluate(context.Background(), repeat)
	if len(second.Raised) != 0 {
		t.Fatalf("expected repeat suppressed after restart, got %d alerts", len(second.Raised))
	}
	if got := len(sink.all()); got != 1 {
		t.Errorf("expected exactly 1 persisted alert across both runs, got %d", got)
	}

	// Beyond the 45m critical cooldown the violation raises again, with an
	// ID continuing past the restored history.
	later := engineSeries([]time.Duration{time.Hour}, []float64{95.0}, 88.0)
	third := e2.Evaluate(context.Background(), later)
	if len(third.Raised) != 1 {
		t.Fatalf("expected alert after cooldown expiry, got %d", len(third.Raised))
	}
	if third.Raised[0].ID != first.Raised[0].ID+1 {
		t.Errorf("expected ID to continue from restored history, got %d after %d",
			third.Raised[0].ID, first.Raised[0].ID)
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	e := testEngine(t)

	result := e.Evaluate(context.Background(), nil)
	if len(result.Raised) != 0 {
		t.Errorf("expected no alerts for empty input, got %d", len(result.Raised))
	}
}

func TestEvaluateDisabledEngine(t *testing.T) {
	e := testEngine(t)
	e.SetEnabled(false)

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)
	result := e.Evaluate(context.Background(), readings)
	if len(result.Raised) != 0 {
		t.Errorf("disabled engine raised %d alerts", len(result.Raised))
	}
}

func TestEvaluateSinkFailureKeepsStore(t *testing.T) {
	e := testEngine(t)
	e.SetSink(failingSink{})

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)
	result := e.Evaluate(context.Background(), readings)

	// Persistence failed but the in-memory store is authoritative.
	if len(result.Raised) != 1 {
		t.Fatalf("expected 1 alert despite sink failure, got %d", len(result.Raised))
	}
	if e.Store().Len() != 1 {
		t.Errorf("expected alert retained in store, got %d", e.Store().Len())
	}
}

func TestEvaluateNotifiesStoredAlerts(t *testing.T) {
	e := testEngine(t)
	rec := &recordingNotifier{}
	e.SetNotifier(rec)

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)
	result := e.Evaluate(context.Background(), readings)

	if rec.count() != len(result.Raised) {
		t.Errorf("expected %d notifications, got %d", len(result.Raised), rec.count())
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, a := range rec.alerts {
		if a.ID == 0 {
			t.Error("notified alert missing store-assigned ID")
		}
	}
}

func TestEvaluateAttachesRecommendations(t *testing.T) {
	e := testEngine(t)

	// ZVS lost: efficiency alerts carry the restoration hint.
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := telemetry.NewReading(t0)
	r.Set("efficiency_percent", 88.0)
	r.ZVS = false

	result := e.Evaluate(context.Background(), []telemetry.Reading{r})
	if len(result.Raised) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(result.Raised))
	}

	recs := result.Raised[0].Recommendations
	if len(recs) != 2 {
		t.Fatalf("expected severity hint plus ZVS hint, got %v", recs)
	}
	if recs[len(recs)-1] != ZVSRecommendation {
		t.Errorf("expected ZVS recommendation last, got %q", recs[len(recs)-1])
	}
}

func TestEvaluateConcurrentPassesSerialize(t *testing.T) {
	e := testEngine(t)
	e.SetCooldownEnabled(false)

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Evaluate(context.Background(), readings)
		}()
	}
	wg.Wait()

	// With cooldown off every pass appends one alert; IDs must be unique.
	all := e.Store().All()
	if len(all) != 8 {
		t.Fatalf("expected 8 alerts, got %d", len(all))
	}
	ids := make(map[int64]bool)
	for _, a := range all {
		if ids[a.ID] {
			t.Fatalf("duplicate alert ID %d", a.ID)
		}
		ids[a.ID] = true
	}
}

func TestAcknowledgeThroughEngine(t *testing.T) {
	e := testEngine(t)

	readings := engineSeries([]time.Duration{0}, []float64{95.0}, 88.0)
	result := e.Evaluate(context.Background(), readings)
	if len(result.Raised) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(result.Raised))
	}

	id := result.Raised[0].ID
	if err := e.Acknowledge(context.Background(), id, "operator"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active := e.Store().Active(); len(active) != 0 {
		t.Errorf("expected no active alerts after acknowledgment, got %d", len(active))
	}
}
