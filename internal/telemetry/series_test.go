package telemetry

import (
	"testing"
	"time"
)

func TestSeriesPushAndSnapshot(t *testing.T) {
	s := NewSeries(5)
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		r := NewReading(t0.Add(time.Duration(i) * time.Minute))
		r.Set(MetricEfficiency, 90.0+float64(i))
		s.Push(r)
	}

	if s.Len() != 3 {
		t.Fatalf("expected 3 readings, got %d", s.Len())
	}

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected snapshot of 3, got %d", len(snap))
	}
	if !snap[0].Timestamp.Equal(t0) {
		t.Errorf("wrong oldest reading: %v", snap[0].Timestamp)
	}
	if !snap[2].Timestamp.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("wrong newest reading: %v", snap[2].Timestamp)
	}
}

func TestSeriesEvictsOldest(t *testing.T) {
	s := NewSeries(3)
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.Push(NewReading(t0.Add(time.Duration(i) * time.Minute)))
	}

	if s.Len() != 3 {
		t.Fatalf("expected capped length 3, got %d", s.Len())
	}
	snap := s.Snapshot()
	if !snap[0].Timestamp.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("expected oldest surviving reading at t+2m, got %v", snap[0].Timestamp)
	}
	if !snap[2].Timestamp.Equal(t0.Add(4 * time.Minute)) {
		t.Errorf("expected newest reading at t+4m, got %v", snap[2].Timestamp)
	}
}

func TestSeriesValuesFor(t *testing.T) {
	s := NewSeries(10)
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		r := NewReading(t0.Add(time.Duration(i) * time.Minute))
		if i != 1 { // gap in the middle
			r.Set(MetricTemperature, 40.0+float64(i))
		}
		s.Push(r)
	}

	vals := s.ValuesFor(MetricTemperature)
	if len(vals) != 2 {
		t.Fatalf("expected 2 values, got %d", len(vals))
	}
	if vals[0] != 40.0 || vals[1] != 42.0 {
		t.Errorf("unexpected values: %v", vals)
	}
}
