package alerts

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	threshold := 90.0
	ackedAt := t0.Add(time.Hour)

	records := []Alert{
		{
			ID:             1,
			Timestamp:      t0,
			Severity:       SeverityCritical,
			Kind:           KindThreshold,
			Metric:         "efficiency_percent",
			Value:          88.0,
			Threshold:      &threshold,
			Message:        "Efficiency critically low: 88.00% (threshold: 90.00%)",
			AcknowledgedAt: &ackedAt,
			AcknowledgedBy: "operator",
			Recommendations: []string{
				"Inspect gate drive waveforms for timing degradation",
				"Check DC-link voltage regulation",
			},
		},
		{
			ID:        2,
			Timestamp: t0.Add(time.Hour),
			Severity:  SeverityWarning,
			Kind:      KindTrend,
			Metric:    "temperature_C",
			Value:     52.0,
			Trend: &TrendDetail{
				Start:       45.0,
				End:         52.0,
				PctChange:   15.56,
				WindowHours: 24,
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}

	header := rows[0]
	if header[0] != "id" || header[len(header)-1] != "recommendations" {
		t.Errorf("unexpected header: %v", header)
	}

	first := rows[1]
	if first[0] != "1" || first[2] != "critical" || first[3] != "threshold" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[6] != "90" {
		t.Errorf("expected threshold column 90, got %q", first[6])
	}
	if first[7] != "" {
		t.Errorf("threshold alert must leave trend columns empty, got %q", first[7])
	}
	if first[11] != "true" || first[12] != "operator" {
		t.Errorf("unexpected acknowledgment columns: %v", first[11:14])
	}
	if first[15] != "Inspect gate drive waveforms for timing degradation; Check DC-link voltage regulation" {
		t.Errorf("unexpected recommendations column: %q", first[15])
	}

	second := rows[2]
	if second[3] != "trend" {
		t.Errorf("expected trend kind, got %q", second[3])
	}
	if second[6] != "" {
		t.Errorf("trend alert must leave threshold column empty, got %q", second[6])
	}
	if second[7] != "45" || second[8] != "52" || second[9] != "15.56" || second[10] != "24" {
		t.Errorf("unexpected trend columns: %v", second[7:11])
	}
	if second[11] != "false" {
		t.Errorf("expected acknowledged false, got %q", second[11])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("empty export failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
}
