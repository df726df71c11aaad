package alerts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// exportHeader is the flattened tabular form of an alert record.
var exportHeader = []string{
	"id", "timestamp", "severity", "kind", "metric", "value",
	"threshold", "trend_start", "trend_end", "pct_change", "window_hours",
	"acknowledged", "acknowledged_by", "acknowledged_at",
	"message", "recommendations",
}

// WriteCSV writes alerts as flattened CSV rows for export.
func WriteCSV(w io.Writer, alerts []Alert) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, a := range alerts {
		row := []string{
			strconv.FormatInt(a.ID, 10),
			a.Timestamp.Format(time.RFC3339),
			a.Severity.String(),
			a.Kind.String(),
			a.Metric,
			formatFloat(a.Value),
			"", "", "", "", "",
			strconv.FormatBool(a.IsAcknowledged()),
			a.AcknowledgedBy,
			"",
			a.Message,
			strings.Join(a.Recommendations, "; "),
		}
		if a.Threshold != nil {
			row[6] = formatFloat(*a.Threshold)
		}
		if a.Trend != nil {
			row[7] = formatFloat(a.Trend.Start)
			row[8] = formatFloat(a.Trend.End)
			row[9] = formatFloat(a.Trend.PctChange)
			row[10] = formatFloat(a.Trend.WindowHours)
		}
		if a.AcknowledgedAt != nil {
			row[13] = a.AcknowledgedAt.Format(time.RFC3339)
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write alert %d: %w", a.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
