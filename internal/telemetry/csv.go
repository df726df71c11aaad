package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"dabmon/internal/logger"
)

// timestampLayouts are tried in order when parsing snapshot timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
}

// LoadCSVFile reads a telemetry snapshot from a CSV file.
func LoadCSVFile(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV reads a telemetry snapshot from CSV data. The first row is the
// header and must include a timestamp column. Rows with unparsable
// timestamps are dropped with a warning, never treated as fatal. The result
// is sorted by timestamp; rows sharing a timestamp keep their arrival order.
func LoadCSV(r io.Reader) ([]Reading, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	tsCol := -1
	zvsCol := -1
	metricCols := make(map[int]string)
	for i, name := range header {
		col := strings.TrimSpace(name)
		switch col {
		case "timestamp":
			tsCol = i
		case "ZVS_status":
			zvsCol = i
		default:
			metricCols[i] = col
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("snapshot has no timestamp column")
	}

	var readings []Reading
	dropped := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed snapshot row", "line", line, "error", err.Error())
			dropped++
			continue
		}

		ts, err := parseTimestamp(record[tsCol])
		if err != nil {
			logger.Warn("dropping row with unparsable timestamp",
				"line", line,
				"timestamp", record[tsCol])
			dropped++
			continue
		}

		reading := NewReading(ts)
		if zvsCol >= 0 && zvsCol < len(record) {
			reading.ZVS = parseBool(record[zvsCol])
		}
		for i, metric := range metricCols {
			if i >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[i])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				logger.Debug("skipping unparsable metric value",
					"line", line,
					"metric", metric,
					"value", raw)
				continue
			}
			reading.Set(metric, v)
		}
		readings = append(readings, reading)
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	if dropped > 0 {
		logger.Info("loaded telemetry snapshot with dropped rows",
			"rows", len(readings),
			"dropped", dropped)
	}

	return readings, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
