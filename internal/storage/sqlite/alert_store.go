package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dabmon/internal/alerts"
)

// AlertStore provides SQLite persistence for raised alerts. It implements
// the engine's Sink interface and backs the history/ack/summary commands.
type AlertStore struct {
	db *DB
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(db *DB) *AlertStore {
	return &AlertStore{db: db}
}

// SaveAlert persists a raised alert under its store-assigned ID.
func (s *AlertStore) SaveAlert(ctx context.Context, a *alerts.Alert) error {
	query := `
		INSERT INTO alerts (id, raised_at, severity, kind, metric, value, threshold,
		                    trend_start, trend_end, trend_pct, trend_avg, trend_window_hours,
		                    message, recommendations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var threshold sql.NullFloat64
	if a.Threshold != nil {
		threshold = sql.NullFloat64{Float64: *a.Threshold, Valid: true}
	}

	var trendStart, trendEnd, trendPct, trendAvg, trendWindow sql.NullFloat64
	if a.Trend != nil {
		trendStart = sql.NullFloat64{Float64: a.Trend.Start, Valid: true}
		trendEnd = sql.NullFloat64{Float64: a.Trend.End, Valid: true}
		trendPct = sql.NullFloat64{Float64: a.Trend.PctChange, Valid: true}
		trendAvg = sql.NullFloat64{Float64: a.Trend.Average, Valid: true}
		trendWindow = sql.NullFloat64{Float64: a.Trend.WindowHours, Valid: true}
	}

	_, err := s.db.conn.ExecContext(ctx, query,
		a.ID,
		a.Timestamp,
		a.Severity.String(),
		a.Kind.String(),
		a.Metric,
		a.Value,
		threshold,
		trendStart,
		trendEnd,
		trendPct,
		trendAvg,
		trendWindow,
		a.Message,
		strings.Join(a.Recommendations, "\n"),
	)
	return err
}

// MaxID returns the highest persisted alert ID, or 0 when empty.
func (s *AlertStore) MaxID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	err := s.db.conn.QueryRowContext(ctx, `SELECT MAX(id) FROM alerts`).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id.Int64, nil
}

// History returns persisted alerts newest first.
// If limit is 0, returns all alerts.
func (s *AlertStore) History(ctx context.Context, limit int) ([]alerts.Alert, error) {
	query := selectColumns + ` ORDER BY raised_at DESC, id DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.conn.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.conn.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// HistoryForMetric returns persisted alerts for one metric, newest first.
func (s *AlertStore) HistoryForMetric(ctx context.Context, metric string, limit int) ([]alerts.Alert, error) {
	query := selectColumns + ` WHERE metric = ? ORDER BY raised_at DESC, id DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.conn.QueryContext(ctx, query+" LIMIT ?", metric, limit)
	} else {
		rows, err = s.db.conn.QueryContext(ctx, query, metric)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// Active returns unacknowledged alerts in raise order.
func (s *AlertStore) Active(ctx context.Context) ([]alerts.Alert, error) {
	query := selectColumns + ` WHERE acknowledged_at IS NULL ORDER BY raised_at ASC, id ASC`

	rows, err := s.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// Acknowledge marks an alert acknowledged. Re-acknowledging is a no-op; an
// unknown ID returns AlertNotFoundError.
func (s *AlertStore) Acknowledge(ctx context.Context, id int64, by string) error {
	query := `
		UPDATE alerts
		SET acknowledged_at = ?, acknowledged_by = ?
		WHERE id = ? AND acknowledged_at IS NULL
	`

	res, err := s.db.conn.ExecContext(ctx, query, time.Now(), by, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either already acknowledged (fine) or unknown.
		var exists int
		err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return &alerts.AlertNotFoundError{ID: id}
		}
	}
	return nil
}

// Summary counts persisted alerts raised within the trailing window ending
// at now, broken down by severity and kind.
func (s *AlertStore) Summary(ctx context.Context, window time.Duration, now time.Time) (alerts.Summary, error) {
	summary := alerts.Summary{
		WindowHours: window.Hours(),
		BySeverity:  make(map[alerts.Severity]int),
		ByKind:      make(map[alerts.Kind]int),
	}
	cutoff := now.Add(-window)

	query := `
		SELECT severity, kind, acknowledged_at IS NOT NULL, COUNT(*)
		FROM alerts
		WHERE raised_at >= ? AND raised_at <= ?
		GROUP BY severity, kind, acknowledged_at IS NOT NULL
	`
	rows, err := s.db.conn.QueryContext(ctx, query, cutoff, now)
	if err != nil {
		return summary, err
	}
	defer rows.Close()

	for rows.Next() {
		var sevName, kindName string
		var acked bool
		var count int
		if err := rows.Scan(&sevName, &kindName, &acked, &count); err != nil {
			return summary, err
		}

		summary.Total += count
		if acked {
			summary.Acknowledged += count
		} else {
			summary.Unacknowledged += count
		}
		if sev, err := alerts.ParseSeverity(sevName); err == nil {
			summary.BySeverity[sev] += count
		}
		if kind, err := alerts.ParseKind(kindName); err == nil {
			summary.ByKind[kind] += count
		}
	}

	return summary, rows.Err()
}

// Prune removes alerts older than the retention period.
// Returns the number of deleted alerts.
func (s *AlertStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM alerts WHERE raised_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const selectColumns = `
	SELECT id, raised_at, severity, kind, metric, value, threshold,
	       trend_start, trend_end, trend_pct, trend_avg, trend_window_hours,
	       message, recommendations, acknowledged_at, acknowledged_by
	FROM alerts`

// scanAlerts scans rows into a slice of Alert.
func scanAlerts(rows *sql.Rows) ([]alerts.Alert, error) {
	var out []alerts.Alert

	for rows.Next() {
		var (
			a               alerts.Alert
			sevName         string
			kindName        string
			threshold       sql.NullFloat64
			trendStart      sql.NullFloat64
			trendEnd        sql.NullFloat64
			trendPct        sql.NullFloat64
			trendAvg        sql.NullFloat64
			trendWindow     sql.NullFloat64
			recommendations string
			acknowledgedAt  sql.NullTime
			acknowledgedBy  sql.NullString
		)

		err := rows.Scan(
			&a.ID,
			&a.Timestamp,
			&sevName,
			&kindName,
			&a.Metric,
			&a.Value,
			&threshold,
			&trendStart,
			&trendEnd,
			&trendPct,
			&trendAvg,
			&trendWindow,
			&a.Message,
			&recommendations,
			&acknowledgedAt,
			&acknowledgedBy,
		)
		if err != nil {
			return nil, err
		}

		if sev, err := alerts.ParseSeverity(sevName); err == nil {
			a.Severity = sev
		}
		if kind, err := alerts.ParseKind(kindName); err == nil {
			a.Kind = kind
		}
		if threshold.Valid {
			t := threshold.Float64
			a.Threshold = &t
		}
		if trendPct.Valid {
			a.Trend = &alerts.TrendDetail{
				Start:       trendStart.Float64,
				End:         trendEnd.Float64,
				PctChange:   trendPct.Float64,
				Average:     trendAvg.Float64,
				WindowHours: trendWindow.Float64,
			}
		}
		if recommendations != "" {
			a.Recommendations = strings.Split(recommendations, "\n")
		}
		if acknowledgedAt.Valid {
			t := acknowledgedAt.Time
			a.AcknowledgedAt = &t
		}
		if acknowledgedBy.Valid {
			a.AcknowledgedBy = acknowledgedBy.String
		}

		out = append(out, a)
	}

	return out, rows.Err()
}
