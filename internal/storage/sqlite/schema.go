package sqlite

// initSchema creates the database schema if it doesn't exist.
func (db *DB) initSchema() error {
	schema := `
	-- Alert history table
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY,
		raised_at DATETIME NOT NULL,
		severity TEXT NOT NULL,
		kind TEXT NOT NULL,
		metric TEXT NOT NULL,
		value REAL NOT NULL,
		threshold REAL,
		trend_start REAL,
		trend_end REAL,
		trend_pct REAL,
		trend_avg REAL,
		trend_window_hours REAL,
		message TEXT NOT NULL DEFAULT '',
		recommendations TEXT NOT NULL DEFAULT '',
		acknowledged_at DATETIME,
		acknowledged_by TEXT
	);

	-- Indexes for common queries
	CREATE INDEX IF NOT EXISTS idx_alerts_raised_at ON alerts(raised_at DESC);
	CREATE INDEX IF NOT EXISTS idx_alerts_metric ON alerts(metric, kind, severity, raised_at DESC);
	CREATE INDEX IF NOT EXISTS idx_alerts_unacked ON alerts(acknowledged_at) WHERE acknowledged_at IS NULL;
	`

	_, err := db.conn.Exec(schema)
	return err
}
