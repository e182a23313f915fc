package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"land_alert/models"
)

// SQLiteStore is the operational request journal: one row per webhook
// request plus free-form log lines. It is diagnostics only and is never
// consulted by the dedup gate.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS request_runs (
		id TEXT PRIMARY KEY,
		url_fingerprint TEXT NOT NULL,
		source TEXT,
		status TEXT,
		land_m2 INTEGER,
		price_eur INTEGER,
		area_m2 INTEGER,
		error TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		duration_ms INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_request_runs_started ON request_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_request_runs_fingerprint ON request_runs(url_fingerprint);

	CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.RequestRun) error {
	_, err := s.db.Exec(`
		INSERT INTO request_runs (id, url_fingerprint, source, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.URLFingerprint, run.Source, run.Status, run.StartedAt,
	)
	return err
}

func (s *SQLiteStore) FinishRun(run *models.RequestRun) error {
	_, err := s.db.Exec(`
		UPDATE request_runs
		SET status = ?, land_m2 = ?, price_eur = ?, area_m2 = ?, error = ?,
		    finished_at = ?, duration_ms = ?
		WHERE id = ?`,
		run.Status, run.LandM2, run.PriceEUR, run.AreaM2, run.Error,
		run.FinishedAt, run.DurationMS, run.ID,
	)
	return err
}

func (s *SQLiteStore) Log(runID string, level models.LogLevel, message string) error {
	_, err := s.db.Exec(`
		INSERT INTO request_logs (run_id, timestamp, level, message)
		VALUES (?, ?, ?, ?)`,
		runID, time.Now(), string(level), message,
	)
	return err
}

// OutcomeCounts returns per-status request counts since the given time.
// Used by the daily digest.
func (s *SQLiteStore) OutcomeCounts(since time.Time) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT status, COUNT(*)
		FROM request_runs
		WHERE started_at >= ?
		GROUP BY status`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
