package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists load history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS load_events (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			provider   TEXT,
			outcome    TEXT NOT NULL,
			points     INTEGER,
			skipped    INTEGER,
			latency_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_load_ts ON load_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_load_symbol ON load_events(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordLoad(evt *LoadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO load_events
		(id, timestamp, symbol, provider, outcome, points, skipped, latency_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.ID, at.UnixMilli(), evt.Symbol, evt.Provider, evt.Outcome,
		evt.Points, evt.Skipped, evt.Latency.Milliseconds(),
	)
	return err
}

// RecentLoads returns up to limit events, newest first.
func (r *SQLiteRecorder) RecentLoads(limit int) ([]LoadEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, symbol, provider, outcome, points, skipped, latency_ms
		FROM load_events ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query load events: %w", err)
	}
	defer rows.Close()

	var events []LoadEvent
	for rows.Next() {
		var (
			evt       LoadEvent
			ts        int64
			provider  sql.NullString
			latencyMS int64
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Symbol, &provider, &evt.Outcome,
			&evt.Points, &evt.Skipped, &latencyMS); err != nil {
			return nil, fmt.Errorf("scan load event: %w", err)
		}
		evt.Provider = provider.String
		evt.At = time.UnixMilli(ts)
		evt.Latency = time.Duration(latencyMS) * time.Millisecond
		events = append(events, evt)
	}
	return events, rows.Err()
}

// Prune deletes events recorded before the cutoff.
func (r *SQLiteRecorder) Prune(before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM load_events WHERE timestamp < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune load events: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
