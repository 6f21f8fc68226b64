// Package history persists run results in a local SQLite database so
// past runs can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/volleyhq/volley/packages/core/runner"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	filename    TEXT    NOT NULL,
	recorded_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entry_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	entry_index INTEGER NOT NULL,
	method      TEXT,
	url         TEXT,
	status_code INTEGER,
	elapsed_ms  INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	error       TEXT
);
`

// Store is a run-history store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the store at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Run is one recorded file run.
type Run struct {
	ID         int64
	Filename   string
	RecordedAt time.Time
	Duration   time.Duration
	Passed     int
	Failed     int
	Skipped    int
}

// Entry is one recorded entry result.
type Entry struct {
	RunID      int64
	Index      int
	Method     string
	URL        string
	StatusCode int
	Elapsed    time.Duration
	Skipped    bool
	Error      string
}

// Record stores a file result and its entries. It returns the new
// run's id.
func (s *Store) Record(ctx context.Context, result *runner.FileResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (filename, recorded_at, duration_ms, passed, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.Filename, time.Now().Unix(), result.Duration.Milliseconds(),
		result.Passed, result.Failed, result.Skipped)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, e := range result.Entries {
		var method, url string
		if e.Request != nil {
			method, url = e.Request.Method, e.Request.URL
		}
		var statusCode int
		if e.Response != nil {
			statusCode = e.Response.StatusCode
		}
		var msgs []string
		for _, entryErr := range e.Errors {
			msgs = append(msgs, entryErr.Error())
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO entry_results (run_id, entry_index, method, url, status_code, elapsed_ms, skipped, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, e.Index, method, url, statusCode,
			e.Elapsed.Milliseconds(), e.Skipped, strings.Join(msgs, "; "))
		if err != nil {
			return 0, fmt.Errorf("failed to insert entry result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, recorded_at, duration_ms, passed, failed, skipped
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var recordedAt int64
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Filename, &recordedAt, &durationMS,
			&r.Passed, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.RecordedAt = time.Unix(recordedAt, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Entries returns the entry results recorded for a run, in file order.
func (s *Store) Entries(ctx context.Context, runID int64) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, entry_index, method, url, status_code, elapsed_ms, skipped, error
		 FROM entry_results WHERE run_id = ? ORDER BY entry_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry results: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var elapsedMS int64
		if err := rows.Scan(&e.RunID, &e.Index, &e.Method, &e.URL,
			&e.StatusCode, &elapsedMS, &e.Skipped, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan entry result: %w", err)
		}
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
