package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pinnhq/pinncheck/internal/checks"
)

// Store keeps a local record of finished verification runs in SQLite.
// One database file per artifacts directory; runs are append-only.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the serve-mode reader does
	// not block the writer.
	EnableWAL bool
}

func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Record is one stored run, with outcomes flattened to JSON.
type Record struct {
	ID         string           `json:"id"`
	Target     string           `json:"target"`
	Status     string           `json:"status"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Outcomes   []checks.Outcome `json:"outcomes,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Open opens or creates the run history database under dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, "pinncheck.db")

	var dsn string
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite supports a single writer; the run manager is effectively the
	// only one, so a single pooled connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		outcomes TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists a finished run. Satisfies runs.Recorder.
func (s *Store) RecordRun(ctx context.Context, run *checks.Run) error {
	outcomesJSON, err := json.Marshal(run.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	finished := run.UpdatedAt
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, target, status, started_at, finished_at, outcomes, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Target, string(run.Status),
		run.CreatedAt, finished, string(outcomesJSON), run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target, status, started_at, finished_at, outcomes, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var outcomesJSON sql.NullString
		var errText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Target, &rec.Status, &rec.StartedAt, &rec.FinishedAt, &outcomesJSON, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if outcomesJSON.Valid && outcomesJSON.String != "" {
			if err := json.Unmarshal([]byte(outcomesJSON.String), &rec.Outcomes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal outcomes for run %s: %w", rec.ID, err)
			}
		}
		rec.Error = errText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
