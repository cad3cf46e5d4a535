// Package history keeps a SQLite record of batch runs and their items.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    total INTEGER NOT NULL,
    saved INTEGER NOT NULL,
    noted INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_items (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    item_index INTEGER NOT NULL,
    description TEXT NOT NULL,
    outcome TEXT NOT NULL,
    notes TEXT NOT NULL,
    saved INTEGER NOT NULL,
    PRIMARY KEY (run_id, item_index)
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one stored batch run.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Saved      int
	Noted      int
}

// Item is one stored result of a run.
type Item struct {
	Index       int
	Description string
	Outcome     pipeline.Outcome
	Notes       string
	Saved       bool
}

// Store persists run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record implements pipeline.Recorder.
func (s *Store) Record(ctx context.Context, summary pipeline.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at, finished_at, total, saved, noted)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.Source,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		len(summary.Results),
		summary.Saved(),
		summary.Noted(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range summary.Results {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_items (run_id, item_index, description, outcome, notes, saved)
             VALUES (?, ?, ?, ?, ?, ?)`,
			summary.RunID, r.Index, r.Description, string(r.Outcome), r.Notes, boolToInt(r.Saved),
		)
		if err != nil {
			return fmt.Errorf("insert run item %d: %w", r.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source, started_at, finished_at, total, saved, noted
              FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Source, &started, &finished, &run.Total, &run.Saved, &run.Noted); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Items returns the stored results of one run in index order.
func (s *Store) Items(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_index, description, outcome, notes, saved
         FROM run_items WHERE run_id = ? ORDER BY item_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item    Item
			outcome string
			saved   int
		)
		if err := rows.Scan(&item.Index, &item.Description, &outcome, &item.Notes, &saved); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.Outcome = pipeline.Outcome(outcome)
		item.Saved = saved != 0
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run items: %w", err)
	}
	return items, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
