// Package archive stores past analysis runs in a local SQLite database.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
	"github.com/iampreetdave-max/analyze-text/pkg/report"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS runs (
    id             TEXT PRIMARY KEY,
    created_at     INTEGER NOT NULL,
    source         TEXT NOT NULL,
    total_messages INTEGER NOT NULL DEFAULT 0,
    participants   INTEGER NOT NULL DEFAULT 0,
    start_date     TEXT NOT NULL DEFAULT '',
    end_date       TEXT NOT NULL DEFAULT '',
    report         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// Sentinel errors returned by Get.
var (
	ErrNotFound  = errors.New("run not found")
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

// RunSummary is one archived run without the report payload.
type RunSummary struct {
	ID            string
	CreatedAt     time.Time
	Source        string
	TotalMessages int
	Participants  int
	StartDate     time.Time
	EndDate       time.Time
}

// Run is one archived run including the stored report JSON.
type Run struct {
	RunSummary
	Report string
}

// Store is a handle to the history database.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path, creating the parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".chatlyze", "history.db"), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives one analysis run and returns its id.
func (s *Store) Save(ctx context.Context, source string, info parser.ChatInfo, rep *report.Report) (string, error) {
	payload, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, total_messages, participants, start_date, end_date, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().UTC().UnixNano(),
		source,
		info.TotalMessages,
		info.Participants,
		info.StartDate.Format(time.RFC3339),
		info.EndDate.Format(time.RFC3339),
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	return id, nil
}

// List returns archived runs, newest first. A non-positive limit
// returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, created_at, source, total_messages, participants, start_date, end_date
	          FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			summary            RunSummary
			createdAt          int64
			startDate, endDate string
		)
		if err := rows.Scan(&summary.ID, &createdAt, &summary.Source, &summary.TotalMessages,
			&summary.Participants, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.CreatedAt = time.Unix(0, createdAt).UTC()
		summary.StartDate = parseStamp(startDate)
		summary.EndDate = parseStamp(endDate)
		runs = append(runs, summary)
	}

	return runs, rows.Err()
}

// Get returns one archived run. A unique id prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, total_messages, participants, start_date, end_date, report
		 FROM runs WHERE substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		len(id), id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		var (
			run                RunSummary
			createdAt          int64
			startDate, endDate string
			payload            string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.Source, &run.TotalMessages,
			&run.Participants, &startDate, &endDate, &payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		run.StartDate = parseStamp(startDate)
		run.EndDate = parseStamp(endDate)
		matches = append(matches, &Run{RunSummary: run, Report: payload})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// Count returns the number of archived runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

// Prune removes all but the newest keep runs and returns how many
// were deleted.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
		   SELECT id FROM runs ORDER BY created_at DESC, id LIMIT ?
		 )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
