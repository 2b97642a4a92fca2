// Package history records launches and deploys in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // pure Go driver, no CGO needed on Windows
)

// DBFileName is the history database inside the data directory.
const DBFileName = "history.db"

// DefaultKeep is how many entries Prune keeps by default.
const DefaultKeep = 200

// Outcome of a recorded action.
type Outcome string

const (
	OutcomeLaunched Outcome = "launched"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeFailed   Outcome = "failed"
	OutcomeDeployed Outcome = "deployed"
	OutcomeRestored Outcome = "restored"
)

// Entry is one recorded action.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Dir        string    `json:"dir"`
	Executable string    `json:"executable,omitempty"`
	Args       []string  `json:"args,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	PID        int       `json:"pid,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Store is a SQLite-backed history.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Path returns the database path for a data directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, DBFileName)
}

// Open opens or creates the history database in dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := Path(dataDir)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		dir TEXT NOT NULL,
		executable TEXT NOT NULL DEFAULT '',
		args TEXT NOT NULL DEFAULT '[]',
		outcome TEXT NOT NULL,
		pid INTEGER NOT NULL DEFAULT 0,
		warnings TEXT NOT NULL DEFAULT '[]',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_entries_ts ON entries(ts DESC);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DBPath returns the database file path.
func (s *Store) DBPath() string {
	return s.path
}

// Record stores an entry, filling ID and Time when empty, and returns it.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = s.now()
	}
	e.Time = e.Time.UTC()

	args, err := json.Marshal(nonNil(e.Args))
	if err != nil {
		return e, fmt.Errorf("encode args: %w", err)
	}
	warnings, err := json.Marshal(nonNil(e.Warnings))
	if err != nil {
		return e, fmt.Errorf("encode warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, ts, dir, executable, args, outcome, pid, warnings, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Time.UnixNano(), e.Dir, e.Executable, string(args), string(e.Outcome), e.PID, string(warnings), e.Error)
	if err != nil {
		return e, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, dir, executable, args, outcome, pid, warnings, error
		FROM entries
		ORDER BY ts DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e              Entry
			ts             int64
			args, warnings string
			outcome        string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Dir, &e.Executable, &args, &outcome, &e.PID, &warnings, &e.Error); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Time = time.Unix(0, ts).UTC()
		e.Outcome = Outcome(outcome)
		_ = json.Unmarshal([]byte(args), &e.Args)
		_ = json.Unmarshal([]byte(warnings), &e.Warnings)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM entries WHERE id NOT IN (
			SELECT id FROM entries ORDER BY ts DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}
	return res.RowsAffected()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
