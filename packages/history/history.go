package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded test run.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	Session   string        `json:"session" yaml:"session"`
	Trigger   string        `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	ExitCode  int           `json:"exitCode" yaml:"exitCode"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	Meta      string        `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Store is a run-history log backed by SQLite. One Store instance
// represents one watch session; rows it writes share a session id.
type Store struct {
	db      *sql.DB
	session string
	timeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	session      TEXT NOT NULL,
	trigger_path TEXT,
	exit_code    INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	meta         TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	return &Store{
		db:      db,
		session: uuid.NewString(),
		timeout: 5 * time.Second,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Session returns the session id rows recorded by this store carry.
func (s *Store) Session() string {
	return s.session
}

// Record stores one completed run. Meta is marshaled to JSON.
func (s *Store) Record(ctx context.Context, trigger string, exitCode int, duration time.Duration, meta map[string]any) error {
	metaJSON := ""
	if len(meta) > 0 {
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encoding run metadata: %w", err)
		}
		metaJSON = string(data)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, session, trigger_path, exit_code, duration_ms, started_at, meta)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), s.session, trigger, exitCode, duration.Milliseconds(), time.Now().UTC(), metaJSON)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, trigger_path, exit_code, duration_ms, started_at, meta
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			durationMs int64
		)
		if err := rows.Scan(&r.ID, &r.Session, &r.Trigger, &r.ExitCode, &durationMs, &r.StartedAt, &r.Meta); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// MatchMeta reports whether a run's metadata document has the given
// value at a gjson path, e.g. MatchMeta(run, "args.env", "staging").
func MatchMeta(r Run, path, want string) bool {
	if r.Meta == "" {
		return false
	}
	result := gjson.Get(r.Meta, path)
	return result.Exists() && result.String() == want
}
