// Package buildlog keeps a SQLite history of translation runs and the
// outcome of every class in them.
package buildlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	file        TEXT NOT NULL,
	started     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	classes     INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	errors      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS classes (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	class     TEXT NOT NULL,
	status    TEXT NOT NULL,
	code      TEXT NOT NULL DEFAULT '',
	message   TEXT NOT NULL DEFAULT '',
	artifacts TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, class)
);
`

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run summarizes one translation run.
type Run struct {
	ID       uuid.UUID
	File     string
	Started  time.Time
	Duration time.Duration
	Classes  int
	Failed   int
	Errors   int
}

// ClassOutcome is the recorded result for one class of a run.
type ClassOutcome struct {
	Class     string
	Status    string
	Code      string // diagnostic code of the failure, "" on success
	Message   string
	Artifacts []string
}

// Store is a history database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing history %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run with its class outcomes in one transaction.
func (s *Store) Record(run Run, outcomes []ClassOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, file, started, duration_ms, classes, failed, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.File, run.Started.UTC().Format(timeLayout),
		run.Duration.Milliseconds(), run.Classes, run.Failed, run.Errors)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	for _, o := range outcomes {
		_, err = tx.Exec(`INSERT INTO classes (run_id, class, status, code, message, artifacts)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID.String(), o.Class, o.Status, o.Code, o.Message, strings.Join(o.Artifacts, ","))
		if err != nil {
			return fmt.Errorf("recording class %s: %w", o.Class, err)
		}
	}
	return tx.Commit()
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, file, started, duration_ms, classes, failed, errors
		FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			id      string
			started string
			ms      int64
		)
		if err := rows.Scan(&id, &r.File, &started, &ms, &r.Classes, &r.Failed, &r.Errors); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if r.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s start time: %w", id, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Outcomes returns the class outcomes of a run in class name order.
func (s *Store) Outcomes(id uuid.UUID) ([]ClassOutcome, error) {
	rows, err := s.db.Query(`SELECT class, status, code, message, artifacts
		FROM classes WHERE run_id = ? ORDER BY class`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClassOutcome
	for rows.Next() {
		var o ClassOutcome
		var artifacts string
		if err := rows.Scan(&o.Class, &o.Status, &o.Code, &o.Message, &artifacts); err != nil {
			return nil, err
		}
		if artifacts != "" {
			o.Artifacts = strings.Split(artifacts, ",")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
