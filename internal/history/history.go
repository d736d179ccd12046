// Package history keeps a sqlite log of release runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Status of a recorded run
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Run is one recorded release run
type Run struct {
	ID         int64
	Kind       string
	From       string
	To         string
	Tag        string
	Commit     string
	Status     Status
	FailedStep string
	Error      string
	BuildError string
	CreatedAt  time.Time
}

// Store is the history database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends run and returns its id
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (kind, from_ver, to_ver, tag, commit_hash, status, failed_step, error, build_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Kind, run.From, run.To, run.Tag, run.Commit, string(run.Status),
		run.FailedStep, run.Error, run.BuildError, run.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs first. limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, kind, from_ver, to_ver, tag, commit_hash, status, failed_step, error, build_error, created_at
		FROM runs ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var status, created string
		if err := rows.Scan(&r.ID, &r.Kind, &r.From, &r.To, &r.Tag, &r.Commit, &status,
			&r.FailedStep, &r.Error, &r.BuildError, &created); err != nil {
			return nil, err
		}
		r.Status = Status(status)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t.Local()
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
