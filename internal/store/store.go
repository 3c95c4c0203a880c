// Package store persists scoring results next to the application they belong to.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	DefaultPath  = "resume-scorer.db"
	DefaultLimit = 50
)

var ErrNotFound = errors.New("result not found")

type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Record is a stored scoring result of one application for one job.
type Record struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	ApplicationID string    `json:"application_id"`
	Strategy      string    `json:"strategy"`
	Score         float64   `json:"score"`
	MatchedTerms  []string  `json:"matched_terms"`
	ScoredAt      time.Time `json:"scored_at"`
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id             TEXT PRIMARY KEY,
	job_id         TEXT NOT NULL,
	application_id TEXT NOT NULL,
	strategy       TEXT NOT NULL,
	score          REAL NOT NULL,
	matched_terms  TEXT NOT NULL,
	scored_at      TEXT NOT NULL,
	UNIQUE (job_id, application_id)
);
CREATE INDEX IF NOT EXISTS results_job_score ON results (job_id, score DESC);
`

// Open opens the SQLite database at path, creating the file and its table when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the result of an application, replacing an earlier result for the same job
// and application. The record id is kept across replacements.
func (s *Store) Save(ctx context.Context, rec Record) (*Record, error) {
	rec.JobID = strings.TrimSpace(rec.JobID)
	rec.ApplicationID = strings.TrimSpace(rec.ApplicationID)
	if rec.JobID == "" || rec.ApplicationID == "" {
		return nil, errors.New("job id and application id are required")
	}
	if rec.MatchedTerms == nil {
		rec.MatchedTerms = []string{}
	}
	if rec.ScoredAt.IsZero() {
		rec.ScoredAt = time.Now()
	}
	rec.ScoredAt = rec.ScoredAt.UTC()

	terms, err := json.Marshal(rec.MatchedTerms)
	if err != nil {
		return nil, fmt.Errorf("encode matched terms: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO results (id, job_id, application_id, strategy, score, matched_terms, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id, application_id) DO UPDATE SET
			strategy = excluded.strategy,
			score = excluded.score,
			matched_terms = excluded.matched_terms,
			scored_at = excluded.scored_at
	`, uuid.NewString(), rec.JobID, rec.ApplicationID, rec.Strategy, rec.Score, string(terms), rec.ScoredAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT id FROM results WHERE job_id = ? AND application_id = ?`, rec.JobID, rec.ApplicationID)
	if err := row.Scan(&rec.ID); err != nil {
		return nil, fmt.Errorf("read result id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns a stored result by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, application_id, strategy, score, matched_terms, scored_at
		FROM results
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListByJob returns stored results of a job, best score first.
func (s *Store) ListByJob(ctx context.Context, jobID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, application_id, strategy, score, matched_terms, scored_at
		FROM results
		WHERE job_id = ?
		ORDER BY score DESC, application_id ASC
		LIMIT ?
	`, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec      Record
		terms    string
		scoredAt string
	)
	if err := row.Scan(&rec.ID, &rec.JobID, &rec.ApplicationID, &rec.Strategy, &rec.Score, &terms, &scoredAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(terms), &rec.MatchedTerms); err != nil {
		return nil, fmt.Errorf("decode matched terms of %s: %w", rec.ID, err)
	}

	t, err := time.Parse(time.RFC3339Nano, scoredAt)
	if err != nil {
		return nil, fmt.Errorf("parse scored_at of %s: %w", rec.ID, err)
	}
	rec.ScoredAt = t

	return &rec, nil
}
