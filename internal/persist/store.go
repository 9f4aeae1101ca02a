package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kayz/codeloom/internal/artifact"
)

// Store persists run history and run artifacts using SQLite
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new SQLite-backed persistence store at the given path
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// init creates the necessary tables if they don't exist
func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			flavor          TEXT NOT NULL,
			project         TEXT NOT NULL,
			task_preview    TEXT,
			degraded        INTEGER NOT NULL DEFAULT 0,
			turns           INTEGER NOT NULL DEFAULT 0,
			artifact_count  INTEGER NOT NULL DEFAULT 0,
			failure         TEXT,
			created_at      TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS artifacts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			position  INTEGER NOT NULL,
			path      TEXT NOT NULL,
			content   TEXT,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);

		CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
		CREATE INDEX IF NOT EXISTS idx_runs_flavor ON runs(flavor);
	`)
	return err
}

// SaveRun records a completed run and its artifacts in one transaction.
func (s *Store) SaveRun(run *Run, artifacts *artifact.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.ArtifactCount = artifacts.Len()

	_, err = tx.Exec(`
		INSERT INTO runs (id, flavor, project, task_preview, degraded, turns, artifact_count, failure, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Flavor, run.Project, run.TaskPreview, boolToInt(run.Degraded),
		run.Turns, run.ArtifactCount, run.Failure, run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for i, path := range artifacts.Paths() {
		content, _ := artifacts.Get(path)
		if _, err := tx.Exec(`
			INSERT INTO artifacts (run_id, position, path, content)
			VALUES (?, ?, ?, ?)
		`, run.ID, i, path, content); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun returns one run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, flavor, project, task_preview, degraded, turns, artifact_count, failure, created_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// GetRunArtifacts returns the artifact map recorded for a run, in the
// order it was produced.
func (s *Store) GetRunArtifacts(runID string) (*artifact.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT path, content FROM artifacts
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := artifact.NewMap()
	for rows.Next() {
		var path string
		var content sql.NullString
		if err := rows.Scan(&path, &content); err != nil {
			return nil, err
		}
		result.Set(path, content.String)
	}
	return result, rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, flavor, project, task_preview, degraded, turns, artifact_count, failure, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRunsBefore removes runs (and their artifacts) created before cutoff.
func (s *Store) DeleteRunsBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoffStr := cutoff.Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM artifacts WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)
	`, cutoffStr); err != nil {
		return 0, err
	}

	result, err := tx.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoffStr)
	if err != nil {
		return 0, err
	}
	deleted, _ := result.RowsAffected()

	return deleted, tx.Commit()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner interface for both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var taskPreview, failure sql.NullString
	var degraded int
	var createdAt string

	err := row.Scan(&run.ID, &run.Flavor, &run.Project, &taskPreview,
		&degraded, &run.Turns, &run.ArtifactCount, &failure, &createdAt)
	if err != nil {
		return nil, err
	}

	run.TaskPreview = taskPreview.String
	run.Failure = failure.String
	run.Degraded = degraded != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		run.CreatedAt = t
	}
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
