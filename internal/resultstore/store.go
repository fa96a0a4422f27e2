// Package resultstore persists batches and runs to SQLite so results stay
// queryable after the artifact directories have been archived or pruned.
package resultstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adf-bdd/benchdock/internal/domain"
)

// Store provides SQLite-backed result persistence
type Store struct {
	db *sql.DB
}

// BatchRecord is a persisted batch row
type BatchRecord struct {
	Batch    domain.Batch
	BatchDir string
	Summary  domain.BatchSummary
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch records a finished batch and all of its runs in one
// transaction
func (s *Store) SaveBatch(batch domain.Batch, batchDir string, runs []*domain.Run) error {
	argsJSON, err := json.Marshal(batch.ExtraArgs)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	summary := domain.Count(runs)
	_, err = tx.Exec(`
		INSERT INTO batches (id, image, folder, pattern, timeout, parallelism, extra_args, batch_dir,
			started_at, finished_at, total, completed, timed_out, launch_failed, interrupted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		batch.ID,
		batch.Image,
		batch.Folder,
		batch.Pattern,
		batch.Timeout.String(),
		batch.Parallelism,
		string(argsJSON),
		batchDir,
		batch.StartedAt,
		batch.FinishedAt,
		summary.Total,
		summary.Completed,
		summary.TimedOut,
		summary.LaunchFailed,
		summary.Interrupted,
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	for _, run := range runs {
		_, err = tx.Exec(`
			INSERT INTO runs (batch_id, seq, input, run_dir, outcome, exit_code, elapsed_secs, started_at, finished_at, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			batch.ID,
			run.Seq,
			run.InputPath,
			run.RunDir,
			string(run.Outcome),
			run.ExitCode,
			run.Elapsed.Seconds(),
			run.StartedAt,
			run.FinishedAt,
			run.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting run %d: %w", run.Seq, err)
		}
	}

	return tx.Commit()
}

// ListBatches returns recorded batches, newest first
func (s *Store) ListBatches(limit int) ([]*BatchRecord, error) {
	query := `
		SELECT id, image, folder, pattern, timeout, parallelism, extra_args, batch_dir,
			started_at, finished_at, total, completed, timed_out, launch_failed, interrupted
		FROM batches ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*BatchRecord
	for rows.Next() {
		rec, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, rec)
	}
	return batches, rows.Err()
}

// GetBatch retrieves one batch by ID
func (s *Store) GetBatch(id string) (*BatchRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, image, folder, pattern, timeout, parallelism, extra_args, batch_dir,
			started_at, finished_at, total, completed, timed_out, launch_failed, interrupted
		FROM batches WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	return scanBatch(rows)
}

// ListRuns returns a batch's runs in dispatch order
func (s *Store) ListRuns(batchID string) ([]*domain.Run, error) {
	rows, err := s.db.Query(`
		SELECT seq, input, run_dir, outcome, exit_code, elapsed_secs, started_at, finished_at, error
		FROM runs WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		var run domain.Run
		var outcome string
		var elapsedSecs float64
		var startedAt, finishedAt sql.NullTime

		err := rows.Scan(&run.Seq, &run.InputPath, &run.RunDir, &outcome,
			&run.ExitCode, &elapsedSecs, &startedAt, &finishedAt, &run.Error)
		if err != nil {
			return nil, err
		}

		run.Outcome = domain.Outcome(outcome)
		run.Elapsed = time.Duration(elapsedSecs * float64(time.Second))
		if startedAt.Valid {
			t := startedAt.Time
			run.StartedAt = &t
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func scanBatch(rows *sql.Rows) (*BatchRecord, error) {
	var rec BatchRecord
	var timeout, argsJSON string
	var finishedAt sql.NullTime

	err := rows.Scan(&rec.Batch.ID, &rec.Batch.Image, &rec.Batch.Folder, &rec.Batch.Pattern,
		&timeout, &rec.Batch.Parallelism, &argsJSON, &rec.BatchDir,
		&rec.Batch.StartedAt, &finishedAt,
		&rec.Summary.Total, &rec.Summary.Completed, &rec.Summary.TimedOut,
		&rec.Summary.LaunchFailed, &rec.Summary.Interrupted)
	if err != nil {
		return nil, err
	}

	if d, err := time.ParseDuration(timeout); err == nil {
		rec.Batch.Timeout = d
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		rec.Batch.FinishedAt = &t
	}
	if argsJSON != "" && argsJSON != "null" {
		if err := json.Unmarshal([]byte(argsJSON), &rec.Batch.ExtraArgs); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}
