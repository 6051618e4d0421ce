// Package store persists job-level diagnostics in SQLite: which documents
// were translated, how each chunk fared, and which backend served it. It is
// a history log for the "jobs" command, never a translation cache — stored
// results are not consulted to skip work.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/valpere/peredoc/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		status TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		failed_chunks INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- chunk_results keeps per-chunk diagnostics for failed-chunk triage
	CREATE TABLE IF NOT EXISTS chunk_results (
		job_id TEXT NOT NULL,
		chunk_idx INTEGER NOT NULL,
		backend TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER,
		error TEXT,
		PRIMARY KEY (job_id, chunk_idx),
		FOREIGN KEY (job_id) REFERENCES jobs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_chunk_results_job ON chunk_results(job_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) SaveJob(ctx context.Context, job internal.JobRecord) error {
	created := job.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, input_file, source_lang, target_lang, status, chunk_count, failed_chunks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.InputFile, job.SourceLang, job.TargetLang, job.Status, job.ChunkCount, job.FailedChunks, created)
	return err
}

func (s *Store) SaveChunkResults(ctx context.Context, jobID string, chunks []internal.ChunkRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunk_results (job_id, chunk_idx, backend, attempts, latency_ms, error)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			jobID, c.Index, c.Backend, c.Attempts, c.LatencyMs, c.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListJobs(ctx context.Context) ([]internal.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_file, source_lang, target_lang, status, chunk_count, failed_chunks, created_at
		 FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []internal.JobRecord
	for rows.Next() {
		var j internal.JobRecord
		if err := rows.Scan(&j.ID, &j.InputFile, &j.SourceLang, &j.TargetLang, &j.Status, &j.ChunkCount, &j.FailedChunks, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *Store) GetChunkResults(ctx context.Context, jobID string) ([]internal.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, chunk_idx, backend, attempts, latency_ms, error
		 FROM chunk_results WHERE job_id = ? ORDER BY chunk_idx`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []internal.ChunkRecord
	for rows.Next() {
		var c internal.ChunkRecord
		var backend, errMsg sql.NullString
		var latency sql.NullInt64
		if err := rows.Scan(&c.JobID, &c.Index, &backend, &c.Attempts, &latency, &errMsg); err != nil {
			return nil, err
		}
		c.Backend = backend.String
		c.LatencyMs = int(latency.Int64)
		c.Error = errMsg.String
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
