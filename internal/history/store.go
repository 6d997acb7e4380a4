package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

func (s *implStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		source          TEXT NOT NULL,
		title           TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		format          TEXT NOT NULL DEFAULT '',
		method          TEXT NOT NULL DEFAULT '',
		agent_used      TEXT NOT NULL DEFAULT '',
		source_words    INTEGER NOT NULL DEFAULT 0,
		segments        INTEGER NOT NULL DEFAULT 0,
		failed_segments INTEGER NOT NULL DEFAULT 0,
		questions       INTEGER NOT NULL DEFAULT 0,
		retries         INTEGER NOT NULL DEFAULT 0,
		fidelity        REAL NOT NULL DEFAULT 0,
		hallucination   REAL NOT NULL DEFAULT 0,
		duration_ms     INTEGER NOT NULL DEFAULT 0,
		output_path     TEXT NOT NULL DEFAULT '',
		error_message   TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *implStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, title, status, format, method, agent_used,
		                   source_words, segments, failed_segments, questions, retries,
		                   fidelity, hallucination, duration_ms, output_path, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Title, run.Status, run.Format, run.Method, run.AgentUsed,
		run.SourceWords, run.Segments, run.FailedSegments, run.Questions, run.Retries,
		run.Fidelity, run.Hallucination, run.DurationMS, run.OutputPath, run.ErrorMessage,
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `id, source, title, status, format, method, agent_used,
       source_words, segments, failed_segments, questions, retries,
       fidelity, hallucination, duration_ms, output_path, error_message, created_at`

func (s *implStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (s *implStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (s *implStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(segments), 0),
		       COALESCE(SUM(questions), 0),
		       COALESCE(SUM(retries), 0),
		       COALESCE(AVG(duration_ms), 0)
		FROM runs`, StatusCompleted, StatusFailed).
		Scan(&st.TotalRuns, &st.Completed, &st.Failed,
			&st.TotalSegments, &st.TotalQuestions, &st.TotalRetries, &st.AvgDurationMS)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	// Fidelity averages only over runs that were actually verified.
	s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(fidelity), 0) FROM runs WHERE status = ? AND fidelity > 0`,
		StatusCompleted).Scan(&st.AvgFidelity)

	return st, nil
}

func (s *implStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(&run.ID, &run.Source, &run.Title, &run.Status, &run.Format,
		&run.Method, &run.AgentUsed, &run.SourceWords, &run.Segments,
		&run.FailedSegments, &run.Questions, &run.Retries, &run.Fidelity,
		&run.Hallucination, &run.DurationMS, &run.OutputPath, &run.ErrorMessage,
		&createdAt)
	if err != nil {
		return nil, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &run, nil
}
