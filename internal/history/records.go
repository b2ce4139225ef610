package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Batch is the persisted summary of one finished batch.
type Batch struct {
	ID           string
	Directory    string
	LanguageCode string
	LanguageName string
	Tool         string
	Status       string
	Total        int
	Succeeded    int
	Failed       int
	Pending      int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	Jobs         []Job
}

// Job is the persisted outcome of one job.
type Job struct {
	Index        int
	Primary      string
	Secondary    string
	State        string
	ExitCode     int
	ErrorMessage string
	Duration     time.Duration
}

// ErrNotFound is returned when a batch ID is unknown.
var ErrNotFound = errors.New("batch not found")

// Record writes a batch and its jobs in one transaction.
func (s *Store) Record(ctx context.Context, batch Batch) error {
	if batch.ID == "" {
		return errors.New("batch id is required")
	}
	return retryOnBusy(ctx, func() error {
		return s.record(ctx, batch)
	})
}

func (s *Store) record(ctx context.Context, batch Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (
            id, directory, language_code, language_name, tool, status,
            total, succeeded, failed, pending, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.Directory,
		batch.LanguageCode,
		batch.LanguageName,
		batch.Tool,
		batch.Status,
		batch.Total,
		batch.Succeeded,
		batch.Failed,
		batch.Pending,
		nullableString(batch.ErrorMessage),
		formatTime(batch.StartedAt),
		formatTime(batch.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, job := range batch.Jobs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batch_jobs (
                batch_id, job_index, primary_file, secondary_file, state,
                exit_code, error_message, duration_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.ID,
			job.Index,
			job.Primary,
			job.Secondary,
			job.State,
			job.ExitCode,
			nullableString(job.ErrorMessage),
			job.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert job %d: %w", job.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

const batchColumns = "id, directory, language_code, language_name, tool, status, total, succeeded, failed, pending, error_message, started_at, finished_at"

// Recent returns up to limit batches, newest first, without their jobs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+batchColumns+" FROM batches ORDER BY finished_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// Get returns one batch with its jobs. A prefix of the ID is accepted when
// it is unambiguous.
func (s *Store) Get(ctx context.Context, id string) (Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+batchColumns+" FROM batches WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2", id, id+"%")
	if err != nil {
		return Batch{}, fmt.Errorf("query batch: %w", err)
	}
	var matches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			_ = rows.Close()
			return Batch{}, fmt.Errorf("scan batch: %w", err)
		}
		matches = append(matches, batch)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return Batch{}, fmt.Errorf("iterate batches: %w", err)
	}

	var batch Batch
	switch {
	case len(matches) == 0:
		return Batch{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(matches) == 1:
		batch = matches[0]
	case matches[0].ID == id:
		batch = matches[0]
	default:
		return Batch{}, fmt.Errorf("batch id %q is ambiguous", id)
	}

	jobs, err := s.Jobs(ctx, batch.ID)
	if err != nil {
		return Batch{}, err
	}
	batch.Jobs = jobs
	return batch, nil
}

// Jobs returns the jobs of one batch in index order.
func (s *Store) Jobs(ctx context.Context, batchID string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_index, primary_file, secondary_file, state, exit_code, error_message, duration_ms
         FROM batch_jobs WHERE batch_id = ? ORDER BY job_index`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			job        Job
			errMessage sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&job.Index, &job.Primary, &job.Secondary, &job.State, &job.ExitCode, &errMessage, &durationMS); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.ErrorMessage = errMessage.String
		job.Duration = time.Duration(durationMS) * time.Millisecond
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (Batch, error) {
	var (
		batch      Batch
		errMessage sql.NullString
		startedRaw string
		finishRaw  string
	)
	if err := scanner.Scan(
		&batch.ID,
		&batch.Directory,
		&batch.LanguageCode,
		&batch.LanguageName,
		&batch.Tool,
		&batch.Status,
		&batch.Total,
		&batch.Succeeded,
		&batch.Failed,
		&batch.Pending,
		&errMessage,
		&startedRaw,
		&finishRaw,
	); err != nil {
		return Batch{}, err
	}
	batch.ErrorMessage = errMessage.String
	batch.StartedAt = parseTime(startedRaw)
	batch.FinishedAt = parseTime(finishRaw)
	return batch, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
