package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/ContentImport/internal/domain"
)

// JobStateRepo — репозиторий состояния import jobs.
// Реализует migrate.StateStore.
type JobStateRepo struct {
	pool *pgxpool.Pool
}

// NewJobStateRepo создаёт новый JobStateRepo.
func NewJobStateRepo(pool *pgxpool.Pool) *JobStateRepo {
	return &JobStateRepo{pool: pool}
}

// Get возвращает состояние job; found=false, если записи нет.
func (r *JobStateRepo) Get(ctx context.Context, jobID string) (domain.JobState, bool, error) {
	query := `
		SELECT job_id, status, last_result, interrupt
		FROM job_status
		WHERE job_id = $1
	`
	state, err := scanJobState(r.pool.QueryRow(ctx, query, jobID))
	if errors.Is(err, ErrNotFound) {
		return domain.JobState{}, false, nil
	}
	if err != nil {
		return domain.JobState{}, false, err
	}
	return state, true, nil
}

// List возвращает все сохранённые состояния.
func (r *JobStateRepo) List(ctx context.Context) ([]domain.JobState, error) {
	query := `
		SELECT job_id, status, last_result, interrupt
		FROM job_status
		ORDER BY job_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list job states: %w", err)
	}
	defer rows.Close()

	var states []domain.JobState
	for rows.Next() {
		state, err := scanJobState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// SetStatus сохраняет статус job.
func (r *JobStateRepo) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	query := `
		INSERT INTO job_status (job_id, status, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (job_id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, jobID, status); err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	return nil
}

// SetInterrupt сохраняет запрошенный interrupt; 0 сбрасывает его.
func (r *JobStateRepo) SetInterrupt(ctx context.Context, jobID string, result domain.RunResult) error {
	query := `
		INSERT INTO job_status (job_id, interrupt, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (job_id) DO UPDATE
		SET interrupt = EXCLUDED.interrupt, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, jobID, nullResult(result)); err != nil {
		return fmt.Errorf("set job interrupt: %w", err)
	}
	return nil
}

// SetLastResult сохраняет результат последнего Execute.
func (r *JobStateRepo) SetLastResult(ctx context.Context, jobID string, result domain.RunResult) error {
	query := `
		INSERT INTO job_status (job_id, last_result, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (job_id) DO UPDATE
		SET last_result = EXCLUDED.last_result, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, jobID, nullResult(result)); err != nil {
		return fmt.Errorf("set job last result: %w", err)
	}
	return nil
}

// scanJobState сканирует строку job_status.
func scanJobState(row pgx.Row) (domain.JobState, error) {
	var state domain.JobState
	var lastResult, interrupt *string

	err := row.Scan(&state.JobID, &state.Status, &lastResult, &interrupt)
	if errors.Is(err, pgx.ErrNoRows) {
		return state, ErrNotFound
	}
	if err != nil {
		return state, fmt.Errorf("scan job state: %w", err)
	}

	if lastResult != nil {
		if state.LastResult, err = domain.ParseRunResult(*lastResult); err != nil {
			return state, err
		}
	}
	if interrupt != nil {
		if state.Interrupt, err = domain.ParseRunResult(*interrupt); err != nil {
			return state, err
		}
	}
	return state, nil
}

// nullResult возвращает nil для нулевого RunResult.
func nullResult(r domain.RunResult) *string {
	if r == 0 {
		return nil
	}
	return nullString(r.String())
}
