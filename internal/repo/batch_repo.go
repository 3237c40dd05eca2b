package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/ContentImport/internal/domain"
)

// BatchRepo — репозиторий для работы с batch импорта.
type BatchRepo struct {
	pool *pgxpool.Pool
}

// NewBatchRepo создаёт новый BatchRepo.
func NewBatchRepo(pool *pgxpool.Pool) *BatchRepo {
	return &BatchRepo{pool: pool}
}

const batchColumns = `id, csv_path, languages, status, context, step, error, source,
		       started_at, finished_at, created_at`

// Create создаёт новый batch.
func (r *BatchRepo) Create(ctx context.Context, b *domain.Batch) error {
	contextJSON, err := json.Marshal(b.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	query := `
		INSERT INTO import_batches (id, csv_path, languages, status, context, step, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		b.ID,
		b.CSVPath,
		b.Languages,
		b.Status,
		contextJSON,
		b.Step,
		nullString(b.Source),
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID возвращает batch по ID.
func (r *BatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches WHERE id = $1`
	return scanBatch(r.pool.QueryRow(ctx, query, id))
}

// List возвращает batch с фильтрацией, новые первыми.
func (r *BatchRepo) List(ctx context.Context, filter BatchFilter) ([]domain.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM import_batches
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	return collectBatches(rows)
}

// ListPending возвращает batch в статусе PENDING, старые первыми.
func (r *BatchRepo) ListPending(ctx context.Context, limit int) ([]domain.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM import_batches
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending batches: %w", err)
	}
	defer rows.Close()

	return collectBatches(rows)
}

// Update сохраняет статус, шаг и контекст batch.
func (r *BatchRepo) Update(ctx context.Context, b *domain.Batch) error {
	contextJSON, err := json.Marshal(b.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	query := `
		UPDATE import_batches
		SET status = $2, context = $3, step = $4, error = $5, started_at = $6, finished_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Status,
		contextJSON,
		b.Step,
		nullString(b.Error),
		b.StartedAt,
		b.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Claim атомарно переводит PENDING batch в RUNNING.
// Возвращает ErrInvalidState, если batch уже забрал другой worker.
func (r *BatchRepo) Claim(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE import_batches
		SET status = 'RUNNING', started_at = COALESCE(started_at, now())
		WHERE id = $1 AND status = 'PENDING'
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("claim batch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Requeue возвращает в PENDING batch, оставшиеся в RUNNING после
// остановки worker. Runner продолжит их с сохранённого шага.
func (r *BatchRepo) Requeue(ctx context.Context) (int64, error) {
	query := `UPDATE import_batches SET status = 'PENDING' WHERE status = 'RUNNING'`
	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("requeue batches: %w", err)
	}
	return result.RowsAffected(), nil
}

// --- Helpers ---

// BatchFilter — параметры фильтрации batch.
type BatchFilter struct {
	Status domain.BatchStatus
	Limit  int
	Offset int
}

func collectBatches(rows pgx.Rows) ([]domain.Batch, error) {
	var batches []domain.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

// scanBatch сканирует одну строку в Batch.
func scanBatch(row pgx.Row) (*domain.Batch, error) {
	var b domain.Batch
	var contextJSON []byte
	var batchError, source *string

	err := row.Scan(
		&b.ID,
		&b.CSVPath,
		&b.Languages,
		&b.Status,
		&contextJSON,
		&b.Step,
		&batchError,
		&source,
		&b.StartedAt,
		&b.FinishedAt,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan batch: %w", err)
	}

	if contextJSON != nil {
		if err := json.Unmarshal(contextJSON, &b.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
	}
	if batchError != nil {
		b.Error = *batchError
	}
	if source != nil {
		b.Source = *source
	}

	return &b, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
