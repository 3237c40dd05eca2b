package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/ContentImport/internal/migrate"
)

// IDMapRepo — репозиторий соответствий строк источника записям назначения.
// Реализует migrate.IDMap.
type IDMapRepo struct {
	pool *pgxpool.Pool
}

// NewIDMapRepo создаёт новый IDMapRepo.
func NewIDMapRepo(pool *pgxpool.Pool) *IDMapRepo {
	return &IDMapRepo{pool: pool}
}

// Lookup возвращает запись или nil, если строка ещё не встречалась.
func (r *IDMapRepo) Lookup(ctx context.Context, jobID, sourceID string) (*migrate.MapEntry, error) {
	query := `
		SELECT source_id, dest_id, status, message
		FROM id_map
		WHERE job_id = $1 AND source_id = $2
	`
	var entry migrate.MapEntry
	var destID, message *string

	err := r.pool.QueryRow(ctx, query, jobID, sourceID).Scan(&entry.SourceID, &destID, &entry.Status, &message)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup id map: %w", err)
	}

	if destID != nil {
		entry.DestID = *destID
	}
	if message != nil {
		entry.Message = *message
	}
	return &entry, nil
}

// Save создаёт или обновляет запись.
func (r *IDMapRepo) Save(ctx context.Context, jobID string, entry migrate.MapEntry) error {
	query := `
		INSERT INTO id_map (job_id, source_id, dest_id, status, message, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (job_id, source_id) DO UPDATE
		SET dest_id = EXCLUDED.dest_id,
		    status = EXCLUDED.status,
		    message = EXCLUDED.message,
		    updated_at = now()
	`
	_, err := r.pool.Exec(ctx, query,
		jobID,
		entry.SourceID,
		nullString(entry.DestID),
		entry.Status,
		nullString(entry.Message),
	)
	if err != nil {
		return fmt.Errorf("save id map: %w", err)
	}
	return nil
}

// PrepareUpdate помечает все записи job как needs_update.
func (r *IDMapRepo) PrepareUpdate(ctx context.Context, jobID string) (int64, error) {
	query := `
		UPDATE id_map
		SET status = $2, updated_at = now()
		WHERE job_id = $1
	`
	result, err := r.pool.Exec(ctx, query, jobID, migrate.MapStatusNeedsUpdate)
	if err != nil {
		return 0, fmt.Errorf("prepare update: %w", err)
	}
	return result.RowsAffected(), nil
}
