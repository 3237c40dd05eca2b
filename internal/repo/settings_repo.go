package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/ContentImport/internal/domain"
)

// SettingsRepo — репозиторий сохранённых настроек формы импорта.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

// NewSettingsRepo создаёт новый SettingsRepo.
func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get возвращает сохранённые настройки или ErrNotFound.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	query := `SELECT products_csv, language FROM import_settings WHERE id = 1`

	var s domain.Settings
	err := r.pool.QueryRow(ctx, query).Scan(&s.ProductsCSV, &s.Language)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// Save сохраняет настройки.
func (r *SettingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	query := `
		INSERT INTO import_settings (id, products_csv, language, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET products_csv = EXCLUDED.products_csv,
		    language = EXCLUDED.language,
		    updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, s.ProductsCSV, s.Language); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
