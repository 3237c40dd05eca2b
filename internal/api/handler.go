package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/migrate"
	"github.com/shaiso/ContentImport/internal/repo"
)

// BatchStore — хранилище batch.
type BatchStore interface {
	Create(ctx context.Context, b *domain.Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, filter repo.BatchFilter) ([]domain.Batch, error)
}

// SettingsStore — хранилище настроек импорта.
type SettingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, s *domain.Settings) error
}

// JobStates — состояние jobs.
type JobStates interface {
	Get(ctx context.Context, jobID string) (domain.JobState, bool, error)
	SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error
	SetInterrupt(ctx context.Context, jobID string, result domain.RunResult) error
}

// JobCatalog — definitions jobs (migrate.Manager).
type JobCatalog interface {
	Definitions() []domain.Definition
	Definition(id string) (domain.Definition, error)
	Invalidate()
	Sample(ctx context.Context, id string, overrides map[string]any, n int) ([]migrate.Row, error)
}

// Languages — сконфигурированные языки.
type Languages interface {
	List() []domain.Language
	Has(code string) bool
	Default() string
}

// Publisher уведомляет worker о новом batch.
type Publisher interface {
	PublishBatchPending(ctx context.Context, batchID uuid.UUID) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	batches   BatchStore
	settings  SettingsStore
	states    JobStates
	jobs      JobCatalog
	languages Languages
	publisher Publisher

	baseJob string
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Batches   BatchStore
	Settings  SettingsStore
	States    JobStates
	Jobs      JobCatalog
	Languages Languages

	// Publisher — опционально; без него batch заберёт polling worker.
	Publisher Publisher

	// BaseJob — job, чей источник используется для проверки файла.
	BaseJob string

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		batches:   cfg.Batches,
		settings:  cfg.Settings,
		states:    cfg.States,
		jobs:      cfg.Jobs,
		languages: cfg.Languages,
		publisher: cfg.Publisher,
		baseJob:   cfg.BaseJob,
		logger:    logger,
	}
}
