package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/repo"
)

// sourceScheduler — значение Batch.Source для batch, созданных планировщиком.
const sourceScheduler = "scheduler"

// SettingsStore возвращает сохранённые настройки импорта.
type SettingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

// BatchStore создаёт batch и ищет незавершённые.
type BatchStore interface {
	Create(ctx context.Context, b *domain.Batch) error
	List(ctx context.Context, filter repo.BatchFilter) ([]domain.Batch, error)
}

// Publisher уведомляет worker о новом batch.
type Publisher interface {
	PublishBatchPending(ctx context.Context, batchID uuid.UUID) error
}

// Scheduler повторяет импорт последних сохранённых настроек по расписанию.
type Scheduler struct {
	settings  SettingsStore
	batches   BatchStore
	publisher Publisher
	expr      string
	logger    *slog.Logger

	cron *cron.Cron
}

// Config — конфигурация Scheduler.
type Config struct {
	Settings SettingsStore
	Batches  BatchStore

	// Publisher — опционально; без него batch заберёт polling worker.
	Publisher Publisher

	// CronExpr — расписание ("0 3 * * *", "@daily").
	CronExpr string

	Logger *slog.Logger
}

// New создаёт новый Scheduler. Возвращает ошибку для невалидного CronExpr.
func New(cfg Config) (*Scheduler, error) {
	if err := ValidateCronExpr(cfg.CronExpr); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		settings:  cfg.Settings,
		batches:   cfg.Batches,
		publisher: cfg.Publisher,
		expr:      cfg.CronExpr,
		logger:    logger,
	}, nil
}

// Start запускает cron. Не блокирует; тики получают ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := s.cron.AddFunc(s.expr, func() {
		if _, err := s.Tick(ctx); err != nil {
			s.logger.Error("scheduler tick failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	s.cron.Start()

	next, _ := NextRun(s.expr, time.Now())
	s.logger.Info("scheduler started", "cron", s.expr, "next_run", next)
	return nil
}

// Stop останавливает cron и ждёт текущий тик.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Tick создаёт batch по сохранённым настройкам.
//
// Batch не создаётся, если настроек нет или предыдущий batch ещё
// PENDING/RUNNING. Возвращает созданный batch или nil.
func (s *Scheduler) Tick(ctx context.Context) (*domain.Batch, error) {
	settings, err := s.settings.Get(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		s.logger.Debug("no saved import settings, skipping")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	busy, err := s.hasUnfinished(ctx)
	if err != nil {
		return nil, err
	}
	if busy {
		s.logger.Info("previous batch is still unfinished, skipping")
		return nil, nil
	}

	b := domain.NewBatch(settings.ProductsCSV, []string{settings.Language}, sourceScheduler)
	if err := s.batches.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	s.logger.Info("created batch from schedule",
		"batch_id", b.ID,
		"csv_path", b.CSVPath,
		"language", settings.Language,
	)

	if s.publisher != nil {
		if err := s.publisher.PublishBatchPending(ctx, b.ID); err != nil {
			// Batch уже в БД, worker заберёт его через polling.
			s.logger.Warn("failed to publish batch.pending", "batch_id", b.ID, "error", err)
		}
	}

	return b, nil
}

func (s *Scheduler) hasUnfinished(ctx context.Context) (bool, error) {
	for _, status := range []domain.BatchStatus{domain.BatchStatusPending, domain.BatchStatusRunning} {
		batches, err := s.batches.List(ctx, repo.BatchFilter{Status: status, Limit: 1})
		if err != nil {
			return false, fmt.Errorf("list %s batches: %w", status, err)
		}
		if len(batches) > 0 {
			return true, nil
		}
	}
	return false, nil
}
