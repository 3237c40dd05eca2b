package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/ContentImport/internal/deriver"
	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/migrate"
	"github.com/shaiso/ContentImport/internal/telemetry"
)

// logChannel — канал логов оркестратора.
const logChannel = "content_import"

// Job — операции import job, которые нужны оркестратору.
type Job interface {
	ID() string
	Status(ctx context.Context) (domain.JobStatus, error)
	Interrupt(ctx context.Context, result domain.RunResult) error
	SetStatus(ctx context.Context, status domain.JobStatus) error
	PrepareUpdate(ctx context.Context) error
	Execute(ctx context.Context) domain.Outcome
}

// JobFactory создаёт job по id.
type JobFactory interface {
	CreateJob(ctx context.Context, id string) (Job, error)
}

// ManagerFactory адаптирует migrate.Manager к JobFactory.
type ManagerFactory struct {
	Manager *migrate.Manager
}

// CreateJob создаёт job через migrate.Manager.
func (f ManagerFactory) CreateJob(ctx context.Context, id string) (Job, error) {
	job, err := f.Manager.CreateJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Orchestrator выполняет один шаг batch импорта для одного языка.
//
// Orchestrator:
//   - Выбирает job по языку (базовый или derivative)
//   - Прерывает и сбрасывает зависший предыдущий запуск
//   - Готовит id map к обновлению и запускает job
//   - Классифицирует результат в BatchContext
type Orchestrator struct {
	jobs JobFactory

	baseID            string
	translationBaseID string
	defaultLocale     string

	logger *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Jobs — фабрика jobs.
	Jobs JobFactory

	// BaseID — id job для языка по умолчанию ("node_product").
	BaseID string

	// TranslationBaseID — база id derivatives для остальных языков
	// (default: BaseID).
	TranslationBaseID string

	// DefaultLocale — язык по умолчанию (default: "en").
	DefaultLocale string

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	translationBaseID := cfg.TranslationBaseID
	if translationBaseID == "" {
		translationBaseID = cfg.BaseID
	}

	defaultLocale := cfg.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = domain.DefaultLocale
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		jobs:              cfg.Jobs,
		baseID:            cfg.BaseID,
		translationBaseID: translationBaseID,
		defaultLocale:     defaultLocale,
		logger:            logger.With("channel", logChannel),
	}
}

// JobID возвращает id job для языка.
func (o *Orchestrator) JobID(language string) string {
	if language == o.defaultLocale {
		return o.baseID
	}
	return deriver.DerivativeID(o.translationBaseID, language)
}

// Run выполняет один шаг импорта для языка и обновляет bc.
//
// Ошибка возвращается только если job не найден, не создаётся
// или хранилище статуса недоступно. Любой результат выполнения
// попадает в bc.
func (o *Orchestrator) Run(ctx context.Context, language string, bc *domain.BatchContext) error {
	jobID := o.JobID(language)
	logger := telemetry.WithJobID(o.logger, jobID).With("language", language)

	job, err := o.jobs.CreateJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, migrate.ErrJobNotFound) {
			return fmt.Errorf("%w: %s: %v", ErrJobNotFound, jobID, err)
		}
		return fmt.Errorf("%w: %s: %v", ErrJobConstruction, jobID, err)
	}

	if err := o.resetIfBusy(ctx, job, logger); err != nil {
		return err
	}

	// На продолжении после INCOMPLETE строки уже помечены:
	// повторная пометка вернула бы обработанные строки в очередь.
	// Связано с лимитом строк за шаг в migrate.Job (limit,
	// IMPORT_BATCH_LIMIT): без лимита INCOMPLETE не возникает.
	if !bc.Continuing {
		if err := job.PrepareUpdate(ctx); err != nil {
			return fmt.Errorf("prepare update %s: %w", jobID, err)
		}
	}

	outcome := job.Execute(ctx)
	o.classify(jobID, outcome, bc, logger)

	telemetry.ObserveResult(jobID, outcome.Result.String(), outcome.Processed)
	return nil
}

// resetIfBusy прерывает и сбрасывает в IDLE job, оставшийся в рабочем статусе
// после упавшего или зависшего запуска.
func (o *Orchestrator) resetIfBusy(ctx context.Context, job Job, logger *slog.Logger) error {
	status, err := job.Status(ctx)
	if err != nil {
		return fmt.Errorf("read status %s: %w", job.ID(), err)
	}
	if !status.IsBusy() {
		return nil
	}

	if err := job.Interrupt(ctx, domain.RunResultStopped); err != nil {
		return err
	}
	logger.Info("job is explicitly stopped by content import", "previous_status", status)

	if err := job.SetStatus(ctx, domain.JobStatusIdle); err != nil {
		return err
	}
	logger.Info("job is explicitly set to idle so content can be imported again")

	return nil
}

// classify записывает результат выполнения в bc.
func (o *Orchestrator) classify(jobID string, outcome domain.Outcome, bc *domain.BatchContext, logger *slog.Logger) {
	switch outcome.Result {
	case domain.RunResultCompleted:
		bc.NumProcessed += outcome.Processed
		bc.AddMessage(printer.Sprintf(msgCompleted, jobID, bc.NumProcessed))
		bc.NumProcessed = 0
		bc.Successes++
		bc.Continuing = false
		bc.Finished = true

	case domain.RunResultIncomplete:
		bc.AddMessage(printer.Sprintf(msgContinuing, jobID, outcome.Processed))
		bc.NumProcessed += outcome.Processed
		bc.Continuing = true
		bc.Finished = false

	case domain.RunResultStopped:
		bc.AddMessage(printer.Sprintf(msgStopped))
		bc.Continuing = false
		bc.Finished = true

	case domain.RunResultFailed:
		bc.AddMessage(printer.Sprintf(msgFailed, jobID))
		bc.Failures++
		bc.Continuing = false
		bc.Finished = true
		logger.Error("operation failed", "error", outcome.Err)

	case domain.RunResultSkipped:
		bc.AddMessage(printer.Sprintf(msgSkipped, jobID))
		bc.Continuing = false
		bc.Finished = true
		logger.Error("operation skipped due to unfulfilled dependencies", "error", outcome.Err)

	case domain.RunResultDisabled:
		bc.Continuing = false
		bc.Finished = true

	default:
		// Неизвестный результат считаем ошибкой, чтобы batch не завис.
		bc.AddMessage(printer.Sprintf(msgFailed, jobID))
		bc.Failures++
		bc.Continuing = false
		bc.Finished = true
		logger.Error("unknown run result", "result", outcome.Result)
	}
}
