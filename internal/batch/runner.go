package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/importer"
	"github.com/shaiso/ContentImport/internal/migrate"
	"github.com/shaiso/ContentImport/internal/telemetry"
)

// Default configuration values.
const (
	defaultMaxSteps = 1000
)

// Stepper выполняет один шаг импорта для языка.
type Stepper interface {
	Run(ctx context.Context, language string, bc *domain.BatchContext) error
}

// StepperFactory создаёт Stepper для batch.
type StepperFactory func(b *domain.Batch) Stepper

// Store сохраняет batch между шагами.
type Store interface {
	Update(ctx context.Context, b *domain.Batch) error
}

// Runner выполняет batch импорта до конца.
type Runner struct {
	steppers StepperFactory
	store    Store
	maxSteps int
	logger   *slog.Logger
}

// Config — конфигурация Runner.
type Config struct {
	// Steppers — фабрика оркестраторов для batch.
	Steppers StepperFactory

	// Store — хранилище batch.
	Store Store

	// MaxSteps — максимум шагов на batch (default: 1000).
	MaxSteps int

	// Logger
	Logger *slog.Logger
}

// NewRunner создаёт новый Runner.
func NewRunner(cfg Config) *Runner {
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		steppers: cfg.Steppers,
		store:    cfg.Store,
		maxSteps: maxSteps,
		logger:   logger,
	}
}

// Run выполняет batch. Batch уже может быть частично выполнен:
// шаги продолжаются с b.Step и сохранённого b.Context.
//
// Возвращает итог импорта. Ошибка возвращается, если шаг завершился
// фатальной ошибкой оркестратора или batch не удалось сохранить;
// в первом случае batch сохраняется со статусом FAILED.
// При отмене ctx batch возвращается в PENDING без результата
// прерванного шага, ошибка — ErrInterrupted.
func (r *Runner) Run(ctx context.Context, b *domain.Batch) (importer.Summary, error) {
	logger := telemetry.WithBatchID(r.logger, b.ID.String())

	if len(b.Languages) == 0 {
		return importer.Summary{}, r.fail(ctx, b, 0, ErrNoLanguages, logger)
	}

	b.MarkRunning()
	if err := r.store.Update(ctx, b); err != nil {
		return importer.Summary{}, fmt.Errorf("save batch: %w", err)
	}
	logger.Info("batch started", "languages", b.Languages, "step", b.Step)

	stepper := r.steppers(b)
	steps := 0

	for b.Step < len(b.Languages) {
		if steps >= r.maxSteps {
			return importer.Summary{}, r.fail(ctx, b, steps, fmt.Errorf("%w: %d", ErrTooManySteps, r.maxSteps), logger)
		}
		if ctx.Err() != nil {
			return importer.Summary{}, r.requeue(ctx, b, logger)
		}

		language := b.Languages[b.Step]
		before := b.Context.Clone()
		err := stepper.Run(ctx, language, &b.Context)

		// Остановка процесса посреди шага: результат шага отбрасывается,
		// шаг повторится после перезапуска.
		if ctx.Err() != nil {
			b.Context = before
			return importer.Summary{}, r.requeue(ctx, b, logger)
		}
		if err != nil {
			return importer.Summary{}, r.fail(ctx, b, steps, err, logger)
		}
		steps++

		if b.Context.Finished {
			b.Step++
			b.Context.NumProcessed = 0
			b.Context.Continuing = false
			b.Context.Finished = false
		}

		if err := r.store.Update(ctx, b); err != nil {
			return importer.Summary{}, fmt.Errorf("save batch: %w", err)
		}
		logger.Debug("batch step done", "language", language, "step", b.Step, "steps", steps)
	}

	summary := importer.Finish(b.Context)
	if summary.OK() {
		b.MarkSucceeded()
	} else {
		b.MarkFailed(fmt.Sprintf("%d import jobs failed", summary.Failures))
	}

	if err := r.store.Update(context.WithoutCancel(ctx), b); err != nil {
		return summary, fmt.Errorf("save batch: %w", err)
	}

	telemetry.ObserveBatch(string(b.Status), steps, b.Duration())
	logger.Info("batch finished",
		"status", b.Status,
		"successes", summary.Successes,
		"failures", summary.Failures,
		"steps", steps,
		"duration", b.Duration(),
	)
	return summary, nil
}

// fail сохраняет batch со статусом FAILED и возвращает cause.
func (r *Runner) fail(ctx context.Context, b *domain.Batch, steps int, cause error, logger *slog.Logger) error {
	b.MarkFailed(cause.Error())
	if err := r.store.Update(context.WithoutCancel(ctx), b); err != nil {
		logger.Error("failed to save failed batch", "error", err)
	}
	telemetry.ObserveBatch(string(b.Status), steps, b.Duration())
	logger.Error("batch failed", "error", cause, "step", b.Step)
	return cause
}

// requeue возвращает batch в PENDING с текущими Step и Context.
func (r *Runner) requeue(ctx context.Context, b *domain.Batch, logger *slog.Logger) error {
	b.MarkPending()
	if err := r.store.Update(context.WithoutCancel(ctx), b); err != nil {
		logger.Error("failed to requeue interrupted batch", "error", err)
	}
	logger.Warn("batch interrupted, returned to queue", "step", b.Step)
	return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
}

// OrchestratorConfig — параметры оркестраторов, создаваемых для batch.
type OrchestratorConfig struct {
	Manager           *migrate.Manager
	BaseID            string
	TranslationBaseID string
	DefaultLocale     string
	Logger            *slog.Logger
}

// NewOrchestratorFactory возвращает StepperFactory, чьи оркестраторы
// читают файл batch. Definitions перечитываются в начале каждого batch.
func NewOrchestratorFactory(cfg OrchestratorConfig) StepperFactory {
	return func(b *domain.Batch) Stepper {
		cfg.Manager.Invalidate()

		logger := cfg.Logger
		if logger == nil {
			logger = slog.Default()
		}
		return importer.New(importer.Config{
			Jobs:              importer.ManagerFactory{Manager: cfg.Manager.WithSource(SourceOverrides(b.CSVPath))},
			BaseID:            cfg.BaseID,
			TranslationBaseID: cfg.TranslationBaseID,
			DefaultLocale:     cfg.DefaultLocale,
			Logger:            telemetry.WithBatchID(logger, b.ID.String()),
		})
	}
}

// SourceOverrides возвращает overrides source для загруженного файла.
// Для .xlsx выбирается источник xlsx.
func SourceOverrides(path string) map[string]any {
	overrides := map[string]any{"path": path}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		overrides["plugin"] = "xlsx"
	}
	return overrides
}
