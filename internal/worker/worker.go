package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/importer"
	"github.com/shaiso/ContentImport/internal/mq"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 10
)

// BatchStore — операции хранилища batch, нужные worker.
type BatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	ListPending(ctx context.Context, limit int) ([]domain.Batch, error)
	Claim(ctx context.Context, id uuid.UUID) error
	Requeue(ctx context.Context) (int64, error)
}

// Runner выполняет batch до конца.
type Runner interface {
	Run(ctx context.Context, b *domain.Batch) (importer.Summary, error)
}

// Worker выполняет batch импорта.
//
// Worker:
//   - Получает batch из очереди batches.pending (prefetch 1)
//   - Периодически проверяет PENDING batch в БД (polling fallback)
//   - Выполняет batch строго последовательно
type Worker struct {
	batches BatchStore
	runner  Runner

	// MQ (nil — только polling)
	conn     *mq.Connection
	consumer *mq.Consumer

	pollInterval time.Duration
	batchSize    int

	// runMu — batch выполняются по одному.
	runMu sync.Mutex

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Worker.
type Config struct {
	Batches BatchStore
	Runner  Runner

	// Conn — соединение с RabbitMQ (опционально).
	Conn *mq.Connection

	// PollInterval — интервал polling (default: 10s).
	PollInterval time.Duration

	// BatchSize — количество batch за один poll (default: 10).
	BatchSize int

	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		batches:      cfg.Batches,
		runner:       cfg.Runner,
		conn:         cfg.Conn,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start запускает consumer (если есть соединение) и polling.
// Не блокирует.
func (w *Worker) Start(ctx context.Context) error {
	// Worker один: RUNNING batch остались от прошлого процесса.
	n, err := w.batches.Requeue(ctx)
	if err != nil {
		return fmt.Errorf("requeue running batches: %w", err)
	}
	if n > 0 {
		w.logger.Warn("requeued interrupted batches", "count", n)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"mq", w.conn != nil,
	)

	if w.conn != nil {
		w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueBatchesPending),
			Handler:  w.handleBatchPending,
			Prefetch: 1,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("batch consumer error", "error", err)
			}
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx)
	}()

	return nil
}

// Stop останавливает Worker и ждёт текущий batch.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}
	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// pollLoop — цикл polling для fallback.
func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу: подхватываем batch, созданные пока worker был выключен.
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (w *Worker) poll(ctx context.Context) {
	pending, err := w.batches.ListPending(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to list pending batches", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	w.logger.Debug("poll found pending batches", "count", len(pending))

	for i := range pending {
		if ctx.Err() != nil {
			return
		}
		err := w.processBatch(ctx, pending[i].ID)
		if err != nil && !errors.Is(err, ErrBatchNotPending) {
			w.logger.Error("failed to process batch from poll", "batch_id", pending[i].ID, "error", err)
		}
	}
}
