package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/ContentImport/internal/batch"
	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/mq"
	"github.com/shaiso/ContentImport/internal/repo"
)

// handleBatchPending обрабатывает событие из очереди batches.pending.
func (w *Worker) handleBatchPending(ctx context.Context, delivery *mq.Delivery) error {
	if delivery.Message.Type != mq.MessageTypeBatchPending {
		return fmt.Errorf("%w: %s", ErrUnexpectedMessage, delivery.Message.Type)
	}

	payload, err := mq.ParsePayload[mq.BatchPendingPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse batch.pending payload", "error", err)
		return err
	}

	w.logger.Debug("received batch.pending event", "batch_id", payload.BatchID)

	if err := w.processBatch(ctx, payload.BatchID); err != nil {
		// Batch уже забран другим worker или polling — ack.
		if errors.Is(err, ErrBatchNotFound) || errors.Is(err, ErrBatchNotPending) {
			w.logger.Debug("batch not processed", "batch_id", payload.BatchID, "reason", err)
			return nil
		}
		return err
	}
	return nil
}

// processBatch забирает PENDING batch и выполняет его до конца.
//
// Ошибка шага не возвращается: Runner уже сохранил batch со статусом
// FAILED. Возвращаются только ошибки загрузки и захвата batch.
func (w *Worker) processBatch(ctx context.Context, batchID uuid.UUID) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	b, err := w.batches.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
		}
		return fmt.Errorf("get batch: %w", err)
	}

	if b.Status != domain.BatchStatusPending {
		return ErrBatchNotPending
	}

	if err := w.batches.Claim(ctx, b.ID); err != nil {
		if errors.Is(err, repo.ErrInvalidState) {
			return ErrBatchNotPending
		}
		return fmt.Errorf("claim batch: %w", err)
	}

	w.logger.Info("batch claimed", "batch_id", b.ID, "languages", b.Languages, "source", b.Source)

	summary, err := w.runner.Run(ctx, b)
	if errors.Is(err, batch.ErrInterrupted) {
		w.logger.Info("batch interrupted by shutdown", "batch_id", b.ID)
		return nil
	}
	if err != nil {
		w.logger.Error("batch run failed", "batch_id", b.ID, "error", err)
		return nil
	}

	for _, n := range summary.Notices {
		w.logger.Info("batch summary", "batch_id", b.ID, "severity", n.Severity, "text", n.Text)
	}
	return nil
}
