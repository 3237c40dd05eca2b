package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/ContentImport/internal/batch"
	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/importer"
	"github.com/shaiso/ContentImport/internal/mq"
	"github.com/shaiso/ContentImport/internal/repo"
)

// --- Fakes ---

type fakeBatches struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*domain.Batch
	claimed []uuid.UUID
	listErr error
}

func newFakeBatches(batches ...*domain.Batch) *fakeBatches {
	f := &fakeBatches{batches: make(map[uuid.UUID]*domain.Batch)}
	for _, b := range batches {
		f.batches[b.ID] = b
	}
	return f
}

func (f *fakeBatches) GetByID(_ context.Context, id uuid.UUID) (*domain.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBatches) ListPending(context.Context, int) ([]domain.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Batch
	for _, b := range f.batches {
		if b.Status == domain.BatchStatusPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBatches) Claim(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.batches[id]
	if b.Status != domain.BatchStatusPending {
		return repo.ErrInvalidState
	}
	b.Status = domain.BatchStatusRunning
	f.claimed = append(f.claimed, id)
	return nil
}

func (f *fakeBatches) Requeue(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.batches {
		if b.Status == domain.BatchStatusRunning {
			b.Status = domain.BatchStatusPending
			n++
		}
	}
	return n, nil
}

type fakeRunner struct {
	ran []uuid.UUID
	err error
}

func (r *fakeRunner) Run(_ context.Context, b *domain.Batch) (importer.Summary, error) {
	r.ran = append(r.ran, b.ID)
	return importer.Summary{Successes: len(b.Languages)}, r.err
}

func newBatch(languages ...string) *domain.Batch {
	return domain.NewBatch("/tmp/products.csv", languages, "api")
}

func pendingDelivery(id uuid.UUID) *mq.Delivery {
	return &mq.Delivery{Message: *mq.NewMessage(mq.MessageTypeBatchPending, mq.BatchPendingPayload{BatchID: id})}
}

// --- processBatch ---

func TestProcessBatch_RunsPendingBatch(t *testing.T) {
	b := newBatch("en", "fr")
	batches := newFakeBatches(b)
	runner := &fakeRunner{}
	w := New(Config{Batches: batches, Runner: runner})

	if err := w.processBatch(context.Background(), b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batches.claimed) != 1 || batches.claimed[0] != b.ID {
		t.Errorf("expected batch to be claimed, got %v", batches.claimed)
	}
	if len(runner.ran) != 1 {
		t.Errorf("expected batch to run once, ran %d times", len(runner.ran))
	}
}

func TestProcessBatch_NotPending(t *testing.T) {
	b := newBatch("en")
	b.Status = domain.BatchStatusSucceeded
	runner := &fakeRunner{}
	w := New(Config{Batches: newFakeBatches(b), Runner: runner})

	err := w.processBatch(context.Background(), b.ID)
	if !errors.Is(err, ErrBatchNotPending) {
		t.Fatalf("expected ErrBatchNotPending, got %v", err)
	}
	if len(runner.ran) != 0 {
		t.Error("finished batch should not run")
	}
}

func TestProcessBatch_NotFound(t *testing.T) {
	w := New(Config{Batches: newFakeBatches(), Runner: &fakeRunner{}})

	err := w.processBatch(context.Background(), uuid.New())
	if !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestProcessBatch_RunnerErrorIsNotReturned(t *testing.T) {
	b := newBatch("it")
	w := New(Config{Batches: newFakeBatches(b), Runner: &fakeRunner{err: errors.New("job not found")}})

	if err := w.processBatch(context.Background(), b.ID); err != nil {
		t.Fatalf("runner error should be absorbed, got %v", err)
	}
}

func TestProcessBatch_InterruptedBatchIsNotAnError(t *testing.T) {
	b := newBatch("en")
	runner := &fakeRunner{err: fmt.Errorf("%w: %w", batch.ErrInterrupted, context.Canceled)}
	w := New(Config{Batches: newFakeBatches(b), Runner: runner})

	if err := w.processBatch(context.Background(), b.ID); err != nil {
		t.Fatalf("interrupted batch should not be reported, got %v", err)
	}
	if len(runner.ran) != 1 {
		t.Errorf("runner called %d times, want 1", len(runner.ran))
	}
}

// --- handleBatchPending ---

func TestHandleBatchPending_AcksProcessedBatch(t *testing.T) {
	b := newBatch("en")
	runner := &fakeRunner{}
	w := New(Config{Batches: newFakeBatches(b), Runner: runner})

	if err := w.handleBatchPending(context.Background(), pendingDelivery(b.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.ran) != 1 {
		t.Errorf("expected 1 run, got %d", len(runner.ran))
	}

	// Повторное событие для того же batch — ack без выполнения.
	if err := w.handleBatchPending(context.Background(), pendingDelivery(b.ID)); err != nil {
		t.Fatalf("duplicate event should be acked, got %v", err)
	}
	if len(runner.ran) != 1 {
		t.Errorf("duplicate event should not run batch again")
	}
}

func TestHandleBatchPending_UnknownBatchAcked(t *testing.T) {
	w := New(Config{Batches: newFakeBatches(), Runner: &fakeRunner{}})

	if err := w.handleBatchPending(context.Background(), pendingDelivery(uuid.New())); err != nil {
		t.Fatalf("unknown batch should be acked, got %v", err)
	}
}

func TestHandleBatchPending_UnexpectedType(t *testing.T) {
	w := New(Config{Batches: newFakeBatches(), Runner: &fakeRunner{}})
	delivery := &mq.Delivery{Message: *mq.NewMessage("task.ready", nil)}

	err := w.handleBatchPending(context.Background(), delivery)
	if !errors.Is(err, ErrUnexpectedMessage) {
		t.Fatalf("expected ErrUnexpectedMessage, got %v", err)
	}
}

// --- poll ---

func TestPoll_RunsAllPending(t *testing.T) {
	done := newBatch("en")
	done.Status = domain.BatchStatusSucceeded
	a, b := newBatch("en"), newBatch("fr")
	runner := &fakeRunner{}
	w := New(Config{Batches: newFakeBatches(done, a, b), Runner: runner})

	w.poll(context.Background())

	if len(runner.ran) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runner.ran))
	}
	for _, id := range runner.ran {
		if id == done.ID {
			t.Error("finished batch should not be polled")
		}
	}
}

func TestPoll_ListError(t *testing.T) {
	batches := newFakeBatches(newBatch("en"))
	batches.listErr = errors.New("db down")
	runner := &fakeRunner{}
	w := New(Config{Batches: batches, Runner: runner})

	w.poll(context.Background())

	if len(runner.ran) != 0 {
		t.Error("nothing should run when listing fails")
	}
}

func TestStartStop_PollingOnly(t *testing.T) {
	b := newBatch("en")
	runner := &fakeRunner{}
	w := New(Config{Batches: newFakeBatches(b), Runner: runner})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()

	// Первый poll выполняется сразу при старте, до Stop
	// он мог не успеть — проверяем только, что Stop не завис.
	if len(runner.ran) > 1 {
		t.Errorf("batch ran %d times", len(runner.ran))
	}
}

func TestStart_RequeuesRunningBatches(t *testing.T) {
	b := newBatch("en")
	b.Status = domain.BatchStatusRunning
	batches := newFakeBatches(b)
	w := New(Config{Batches: batches, Runner: &fakeRunner{}})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()

	got, err := batches.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// fakeRunner не меняет статус: batch либо снова PENDING, либо взят poll.
	if got.Status != domain.BatchStatusPending && got.Status != domain.BatchStatusRunning {
		t.Errorf("status = %s", got.Status)
	}
	if got.Status == domain.BatchStatusRunning && len(batches.claimed) != 1 {
		t.Errorf("running batch was not reclaimed")
	}
}
