package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/migrate"
)

// scriptedStepper отдаёт заранее заданные результаты по языкам.
type scriptedStepper struct {
	results map[string][]domain.RunResult
	err     error
	calls   []string
	// seen — NumProcessed/Continuing на входе каждого вызова.
	seen []domain.BatchContext
}

func (s *scriptedStepper) Run(_ context.Context, language string, bc *domain.BatchContext) error {
	s.calls = append(s.calls, language)
	s.seen = append(s.seen, *bc)
	if s.err != nil {
		return s.err
	}

	queue := s.results[language]
	result := domain.RunResultCompleted
	if len(queue) > 0 {
		result = queue[0]
		s.results[language] = queue[1:]
	}

	switch result {
	case domain.RunResultIncomplete:
		bc.NumProcessed += 2
		bc.Continuing = true
		bc.Finished = false
	case domain.RunResultFailed:
		bc.Failures++
		bc.Finished = true
	default:
		bc.Successes++
		bc.NumProcessed = 0
		bc.Continuing = false
		bc.Finished = true
	}
	bc.AddMessage(language + ":" + result.String())
	return nil
}

type memStore struct {
	updates  int
	statuses []domain.BatchStatus
	err      error
}

func (m *memStore) Update(_ context.Context, b *domain.Batch) error {
	m.updates++
	m.statuses = append(m.statuses, b.Status)
	return m.err
}

func newTestRunner(stepper *scriptedStepper, store *memStore, maxSteps int) *Runner {
	return NewRunner(Config{
		Steppers: func(*domain.Batch) Stepper { return stepper },
		Store:    store,
		MaxSteps: maxSteps,
	})
}

func TestRunner_AllLanguagesCompleted(t *testing.T) {
	stepper := &scriptedStepper{results: map[string][]domain.RunResult{}}
	store := &memStore{}
	b := domain.NewBatch("/tmp/products.csv", []string{"en", "fr", "de"}, "api")

	summary, err := newTestRunner(stepper, store, 0).Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "fr", "de"}, stepper.calls)
	assert.True(t, summary.OK())
	assert.Equal(t, 3, summary.Successes)
	assert.Equal(t, domain.BatchStatusSucceeded, b.Status)
	assert.Equal(t, 3, b.Step)
	assert.NotNil(t, b.FinishedAt)
	assert.Equal(t, domain.BatchStatusSucceeded, store.statuses[len(store.statuses)-1])
}

func TestRunner_IncompleteRepeatsLanguage(t *testing.T) {
	stepper := &scriptedStepper{results: map[string][]domain.RunResult{
		"en": {domain.RunResultIncomplete, domain.RunResultIncomplete, domain.RunResultCompleted},
		"fr": {domain.RunResultIncomplete, domain.RunResultCompleted},
	}}
	b := domain.NewBatch("/tmp/products.csv", []string{"en", "fr"}, "api")

	_, err := newTestRunner(stepper, &memStore{}, 0).Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "en", "en", "fr", "fr"}, stepper.calls)

	// Следующий язык начинается с чистого счётчика.
	fr := stepper.seen[3]
	assert.Zero(t, fr.NumProcessed)
	assert.False(t, fr.Continuing)

	// Продолжение того же языка видит накопленный счётчик.
	assert.Equal(t, 4, stepper.seen[2].NumProcessed)
	assert.True(t, stepper.seen[2].Continuing)
}

func TestRunner_FailuresMarkBatchFailed(t *testing.T) {
	stepper := &scriptedStepper{results: map[string][]domain.RunResult{
		"fr": {domain.RunResultFailed},
	}}
	b := domain.NewBatch("/tmp/products.csv", []string{"en", "fr", "de"}, "api")

	summary, err := newTestRunner(stepper, &memStore{}, 0).Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "fr", "de"}, stepper.calls)
	assert.False(t, summary.OK())
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, domain.BatchStatusFailed, b.Status)
	assert.Equal(t, "1 import jobs failed", b.Error)
}

func TestRunner_FatalStepError(t *testing.T) {
	fatal := errors.New("job not found")
	stepper := &scriptedStepper{err: fatal}
	store := &memStore{}
	b := domain.NewBatch("/tmp/products.csv", []string{"it"}, "api")

	_, err := newTestRunner(stepper, store, 0).Run(context.Background(), b)

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, domain.BatchStatusFailed, b.Status)
	assert.Equal(t, "job not found", b.Error)
	assert.Equal(t, domain.BatchStatusFailed, store.statuses[len(store.statuses)-1])
}

func TestRunner_MaxSteps(t *testing.T) {
	stepper := &scriptedStepper{results: map[string][]domain.RunResult{
		"en": {domain.RunResultIncomplete, domain.RunResultIncomplete, domain.RunResultIncomplete, domain.RunResultIncomplete},
	}}
	b := domain.NewBatch("/tmp/products.csv", []string{"en"}, "api")

	_, err := newTestRunner(stepper, &memStore{}, 3).Run(context.Background(), b)

	assert.ErrorIs(t, err, ErrTooManySteps)
	assert.Len(t, stepper.calls, 3)
	assert.Equal(t, domain.BatchStatusFailed, b.Status)
}

func TestRunner_ResumesFromStep(t *testing.T) {
	stepper := &scriptedStepper{results: map[string][]domain.RunResult{}}
	b := domain.NewBatch("/tmp/products.csv", []string{"en", "fr", "de"}, "api")
	b.Step = 2
	b.Context.Successes = 2

	summary, err := newTestRunner(stepper, &memStore{}, 0).Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"de"}, stepper.calls)
	assert.Equal(t, 3, summary.Successes)
}

func TestRunner_NoLanguages(t *testing.T) {
	b := domain.NewBatch("/tmp/products.csv", nil, "api")

	_, err := newTestRunner(&scriptedStepper{}, &memStore{}, 0).Run(context.Background(), b)

	assert.ErrorIs(t, err, ErrNoLanguages)
	assert.Equal(t, domain.BatchStatusFailed, b.Status)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stepper := &scriptedStepper{results: map[string][]domain.RunResult{}}
	store := &memStore{}
	b := domain.NewBatch("/tmp/products.csv", []string{"en"}, "api")

	_, err := newTestRunner(stepper, store, 0).Run(ctx, b)

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stepper.calls)
	assert.Equal(t, domain.BatchStatusPending, b.Status)
	assert.Empty(t, b.Error)
}

// stoppingStepper отменяет ctx посреди шага для языка stopAt
// и записывает результат так, как оркестратор пишет STOPPED.
type stoppingStepper struct {
	*scriptedStepper
	stopAt string
	cancel context.CancelFunc
}

func (s *stoppingStepper) Run(ctx context.Context, language string, bc *domain.BatchContext) error {
	if language != s.stopAt || s.cancel == nil {
		return s.scriptedStepper.Run(ctx, language, bc)
	}
	s.calls = append(s.calls, language)
	s.cancel()
	s.cancel = nil
	bc.AddMessage("Operation stopped by request")
	bc.Finished = true
	return nil
}

func TestRunner_ShutdownMidStepRequeuesBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stepper := &stoppingStepper{
		scriptedStepper: &scriptedStepper{results: map[string][]domain.RunResult{}},
		stopAt:          "fr",
		cancel:          cancel,
	}
	store := &memStore{}
	runner := NewRunner(Config{
		Steppers: func(*domain.Batch) Stepper { return stepper },
		Store:    store,
	})
	b := domain.NewBatch("/tmp/products.csv", []string{"en", "fr"}, "api")

	_, err := runner.Run(ctx, b)

	require.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, domain.BatchStatusPending, b.Status)
	assert.Equal(t, 1, b.Step)
	assert.Equal(t, []string{"en:COMPLETED"}, b.Context.Messages)
	assert.Equal(t, 1, b.Context.Successes)
	assert.False(t, b.Context.Finished)
	assert.Nil(t, b.FinishedAt)
	assert.Equal(t, domain.BatchStatusPending, store.statuses[len(store.statuses)-1])

	// После перезапуска прерванный язык выполняется заново.
	summary, err := runner.Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusSucceeded, b.Status)
	assert.Equal(t, 2, summary.Successes)
	assert.Equal(t, []string{"en:COMPLETED", "fr:COMPLETED"}, b.Context.Messages)
	assert.Equal(t, []string{"en", "fr", "fr"}, stepper.calls)
}

func TestOrchestratorFactory_ReloadsDefinitionsPerBatch(t *testing.T) {
	reloads := 0
	m := migrate.NewManager(migrate.Config{
		Definitions: []domain.Definition{{ID: "node_product"}},
		Reload: func() ([]domain.Definition, error) {
			reloads++
			return []domain.Definition{{ID: "node_product"}}, nil
		},
	})
	factory := NewOrchestratorFactory(OrchestratorConfig{Manager: m, BaseID: "node_product"})

	require.Len(t, m.Definitions(), 1)
	require.Equal(t, 1, reloads)

	factory(domain.NewBatch("/tmp/products.csv", []string{"en"}, "api"))
	m.Definitions()
	assert.Equal(t, 2, reloads)
}

func TestSourceOverrides(t *testing.T) {
	assert.Equal(t, map[string]any{"path": "/data/p.csv"}, SourceOverrides("/data/p.csv"))
	assert.Equal(t, map[string]any{"path": "/data/p.XLSX", "plugin": "xlsx"}, SourceOverrides("/data/p.XLSX"))
}
