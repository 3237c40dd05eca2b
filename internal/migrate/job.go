package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shaiso/ContentImport/internal/domain"
)

// Job — экземпляр import job: definition с созданными плагинами.
//
// Job не хранит состояние в памяти: статус, interrupt и last result
// лежат в StateStore, соответствия строк — в IDMap. Поэтому job,
// упавший вместе с процессом, может быть сброшен из другого процесса.
type Job struct {
	def    domain.Definition
	source Source
	dest   Destination

	states StateStore
	idMap  IDMap

	// limit — максимум строк за один Execute (0 — без лимита).
	limit int

	// interruptCheck — как часто (в строках) перечитывать interrupt.
	interruptCheck int

	logger *slog.Logger
}

// ID возвращает id job.
func (j *Job) ID() string {
	return j.def.ID
}

// Definition возвращает definition job.
func (j *Job) Definition() domain.Definition {
	return j.def
}

// Status возвращает текущий статус job.
// Для job, который ещё не запускался, — статус из definition.
func (j *Job) Status(ctx context.Context) (domain.JobStatus, error) {
	state, err := j.state(ctx)
	if err != nil {
		return "", err
	}
	return state.Status, nil
}

// Interrupt запрашивает остановку job.
// Выполняющийся Execute заметит interrupt и вернёт result.
func (j *Job) Interrupt(ctx context.Context, result domain.RunResult) error {
	if err := j.states.SetInterrupt(ctx, j.def.ID, result); err != nil {
		return fmt.Errorf("interrupt %s: %w", j.def.ID, err)
	}
	if err := j.states.SetStatus(ctx, j.def.ID, domain.JobStatusStopping); err != nil {
		return fmt.Errorf("interrupt %s: %w", j.def.ID, err)
	}
	return nil
}

// SetStatus сохраняет статус job.
func (j *Job) SetStatus(ctx context.Context, status domain.JobStatus) error {
	if err := j.states.SetStatus(ctx, j.def.ID, status); err != nil {
		return fmt.Errorf("set status %s: %w", j.def.ID, err)
	}
	return nil
}

// PrepareUpdate помечает уже импортированные строки для обновления,
// чтобы следующий Execute перезаписал их вместо пропуска.
func (j *Job) PrepareUpdate(ctx context.Context) error {
	n, err := j.idMap.PrepareUpdate(ctx, j.def.ID)
	if err != nil {
		return fmt.Errorf("prepare update %s: %w", j.def.ID, err)
	}
	j.logger.Debug("rows marked for update", "count", n)
	return nil
}

// Execute выполняет один проход импорта.
//
// Ошибки не возвращаются: любой исход — это domain.Outcome.
func (j *Job) Execute(ctx context.Context) domain.Outcome {
	state, err := j.state(ctx)
	if err != nil {
		return failed(err)
	}

	switch state.Status {
	case domain.JobStatusDisabled:
		return domain.Outcome{Result: domain.RunResultDisabled}
	case domain.JobStatusIdle:
	default:
		return failed(fmt.Errorf("%w: status %s", ErrJobBusy, state.Status))
	}

	if err := j.checkRequirements(ctx); err != nil {
		if errors.Is(err, ErrRequirementsNotMet) {
			return domain.Outcome{Result: domain.RunResultSkipped, Err: err}
		}
		return failed(err)
	}

	if err := j.states.SetInterrupt(ctx, j.def.ID, 0); err != nil {
		return failed(fmt.Errorf("clear interrupt: %w", err))
	}
	if err := j.states.SetStatus(ctx, j.def.ID, domain.JobStatusImporting); err != nil {
		return failed(fmt.Errorf("set importing: %w", err))
	}

	outcome := j.importRows(ctx)

	// Статус и результат сохраняем даже при отменённом ctx.
	saveCtx := context.WithoutCancel(ctx)
	if err := j.states.SetStatus(saveCtx, j.def.ID, domain.JobStatusIdle); err != nil {
		j.logger.Error("failed to reset job status", "error", err)
	}
	if err := j.states.SetLastResult(saveCtx, j.def.ID, outcome.Result); err != nil {
		j.logger.Error("failed to save last result", "error", err)
	}

	return outcome
}

// importRows обходит источник.
func (j *Job) importRows(ctx context.Context) domain.Outcome {
	it, err := j.source.Open(ctx)
	if err != nil {
		return failed(err)
	}
	defer it.Close()

	processed := 0
	for {
		if ctx.Err() != nil {
			return domain.Outcome{Result: domain.RunResultStopped, Processed: processed, Err: ctx.Err()}
		}

		if processed > 0 && processed%j.interruptCheck == 0 {
			if result, ok := j.interrupted(ctx); ok {
				return domain.Outcome{Result: result, Processed: processed}
			}
		}

		row, err := it.Next()
		if errors.Is(err, io.EOF) {
			return domain.Outcome{Result: domain.RunResultCompleted, Processed: processed}
		}
		if err != nil {
			return domain.Outcome{Result: domain.RunResultFailed, Processed: processed, Err: fmt.Errorf("read source: %w", err)}
		}

		id, err := sourceID(j.source.IDs(), row)
		if err != nil {
			j.logger.Warn("skipping source row", "error", err)
			continue
		}

		entry, err := j.idMap.Lookup(ctx, j.def.ID, id)
		if err != nil {
			return domain.Outcome{Result: domain.RunResultFailed, Processed: processed, Err: err}
		}
		if entry != nil && entry.Status != MapStatusNeedsUpdate {
			continue
		}

		// Строка ещё не обработана, а лимит шага исчерпан.
		if j.limit > 0 && processed >= j.limit {
			return domain.Outcome{Result: domain.RunResultIncomplete, Processed: processed}
		}

		if err := j.importRow(ctx, id, row, entry); err != nil {
			return domain.Outcome{Result: domain.RunResultFailed, Processed: processed, Err: err}
		}
		processed++
	}
}

// importRow импортирует одну строку. Ошибка строки записывается в id map
// и не останавливает job; возвращаются только ошибки хранилища id map.
func (j *Job) importRow(ctx context.Context, id string, row Row, entry *MapEntry) error {
	existing := ""
	if entry != nil {
		existing = entry.DestID
	}

	destID, err := j.writeRow(ctx, row, existing)
	if err != nil {
		j.logger.Warn("row import failed", "source_id", id, "error", err)
		return j.idMap.Save(ctx, j.def.ID, MapEntry{
			SourceID: id,
			DestID:   existing,
			Status:   MapStatusFailed,
			Message:  err.Error(),
		})
	}

	return j.idMap.Save(ctx, j.def.ID, MapEntry{
		SourceID: id,
		DestID:   destID,
		Status:   MapStatusImported,
	})
}

func (j *Job) writeRow(ctx context.Context, row Row, existing string) (string, error) {
	values, err := applyProcess(j.def.Process, row)
	if err != nil {
		return "", err
	}
	return j.dest.Import(ctx, values, existing)
}

// interrupted перечитывает запрошенный interrupt.
func (j *Job) interrupted(ctx context.Context) (domain.RunResult, bool) {
	state, _, err := j.states.Get(ctx, j.def.ID)
	if err != nil {
		j.logger.Warn("failed to read interrupt", "error", err)
		return 0, false
	}
	if state.Interrupt == 0 {
		return 0, false
	}
	return state.Interrupt, true
}

// checkRequirements проверяет, что все зависимости завершены с COMPLETED.
func (j *Job) checkRequirements(ctx context.Context) error {
	for _, req := range j.def.Requirements {
		state, found, err := j.states.Get(ctx, req)
		if err != nil {
			return fmt.Errorf("read requirement %s: %w", req, err)
		}
		if !found || state.LastResult != domain.RunResultCompleted {
			return fmt.Errorf("%w: %s", ErrRequirementsNotMet, req)
		}
	}
	return nil
}

// state возвращает состояние job с учётом статуса из definition.
func (j *Job) state(ctx context.Context) (domain.JobState, error) {
	state, found, err := j.states.Get(ctx, j.def.ID)
	if err != nil {
		return domain.JobState{}, fmt.Errorf("read state %s: %w", j.def.ID, err)
	}

	// DISABLED в definition сильнее сохранённого статуса.
	if j.def.Status == domain.JobStatusDisabled {
		state.Status = domain.JobStatusDisabled
	}
	if !found {
		state.JobID = j.def.ID
		if state.Status == "" {
			state.Status = domain.JobStatusIdle
		}
	}
	return state, nil
}

func failed(err error) domain.Outcome {
	return domain.Outcome{Result: domain.RunResultFailed, Err: err}
}
