package migrate

import (
	"context"

	"github.com/shaiso/ContentImport/internal/domain"
)

// StateStore хранит статус jobs между процессами.
type StateStore interface {
	// Get возвращает состояние job; found=false, если job ещё не запускался.
	Get(ctx context.Context, jobID string) (state domain.JobState, found bool, err error)

	// SetStatus сохраняет статус job.
	SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error

	// SetInterrupt сохраняет запрошенный interrupt; 0 сбрасывает его.
	SetInterrupt(ctx context.Context, jobID string, result domain.RunResult) error

	// SetLastResult сохраняет результат последнего Execute.
	SetLastResult(ctx context.Context, jobID string, result domain.RunResult) error
}

// MapStatus — статус строки в id map.
type MapStatus string

const (
	// MapStatusImported — строка импортирована и актуальна.
	MapStatusImported MapStatus = "imported"

	// MapStatusNeedsUpdate — строка будет импортирована повторно.
	MapStatusNeedsUpdate MapStatus = "needs_update"

	// MapStatusFailed — импорт строки завершился ошибкой.
	MapStatusFailed MapStatus = "failed"
)

// MapEntry — соответствие строки источника записи назначения.
type MapEntry struct {
	SourceID string
	DestID   string
	Status   MapStatus
	Message  string
}

// IDMap хранит соответствия source id → destination id по jobs.
type IDMap interface {
	// Lookup возвращает запись или nil, если строка ещё не встречалась.
	Lookup(ctx context.Context, jobID, sourceID string) (*MapEntry, error)

	// Save создаёт или обновляет запись.
	Save(ctx context.Context, jobID string, entry MapEntry) error

	// PrepareUpdate помечает все записи job как needs_update.
	// Возвращает число помеченных записей.
	PrepareUpdate(ctx context.Context, jobID string) (int64, error)
}
