package domain

import "fmt"

// JobStatus — операционный статус import job.
//
// Жизненный цикл:
//
//	IDLE → IMPORTING → IDLE
//	     ↘ STOPPING (после interrupt) → IDLE
//	DISABLED — job выключен, не выполняется никогда
type JobStatus string

const (
	// JobStatusIdle — job свободен, можно запускать.
	JobStatusIdle JobStatus = "IDLE"

	// JobStatusImporting — job выполняет импорт.
	JobStatusImporting JobStatus = "IMPORTING"

	// JobStatusRollingBack — job откатывает импортированные записи.
	JobStatusRollingBack JobStatus = "ROLLING_BACK"

	// JobStatusStopping — job получил interrupt и завершает текущую строку.
	JobStatusStopping JobStatus = "STOPPING"

	// JobStatusDisabled — job выключен.
	JobStatusDisabled JobStatus = "DISABLED"
)

// IsBusy возвращает true, если статус означает незавершённый запуск,
// который нужно прервать и сбросить перед новым запуском.
//
// IDLE, DISABLED и STOPPING не трогаем: STOPPING уже останавливается сам.
func (s JobStatus) IsBusy() bool {
	switch s {
	case JobStatusIdle, JobStatusDisabled, JobStatusStopping:
		return false
	default:
		return true
	}
}

// ParseJobStatus парсит строку в JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusIdle, JobStatusImporting, JobStatusRollingBack, JobStatusStopping, JobStatusDisabled:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// RunResult — итог одного вызова Execute.
//
// Не хранится дольше текущего batch, кроме last_result в job_status
// (нужен для проверки requirements).
type RunResult int

const (
	// RunResultCompleted — все строки источника обработаны.
	RunResultCompleted RunResult = iota + 1

	// RunResultIncomplete — достигнут лимит шага, строки ещё остались.
	RunResultIncomplete

	// RunResultStopped — выполнение прервано по запросу.
	RunResultStopped

	// RunResultFailed — выполнение завершилось ошибкой.
	RunResultFailed

	// RunResultSkipped — не выполнены зависимости (requirements).
	RunResultSkipped

	// RunResultDisabled — job выключен.
	RunResultDisabled
)

var runResultNames = map[RunResult]string{
	RunResultCompleted:  "COMPLETED",
	RunResultIncomplete: "INCOMPLETE",
	RunResultStopped:    "STOPPED",
	RunResultFailed:     "FAILED",
	RunResultSkipped:    "SKIPPED",
	RunResultDisabled:   "DISABLED",
}

// String возвращает строковое представление RunResult.
func (r RunResult) String() string {
	if name, ok := runResultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RunResult(%d)", int(r))
}

// ParseRunResult парсит строку в RunResult.
func ParseRunResult(s string) (RunResult, error) {
	for r, name := range runResultNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown run result %q", s)
}

// BatchStatus — статус batch импорта.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
type BatchStatus string

const (
	// BatchStatusPending — batch создан, ждёт worker.
	BatchStatusPending BatchStatus = "PENDING"

	// BatchStatusRunning — batch выполняется.
	BatchStatusRunning BatchStatus = "RUNNING"

	// BatchStatusSucceeded — все шаги завершены без failures.
	BatchStatusSucceeded BatchStatus = "SUCCEEDED"

	// BatchStatusFailed — шаг вернул ошибку или были failures.
	BatchStatusFailed BatchStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s BatchStatus) IsTerminal() bool {
	switch s {
	case BatchStatusSucceeded, BatchStatusFailed:
		return true
	default:
		return false
	}
}
