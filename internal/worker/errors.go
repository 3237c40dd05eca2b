package worker

import "errors"

// Ошибки воркера.
var (
	// ErrBatchNotFound — batch не найден в БД.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrBatchNotPending — batch не в статусе PENDING (уже забран или завершён).
	ErrBatchNotPending = errors.New("batch is not in PENDING status")

	// ErrUnexpectedMessage — в очереди сообщение неизвестного типа.
	ErrUnexpectedMessage = errors.New("unexpected message type")
)
