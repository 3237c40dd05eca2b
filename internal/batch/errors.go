package batch

import "errors"

var (
	// ErrTooManySteps — batch превысил максимальное число шагов.
	ErrTooManySteps = errors.New("batch exceeded max steps")

	// ErrNoLanguages — в batch нет языков.
	ErrNoLanguages = errors.New("batch has no languages")

	// ErrInterrupted — batch прерван остановкой процесса и возвращён в PENDING.
	ErrInterrupted = errors.New("batch interrupted by shutdown")
)
