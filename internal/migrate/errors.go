package migrate

import "errors"

// Ошибки migrate engine.
var (
	// ErrJobNotFound — нет definition или derivative с таким id.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidDefinition — definition не прошёл проверку при создании job.
	ErrInvalidDefinition = errors.New("invalid job definition")

	// ErrUnknownPlugin — плагин source/destination не зарегистрирован.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrJobBusy — job не в статусе IDLE.
	ErrJobBusy = errors.New("job is busy with another operation")

	// ErrRequirementsNotMet — зависимые jobs не завершены.
	ErrRequirementsNotMet = errors.New("job requirements not met")

	// ErrMissingColumn — в строке источника нет колонки из process.
	ErrMissingColumn = errors.New("missing source column")

	// ErrMissingSourceID — пустой ключ строки источника.
	ErrMissingSourceID = errors.New("missing source id")
)
