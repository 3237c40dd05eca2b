package importer

import "errors"

// Ошибки оркестратора.
var (
	// ErrJobNotFound — job для языка не найден (нет definition или derivative).
	ErrJobNotFound = errors.New("import job not found")

	// ErrJobConstruction — job найден, но не создаётся (плагины, конфигурация).
	ErrJobConstruction = errors.New("import job construction failed")
)
