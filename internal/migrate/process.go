package migrate

import (
	"fmt"
	"strings"
)

// applyProcess строит значения назначения из строки источника.
//
// Значение process:
//   - строка — имя колонки источника, значение копируется;
//   - {default_value: X} — константа X;
//   - {source: col, default_value: X} — колонка, X если она пустая.
//
// Пустой process копирует строку как есть.
func applyProcess(process map[string]any, row Row) (map[string]any, error) {
	values := make(map[string]any, len(process))

	if len(process) == 0 {
		for k, v := range row {
			values[k] = v
		}
		return values, nil
	}

	for field, spec := range process {
		switch v := spec.(type) {
		case string:
			val, ok := row[v]
			if !ok {
				return nil, fmt.Errorf("%w: %s (field %s)", ErrMissingColumn, v, field)
			}
			values[field] = val

		case map[string]any:
			src, hasSource := v["source"].(string)
			def, hasDefault := v["default_value"]
			switch {
			case hasSource:
				val, ok := row[src]
				if !ok && !hasDefault {
					return nil, fmt.Errorf("%w: %s (field %s)", ErrMissingColumn, src, field)
				}
				if strings.TrimSpace(val) == "" && hasDefault {
					values[field] = def
				} else {
					values[field] = val
				}
			case hasDefault:
				values[field] = def
			default:
				return nil, fmt.Errorf("%w: field %s has neither source nor default_value", ErrInvalidDefinition, field)
			}

		default:
			return nil, fmt.Errorf("%w: field %s has unsupported process %T", ErrInvalidDefinition, field, spec)
		}
	}

	return values, nil
}

// validateProcess проверяет process при создании job.
func validateProcess(process map[string]any) error {
	for field, spec := range process {
		switch v := spec.(type) {
		case string:
			if v == "" {
				return fmt.Errorf("%w: field %s maps to empty column", ErrInvalidDefinition, field)
			}
		case map[string]any:
			_, hasSource := v["source"].(string)
			_, hasDefault := v["default_value"]
			if !hasSource && !hasDefault {
				return fmt.Errorf("%w: field %s has neither source nor default_value", ErrInvalidDefinition, field)
			}
		default:
			return fmt.Errorf("%w: field %s has unsupported process %T", ErrInvalidDefinition, field, spec)
		}
	}
	return nil
}

// sourceID собирает ключ строки из ключевых колонок.
func sourceID(ids []string, row Row) (string, error) {
	parts := make([]string, len(ids))
	for i, col := range ids {
		val := strings.TrimSpace(row[col])
		if val == "" {
			return "", fmt.Errorf("%w: column %s", ErrMissingSourceID, col)
		}
		parts[i] = val
	}
	return strings.Join(parts, "|"), nil
}
