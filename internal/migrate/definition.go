package migrate

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/shaiso/ContentImport/internal/domain"
)

// definitionsKey — ключ списка definitions в файле.
const definitionsKey = "migrations"

// LoadDefinitions читает definitions из файла (yaml/json/toml).
//
// Формат:
//
//	migrations:
//	  - id: node_product
//	    label: Products
//	    source: {plugin: csv, ids: [sku]}
//	    process: {sku: sku, title: name}
//	    destination: {plugin: product}
//
// Ключи приводятся viper к нижнему регистру.
func LoadDefinitions(path string) ([]domain.Definition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read definitions %s: %w", path, err)
	}
	return decodeDefinitions(v)
}

// ParseDefinitions читает definitions из r в формате format ("yaml", "json").
func ParseDefinitions(r io.Reader, format string) ([]domain.Definition, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}
	return decodeDefinitions(v)
}

func decodeDefinitions(v *viper.Viper) ([]domain.Definition, error) {
	var defs []domain.Definition
	if err := v.UnmarshalKey(definitionsKey, &defs); err != nil {
		return nil, fmt.Errorf("decode definitions: %w", err)
	}

	seen := make(map[string]bool, len(defs))
	for i := range defs {
		def := &defs[i]
		if def.ID == "" {
			return nil, fmt.Errorf("%w: definition #%d has no id", ErrInvalidDefinition, i)
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidDefinition, def.ID)
		}
		seen[def.ID] = true

		if def.Label == "" {
			def.Label = def.ID
		}
		if def.Status == "" {
			def.Status = domain.JobStatusIdle
		}
		if _, err := domain.ParseJobStatus(string(def.Status)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.ID, err)
		}
	}

	return defs, nil
}
