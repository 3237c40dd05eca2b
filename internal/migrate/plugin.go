package migrate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Row — строка источника: колонка → значение.
type Row map[string]string

// RowIterator — последовательный доступ к строкам источника.
// Next возвращает io.EOF, когда строки закончились.
type RowIterator interface {
	Next() (Row, error)
	Close() error
}

// Source — плагин источника.
type Source interface {
	// Open открывает источник для одного прохода.
	Open(ctx context.Context) (RowIterator, error)

	// IDs возвращает колонки, образующие ключ строки.
	IDs() []string
}

// Destination — плагин назначения.
type Destination interface {
	// Import сохраняет запись. existing — id ранее созданной записи
	// (из id map) или пустая строка. Возвращает id записи назначения.
	Import(ctx context.Context, values map[string]any, existing string) (string, error)
}

// SourceFactory создаёт Source из конфигурации definition.
type SourceFactory func(cfg map[string]any) (Source, error)

// DestinationFactory создаёт Destination из конфигурации definition.
type DestinationFactory func(cfg map[string]any) (Destination, error)

// Plugins — реестр плагинов source и destination.
//
// Потокобезопасен.
type Plugins struct {
	mu           sync.RWMutex
	sources      map[string]SourceFactory
	destinations map[string]DestinationFactory
}

// NewPlugins создаёт пустой реестр.
func NewPlugins() *Plugins {
	return &Plugins{
		sources:      make(map[string]SourceFactory),
		destinations: make(map[string]DestinationFactory),
	}
}

// DefaultPlugins создаёт реестр со стандартными источниками: csv, xlsx.
// Destination регистрирует вызывающий: он зависит от хранилища.
func DefaultPlugins() *Plugins {
	p := NewPlugins()
	p.RegisterSource("csv", NewCSVSource)
	p.RegisterSource("xlsx", NewXLSXSource)
	return p
}

// RegisterSource регистрирует источник.
// Если источник с таким именем уже есть, он будет перезаписан.
func (p *Plugins) RegisterSource(name string, factory SourceFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[name] = factory
}

// RegisterDestination регистрирует назначение.
func (p *Plugins) RegisterDestination(name string, factory DestinationFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destinations[name] = factory
}

// Source создаёт источник по конфигурации с ключом "plugin".
func (p *Plugins) Source(cfg map[string]any) (Source, error) {
	name := pluginName(cfg)

	p.mu.RLock()
	factory, ok := p.sources[name]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: source %q", ErrUnknownPlugin, name)
	}
	return factory(cfg)
}

// Destination создаёт назначение по конфигурации с ключом "plugin".
func (p *Plugins) Destination(cfg map[string]any) (Destination, error) {
	name := pluginName(cfg)

	p.mu.RLock()
	factory, ok := p.destinations[name]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: destination %q", ErrUnknownPlugin, name)
	}
	return factory(cfg)
}

// Names возвращает имена зарегистрированных плагинов.
func (p *Plugins) Names() (sources, destinations []string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for name := range p.sources {
		sources = append(sources, name)
	}
	for name := range p.destinations {
		destinations = append(destinations, name)
	}
	sort.Strings(sources)
	sort.Strings(destinations)
	return sources, destinations
}

func pluginName(cfg map[string]any) string {
	name, _ := cfg["plugin"].(string)
	return name
}

// stringValue достаёт строку из конфигурации плагина.
func stringValue(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return def
}

// stringList достаёт список строк из конфигурации плагина.
// Поддерживает []string и []any (так его отдаёт YAML).
func stringList(cfg map[string]any, key string) []string {
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}
