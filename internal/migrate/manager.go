package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"github.com/shaiso/ContentImport/internal/deriver"
	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/telemetry"
)

// Default configuration values.
const (
	defaultInterruptCheck = 25
)

// Languages — источник сконфигурированных языков для deriver.
type Languages interface {
	List() []domain.Language
	Default() string
}

// Manager — реестр import jobs.
//
// Manager:
//   - Хранит базовые definitions из файла и перечитывает их после Invalidate
//   - Разворачивает definitions с deriver "language" в derivatives
//   - Кэширует результат до Invalidate
//   - Создаёт Job с плагинами и хранилищами
type Manager struct {
	reload    func() ([]domain.Definition, error)
	languages Languages

	translationsSupported bool

	states  StateStore
	idMap   IDMap
	plugins *Plugins

	limit          int
	interruptCheck int

	// sourceOverrides дописываются в source каждого job (например, path файла).
	sourceOverrides map[string]any

	cache  *definitionCache
	logger *slog.Logger
}

// Config — конфигурация Manager.
type Config struct {
	// Definitions — базовые definitions (до разворачивания derivatives).
	Definitions []domain.Definition

	// Reload — перечитывает базовые definitions при пересборке кэша
	// (опционально). При ошибке остаются прежние definitions.
	Reload func() ([]domain.Definition, error)

	// Languages — сконфигурированные языки.
	Languages Languages

	// TranslationsSupported — хранилище поддерживает переводы.
	// Без этого definitions с тегом "translation" не разворачиваются.
	TranslationsSupported bool

	// Stores
	States StateStore
	IDMap  IDMap

	// Plugins — реестр source/destination (default: DefaultPlugins()).
	Plugins *Plugins

	// Limit — максимум строк за один Execute (0 — без лимита).
	Limit int

	// InterruptCheck — как часто (в строках) проверять interrupt (default: 25).
	InterruptCheck int

	// Logger
	Logger *slog.Logger
}

// definitionCache — развёрнутые definitions, общие для всех view Manager.
type definitionCache struct {
	mu   sync.Mutex
	base []domain.Definition
	defs map[string]domain.Definition
}

// NewManager создаёт новый Manager.
func NewManager(cfg Config) *Manager {
	plugins := cfg.Plugins
	if plugins == nil {
		plugins = DefaultPlugins()
	}

	interruptCheck := cfg.InterruptCheck
	if interruptCheck <= 0 {
		interruptCheck = defaultInterruptCheck
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		reload:                cfg.Reload,
		languages:             cfg.Languages,
		translationsSupported: cfg.TranslationsSupported,
		states:                cfg.States,
		idMap:                 cfg.IDMap,
		plugins:               plugins,
		limit:                 cfg.Limit,
		interruptCheck:        interruptCheck,
		cache:                 &definitionCache{base: cfg.Definitions},
		logger:                logger,
	}
}

// WithSource возвращает view Manager, чьи jobs получают overrides
// в конфигурации source. Кэш definitions общий.
func (m *Manager) WithSource(overrides map[string]any) *Manager {
	view := *m
	view.sourceOverrides = maps.Clone(overrides)
	return &view
}

// Invalidate сбрасывает кэш definitions. Следующее обращение
// перечитывает definitions через Reload и заново строит derivatives.
func (m *Manager) Invalidate() {
	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()
	m.cache.defs = nil
	m.logger.Debug("job definitions cache invalidated")
}

// Definitions возвращает все definitions, отсортированные по id.
func (m *Manager) Definitions() []domain.Definition {
	defs := m.definitions()

	out := make([]domain.Definition, 0, len(defs))
	for _, def := range defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// Definition возвращает definition по id.
func (m *Manager) Definition(id string) (domain.Definition, error) {
	def, ok := m.definitions()[id]
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return def, nil
}

// CreateJob создаёт Job по id.
//
// Возвращает ErrJobNotFound, если нет такого definition или derivative,
// и ErrInvalidDefinition/ErrUnknownPlugin, если плагины не создаются.
func (m *Manager) CreateJob(ctx context.Context, id string) (*Job, error) {
	def, err := m.Definition(id)
	if err != nil {
		return nil, err
	}

	source, err := m.source(def, m.sourceOverrides)
	if err != nil {
		return nil, fmt.Errorf("create job %s: %w", id, err)
	}

	destCfg := maps.Clone(def.Destination)
	if destCfg == nil {
		destCfg = make(map[string]any)
	}
	if def.Language != "" {
		destCfg["langcode"] = def.Language
	}
	dest, err := m.plugins.Destination(destCfg)
	if err != nil {
		return nil, fmt.Errorf("create job %s: %w", id, err)
	}

	if err := validateProcess(def.Process); err != nil {
		return nil, fmt.Errorf("create job %s: %w", id, err)
	}

	return &Job{
		def:            def,
		source:         source,
		dest:           dest,
		states:         m.states,
		idMap:          m.idMap,
		limit:          m.limit,
		interruptCheck: m.interruptCheck,
		logger:         telemetry.WithJobID(m.logger, id),
	}, nil
}

// Sample возвращает до n первых строк источника job, прочитанного
// с overrides (например, путь к только что загруженному файлу).
func (m *Manager) Sample(ctx context.Context, id string, overrides map[string]any, n int) ([]Row, error) {
	def, err := m.Definition(id)
	if err != nil {
		return nil, err
	}

	source, err := m.source(def, overrides)
	if err != nil {
		return nil, err
	}

	it, err := source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows []Row
	for len(rows) < n {
		row, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// source создаёт источник definition с overrides поверх его конфигурации.
func (m *Manager) source(def domain.Definition, overrides map[string]any) (Source, error) {
	cfg := maps.Clone(def.Source)
	if cfg == nil {
		cfg = make(map[string]any)
	}
	maps.Copy(cfg, overrides)
	return m.plugins.Source(cfg)
}

// definitions возвращает развёрнутые definitions, строя кэш при необходимости.
func (m *Manager) definitions() map[string]domain.Definition {
	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()

	if m.cache.defs != nil {
		return m.cache.defs
	}

	if m.reload != nil {
		base, err := m.reload()
		if err != nil {
			m.logger.Warn("failed to reload job definitions, keeping previous", "error", err)
		} else {
			m.cache.base = base
		}
	}

	defs := make(map[string]domain.Definition)
	for _, base := range m.cache.base {
		if base.Deriver != domain.DeriverLanguage {
			defs[base.ID] = base.Clone()
			continue
		}

		var langs []domain.Language
		defaultLocale := domain.DefaultLocale
		if m.languages != nil {
			langs = m.languages.List()
			defaultLocale = m.languages.Default()
		}

		for _, def := range deriver.Generate(base, langs, defaultLocale, m.translationsSupported) {
			defs[def.ID] = def
		}
	}

	m.cache.defs = defs
	m.logger.Debug("job definitions built", "count", len(defs))
	return defs
}
