package migrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ContentImport/internal/domain"
)

const definitionsYAML = `
migrations:
  - id: node_product
    label: Products
    source:
      plugin: csv
      ids: [sku]
    process:
      sku: sku
      title: name
    destination:
      plugin: memory
  - id: node_product_translation
    label: Product translations
    tags: [translation]
    deriver: language
    requirements: [node_product]
    source:
      plugin: csv
      ids: [sku]
    process:
      sku: sku
      title: name
    destination:
      plugin: memory
`

func parseTestDefinitions(t *testing.T) []domain.Definition {
	t.Helper()
	defs, err := ParseDefinitions(strings.NewReader(definitionsYAML), "yaml")
	require.NoError(t, err)
	return defs
}

func TestParseDefinitions(t *testing.T) {
	defs := parseTestDefinitions(t)

	require.Len(t, defs, 2)
	assert.Equal(t, "node_product", defs[0].ID)
	assert.Equal(t, domain.JobStatusIdle, defs[0].Status)
	assert.Equal(t, "csv", defs[0].Source["plugin"])
	assert.True(t, defs[1].HasTag(domain.TagTranslation))
	assert.Equal(t, []string{"node_product"}, defs[1].Requirements)
}

func TestParseDefinitions_KeysLowercased(t *testing.T) {
	defs, err := ParseDefinitions(strings.NewReader(`
migrations:
  - id: node_product
    process:
      Title: Name
      SKU: sku
`), "yaml")
	require.NoError(t, err)

	require.Len(t, defs, 1)
	assert.Equal(t, map[string]any{"title": "Name", "sku": "sku"}, defs[0].Process)
}

func TestParseDefinitions_Duplicate(t *testing.T) {
	_, err := ParseDefinitions(strings.NewReader(`
migrations:
  - id: a
  - id: a
`), "yaml")
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestParseDefinitions_UnknownStatus(t *testing.T) {
	_, err := ParseDefinitions(strings.NewReader(`
migrations:
  - id: a
    status: SLEEPING
`), "yaml")
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func newTestManager(t *testing.T, translations bool) *Manager {
	t.Helper()
	return NewManager(Config{
		Definitions: parseTestDefinitions(t),
		Languages: staticLanguages{
			{Code: "en", Name: "English"},
			{Code: "fr", Name: "French"},
			{Code: "de", Name: "German"},
		},
		TranslationsSupported: translations,
		States:                newMemStates(),
		IDMap:                 newMemIDMap(),
		Plugins:               testPlugins(newMemDestination()),
	})
}

func TestManager_Definitions(t *testing.T) {
	m := newTestManager(t, true)

	defs := m.Definitions()
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}

	assert.Equal(t, []string{
		"node_product",
		"node_product_translation:de",
		"node_product_translation:fr",
	}, ids)

	fr, err := m.Definition("node_product_translation:fr")
	require.NoError(t, err)
	assert.Equal(t, "Product translations (French)", fr.Label)
}

func TestManager_NoTranslations(t *testing.T) {
	m := newTestManager(t, false)

	assert.Len(t, m.Definitions(), 1)

	_, err := m.CreateJob(context.Background(), "node_product_translation:fr")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestManager_CreateJobNotFound(t *testing.T) {
	m := newTestManager(t, true)

	_, err := m.CreateJob(context.Background(), "node_product:it")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestManager_CreateJobWithoutPath(t *testing.T) {
	m := newTestManager(t, true)

	_, err := m.CreateJob(context.Background(), "node_product")
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestManager_CreateJobUnknownDestination(t *testing.T) {
	m := newTestManager(t, true)
	m.plugins = DefaultPlugins()

	_, err := m.WithSource(map[string]any{"path": "/tmp/x.csv"}).CreateJob(context.Background(), "node_product")
	assert.ErrorIs(t, err, ErrUnknownPlugin)
}

func TestManager_WithSourceSharesCache(t *testing.T) {
	m := newTestManager(t, true)
	view := m.WithSource(map[string]any{"path": "/tmp/products.csv"})

	job, err := view.CreateJob(context.Background(), "node_product")
	require.NoError(t, err)
	assert.Equal(t, "node_product", job.ID())

	// У исходного Manager overrides нет.
	_, err = m.CreateJob(context.Background(), "node_product")
	assert.Error(t, err)

	m.Invalidate()
	assert.Len(t, view.Definitions(), 3)
}

// mutableLanguages — Languages, которые можно менять в тесте.
type mutableLanguages struct{ langs []domain.Language }

func (l *mutableLanguages) List() []domain.Language { return l.langs }
func (l *mutableLanguages) Default() string         { return "en" }

func TestManager_InvalidateRebuildsDerivatives(t *testing.T) {
	langs := &mutableLanguages{langs: []domain.Language{{Code: "en"}, {Code: "fr", Name: "French"}}}
	m := NewManager(Config{
		Definitions:           parseTestDefinitions(t),
		Languages:             langs,
		TranslationsSupported: true,
		States:                newMemStates(),
		IDMap:                 newMemIDMap(),
	})
	require.Len(t, m.Definitions(), 2)

	langs.langs = append(langs.langs, domain.Language{Code: "de", Name: "German"})
	assert.Len(t, m.Definitions(), 2, "cached until invalidated")

	m.Invalidate()
	assert.Len(t, m.Definitions(), 3)
}

func TestManager_InvalidateReloadsDefinitions(t *testing.T) {
	defs := parseTestDefinitions(t)
	loaded := defs[:1]
	var reloadErr error
	reloads := 0

	m := NewManager(Config{
		Definitions: defs,
		Reload: func() ([]domain.Definition, error) {
			reloads++
			return loaded, reloadErr
		},
		Languages:             staticLanguages{{Code: "en"}, {Code: "fr", Name: "French"}},
		TranslationsSupported: true,
		States:                newMemStates(),
		IDMap:                 newMemIDMap(),
	})

	assert.Len(t, m.Definitions(), 1)
	assert.Len(t, m.Definitions(), 1)
	assert.Equal(t, 1, reloads, "reloaded only when the cache is rebuilt")

	loaded = defs
	m.Invalidate()
	assert.Len(t, m.Definitions(), 2)

	// Ошибка перечитывания оставляет прежние definitions.
	loaded, reloadErr = nil, errors.New("file removed")
	m.Invalidate()
	assert.Len(t, m.Definitions(), 2)
	assert.Equal(t, 3, reloads)
}

func TestManager_Sample(t *testing.T) {
	m := newTestManager(t, true)
	path := writeCSV(t, productsCSV)

	rows, err := m.Sample(context.Background(), "node_product", map[string]any{"path": path}, 2)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, Row{"sku": "A-1", "name": "Lamp", "price": "10"}, rows[0])

	rows, err = m.Sample(context.Background(), "node_product", map[string]any{"path": path}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestManager_SampleErrors(t *testing.T) {
	m := newTestManager(t, true)

	_, err := m.Sample(context.Background(), "missing", nil, 5)
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = m.Sample(context.Background(), "node_product", map[string]any{"path": "/nonexistent/products.csv"}, 5)
	assert.Error(t, err)
}
