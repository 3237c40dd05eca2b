package deriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ContentImport/internal/domain"
)

func baseDefinition(tags ...string) domain.Definition {
	return domain.Definition{
		ID:      "node_product_translation",
		Label:   "Products",
		Tags:    tags,
		Deriver: domain.DeriverLanguage,
		Source:  map[string]any{"plugin": "csv", "ids": []any{"sku"}},
		Process: map[string]any{"title": "name", "sku": "sku"},
		Destination: map[string]any{
			"plugin": "product",
		},
	}
}

var languages = []domain.Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
}

func TestGenerate_SkipsDefaultLocale(t *testing.T) {
	derivatives := Generate(baseDefinition(), languages, "en", true)

	require.Len(t, derivatives, 2)
	assert.NotContains(t, derivatives, "en")

	assert.Equal(t, "node_product_translation:fr", derivatives["fr"].ID)
	assert.Equal(t, "node_product_translation:de", derivatives["de"].ID)
}

func TestGenerate_LabelAndLanguage(t *testing.T) {
	derivatives := Generate(baseDefinition(), languages, "en", true)

	fr := derivatives["fr"]
	assert.Equal(t, "Products (French)", fr.Label)
	assert.Equal(t, "fr", fr.Language)
	assert.Empty(t, fr.Deriver)
	assert.Equal(t, map[string]any{"default_value": "fr"}, fr.Process[ProcessLangcode])
}

func TestGenerate_DoesNotMutateBase(t *testing.T) {
	base := baseDefinition()
	_ = Generate(base, languages, "en", true)

	assert.Equal(t, "node_product_translation", base.ID)
	assert.NotContains(t, base.Process, ProcessLangcode)
}

func TestGenerate_KeepsExplicitLangcode(t *testing.T) {
	base := baseDefinition()
	base.Process[ProcessLangcode] = "lang_column"

	derivatives := Generate(base, languages, "en", true)

	assert.Equal(t, "lang_column", derivatives["de"].Process[ProcessLangcode])
}

func TestGenerate_TranslationWithoutSupport(t *testing.T) {
	derivatives := Generate(baseDefinition(domain.TagTranslation), languages, "en", false)

	assert.Empty(t, derivatives)
}

func TestGenerate_TranslationWithSupport(t *testing.T) {
	derivatives := Generate(baseDefinition(domain.TagTranslation), languages, "en", true)

	assert.Len(t, derivatives, 2)
}

func TestGenerate_UntaggedWithoutSupport(t *testing.T) {
	// Без тега translation отсутствие поддержки переводов не мешает.
	derivatives := Generate(baseDefinition(), languages, "en", false)

	assert.Len(t, derivatives, 2)
}

func TestGenerate_EmptyDefaultLocaleFallsBackToEnglish(t *testing.T) {
	derivatives := Generate(baseDefinition(), languages, "", true)

	assert.NotContains(t, derivatives, "en")
	assert.Len(t, derivatives, 2)
}

func TestGenerate_NameFallsBackToCode(t *testing.T) {
	derivatives := Generate(baseDefinition(), []domain.Language{{Code: "xx"}}, "en", true)

	assert.Equal(t, "Products (xx)", derivatives["xx"].Label)
}
