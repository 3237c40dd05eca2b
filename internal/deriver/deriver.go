// Package deriver создаёт derivative definitions из базового шаблона.
//
// Один derivative на каждый сконфигурированный язык, кроме языка
// по умолчанию. Результат кэширует вызывающий (migrate.Manager) и
// сбрасывает кэш при изменении языков.
package deriver

import (
	"fmt"

	"github.com/shaiso/ContentImport/internal/domain"
)

// ProcessLangcode — поле process, в которое пишется код языка.
const ProcessLangcode = "langcode"

// Generate возвращает derivatives базового definition, ключ — код языка.
//
// Если base помечен тегом "translation", а переводы не поддерживаются,
// возвращается пустая карта: переводы без этой возможности не имеют смысла.
func Generate(base domain.Definition, languages []domain.Language, defaultLocale string, translationsSupported bool) map[string]domain.Definition {
	derivatives := make(map[string]domain.Definition)

	if base.HasTag(domain.TagTranslation) && !translationsSupported {
		return derivatives
	}

	if defaultLocale == "" {
		defaultLocale = domain.DefaultLocale
	}

	for _, lang := range languages {
		if lang.Code == defaultLocale {
			continue
		}
		derivatives[lang.Code] = derive(base, lang)
	}

	return derivatives
}

// DerivativeID возвращает id derivative для языка.
func DerivativeID(baseID, code string) string {
	return baseID + ":" + code
}

// derive создаёт derivative для одного языка.
func derive(base domain.Definition, lang domain.Language) domain.Definition {
	def := base.Clone()

	name := lang.Name
	if name == "" {
		name = lang.Code
	}

	def.ID = DerivativeID(base.ID, lang.Code)
	def.Label = fmt.Sprintf("%s (%s)", base.Label, name)
	def.Language = lang.Code
	def.Deriver = ""

	if def.Process == nil {
		def.Process = make(map[string]any)
	}
	if _, ok := def.Process[ProcessLangcode]; !ok {
		def.Process[ProcessLangcode] = map[string]any{"default_value": lang.Code}
	}

	return def
}
