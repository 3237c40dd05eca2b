// Package language хранит список сконфигурированных языков
// и определяет язык текста.
package language

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/shaiso/ContentImport/internal/domain"
)

// ErrUnknownLanguage — язык не сконфигурирован.
var ErrUnknownLanguage = errors.New("language not configured")

// Registry — реестр сконфигурированных языков.
//
// Порядок языков сохраняется как в конфигурации.
type Registry struct {
	languages     []domain.Language
	defaultLocale string
}

// NewRegistry создаёт реестр из кодов языков.
// Названия берутся из CLDR (английские названия).
// Язык по умолчанию добавляется, если его нет в списке.
func NewRegistry(codes []string, defaultLocale string) (*Registry, error) {
	if defaultLocale == "" {
		defaultLocale = domain.DefaultLocale
	}

	r := &Registry{defaultLocale: defaultLocale}
	seen := make(map[string]bool)

	add := func(code string) error {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			return nil
		}
		name, err := DisplayName(code)
		if err != nil {
			return err
		}
		seen[code] = true
		r.languages = append(r.languages, domain.Language{Code: code, Name: name})
		return nil
	}

	if err := add(defaultLocale); err != nil {
		return nil, err
	}
	for _, code := range codes {
		if err := add(code); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// DisplayName возвращает английское название языка по коду.
func DisplayName(code string) (string, error) {
	tag, err := textlang.Parse(code)
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", code, err)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		name = code
	}
	return name, nil
}

// List возвращает все сконфигурированные языки.
func (r *Registry) List() []domain.Language {
	return slices.Clone(r.languages)
}

// Default возвращает код языка по умолчанию.
func (r *Registry) Default() string {
	return r.defaultLocale
}

// Get возвращает язык по коду.
func (r *Registry) Get(code string) (domain.Language, error) {
	for _, l := range r.languages {
		if l.Code == code {
			return l, nil
		}
	}
	return domain.Language{}, fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
}

// Has проверяет, сконфигурирован ли язык.
func (r *Registry) Has(code string) bool {
	_, err := r.Get(code)
	return err == nil
}
