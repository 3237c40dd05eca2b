package domain

import (
	"maps"
	"slices"
)

// TagTranslation — тег definition, импортирующего переводы.
const TagTranslation = "translation"

// DeriverLanguage — имя deriver, создающего по derivative на язык.
const DeriverLanguage = "language"

// Definition — описание import job.
//
// Source/Process/Destination непрозрачны для оркестратора: их
// интерпретирует только migrate engine.
type Definition struct {
	// ID — уникальный идентификатор job ("node_product", "node_product_translation:fr").
	ID string `json:"id" mapstructure:"id"`

	// Label — человекочитаемое название.
	Label string `json:"label" mapstructure:"label"`

	// Tags — теги ("translation", ...).
	Tags []string `json:"tags,omitempty" mapstructure:"tags"`

	// Deriver — имя deriver; пустое значение означает обычный job.
	Deriver string `json:"deriver,omitempty" mapstructure:"deriver"`

	// Requirements — id jobs, которые должны быть завершены до запуска.
	Requirements []string `json:"requirements,omitempty" mapstructure:"requirements"`

	// Language — код языка derivative. Пусто у базового job.
	Language string `json:"language,omitempty" mapstructure:"language"`

	// Status — начальный статус (DISABLED выключает job).
	Status JobStatus `json:"status,omitempty" mapstructure:"status"`

	Source      map[string]any `json:"source" mapstructure:"source"`
	Process     map[string]any `json:"process" mapstructure:"process"`
	Destination map[string]any `json:"destination" mapstructure:"destination"`
}

// HasTag проверяет наличие тега.
func (d *Definition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// Clone возвращает копию definition.
// Карты pipeline копируются на один уровень.
func (d Definition) Clone() Definition {
	d.Tags = slices.Clone(d.Tags)
	d.Requirements = slices.Clone(d.Requirements)
	d.Source = maps.Clone(d.Source)
	d.Process = maps.Clone(d.Process)
	d.Destination = maps.Clone(d.Destination)
	return d
}

// JobState — сохранённое состояние job.
type JobState struct {
	JobID string `json:"job_id"`

	Status JobStatus `json:"status"`

	// LastResult — результат последнего Execute, 0 если job не запускался.
	LastResult RunResult `json:"-"`

	// Interrupt — запрошенный interrupt, 0 если не запрашивался.
	Interrupt RunResult `json:"-"`
}

// Outcome — результат одного Execute.
type Outcome struct {
	Result RunResult

	// Processed — число строк, обработанных в этом вызове.
	Processed int

	// Err — причина FAILED/SKIPPED, если есть.
	Err error
}
