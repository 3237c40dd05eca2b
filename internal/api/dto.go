package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/importer"
)

// Import DTOs

// CreateImportRequest — запрос на запуск импорта.
//
// Language — язык назначения, как в форме импорта. Languages позволяет
// импортировать несколько языков одним batch (по шагу на язык).
type CreateImportRequest struct {
	ProductsCSV string   `json:"products_csv" validate:"required"`
	Language    string   `json:"language,omitempty" validate:"required_without=Languages,omitempty,bcp47_language_tag"`
	Languages   []string `json:"languages,omitempty" validate:"omitempty,min=1,dive,bcp47_language_tag"`
}

// languageList возвращает языки batch.
func (r CreateImportRequest) languageList() []string {
	if len(r.Languages) > 0 {
		return r.Languages
	}
	return []string{r.Language}
}

// BatchResponse — ответ с batch.
type BatchResponse struct {
	ID         uuid.UUID          `json:"id"`
	CSVPath    string             `json:"csv_path"`
	Languages  []string           `json:"languages"`
	Status     domain.BatchStatus `json:"status"`
	Step       int                `json:"step"`
	Messages   []string           `json:"messages"`
	Successes  int                `json:"successes"`
	Failures   int                `json:"failures"`
	Error      string             `json:"error,omitempty"`
	Source     string             `json:"source,omitempty"`
	Summary    *importer.Summary  `json:"summary,omitempty"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// BatchFromDomain конвертирует domain.Batch в BatchResponse.
// Итог заполняется только для завершённого batch.
func BatchFromDomain(b domain.Batch) BatchResponse {
	resp := BatchResponse{
		ID:         b.ID,
		CSVPath:    b.CSVPath,
		Languages:  b.Languages,
		Status:     b.Status,
		Step:       b.Step,
		Messages:   b.Context.Messages,
		Successes:  b.Context.Successes,
		Failures:   b.Context.Failures,
		Error:      b.Error,
		Source:     b.Source,
		StartedAt:  b.StartedAt,
		FinishedAt: b.FinishedAt,
		CreatedAt:  b.CreatedAt,
	}
	if resp.Messages == nil {
		resp.Messages = []string{}
	}
	if b.Status.IsTerminal() {
		summary := importer.Finish(b.Context)
		resp.Summary = &summary
	}
	return resp
}

// CreateImportResponse — ответ на запуск импорта.
type CreateImportResponse struct {
	Batch BatchResponse `json:"batch"`

	// Warnings — предупреждения проверки файла (не мешают импорту).
	Warnings []string `json:"warnings,omitempty"`
}

// Job DTOs

// JobResponse — ответ с job и его состоянием.
type JobResponse struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Language     string           `json:"language,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	Requirements []string         `json:"requirements,omitempty"`
	Status       domain.JobStatus `json:"status"`
	LastResult   string           `json:"last_result,omitempty"`
	Interrupt    string           `json:"interrupt,omitempty"`
}

// JobFromDomain собирает JobResponse из definition и сохранённого состояния.
func JobFromDomain(def domain.Definition, state domain.JobState, found bool) JobResponse {
	resp := JobResponse{
		ID:           def.ID,
		Label:        def.Label,
		Language:     def.Language,
		Tags:         def.Tags,
		Requirements: def.Requirements,
		Status:       domain.JobStatusIdle,
	}
	if found {
		resp.Status = state.Status
		if state.LastResult != 0 {
			resp.LastResult = state.LastResult.String()
		}
		if state.Interrupt != 0 {
			resp.Interrupt = state.Interrupt.String()
		}
	}
	if def.Status == domain.JobStatusDisabled {
		resp.Status = domain.JobStatusDisabled
	}
	return resp
}

// Language DTOs

// LanguageResponse — ответ с языком.
type LanguageResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// Settings DTOs

// SettingsRequest — запрос на сохранение настроек импорта.
type SettingsRequest struct {
	ProductsCSV string `json:"products_csv" validate:"required"`
	Language    string `json:"language" validate:"required,bcp47_language_tag"`
}
