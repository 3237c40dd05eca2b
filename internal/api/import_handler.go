package api

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/shaiso/ContentImport/internal/batch"
	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/language"
	"github.com/shaiso/ContentImport/internal/migrate"
	"github.com/shaiso/ContentImport/internal/repo"
)

// sampleRows — сколько строк файла читается для проверки языка.
const sampleRows = 20

// sourceAPI — значение Batch.Source для batch, созданных через API.
const sourceAPI = "api"

// CreateImport запускает импорт файла продуктов.
// POST /api/v1/imports
//
// Сохраняет настройки, сбрасывает кэш definitions, создаёт batch
// и уведомляет worker.
func (h *Handler) CreateImport(w http.ResponseWriter, r *http.Request) {
	var req CreateImportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	languages := req.languageList()
	for _, code := range languages {
		if !h.languages.Has(code) {
			InvalidState(w, fmt.Sprintf("language %q is not configured", code))
			return
		}
	}

	if _, err := os.Stat(req.ProductsCSV); err != nil {
		BadRequest(w, "products file is not readable")
		return
	}

	ctx := r.Context()

	if err := h.settings.Save(ctx, &domain.Settings{ProductsCSV: req.ProductsCSV, Language: languages[0]}); err != nil {
		InternalError(w, h.logger, err)
		return
	}
	h.jobs.Invalidate()

	b := domain.NewBatch(req.ProductsCSV, languages, sourceAPI)
	if err := h.batches.Create(ctx, b); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("import batch created",
		"batch_id", b.ID,
		"csv_path", b.CSVPath,
		"languages", languages,
	)

	h.publishPending(ctx, b.ID)

	Created(w, CreateImportResponse{
		Batch:    BatchFromDomain(*b),
		Warnings: h.checkLanguage(ctx, req.ProductsCSV, languages),
	})
}

// ListImports возвращает список batch.
// GET /api/v1/imports?status=...&limit=...&offset=...
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	filter := repo.BatchFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.BatchStatus(strings.ToUpper(status))
	}

	batches, err := h.batches.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]BatchResponse, len(batches))
	for i, b := range batches {
		result[i] = BatchFromDomain(b)
	}

	List(w, result, len(result))
}

// GetImport возвращает batch с прогрессом и итогом.
// GET /api/v1/imports/{id}
func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid import id")
		return
	}

	b, err := h.batches.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "import not found") {
		return
	}

	Success(w, BatchFromDomain(*b))
}

// publishPending публикует batch.pending. Ошибка не фатальна:
// batch уже в БД и будет найден polling.
func (h *Handler) publishPending(ctx context.Context, id uuid.UUID) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishBatchPending(ctx, id); err != nil {
		h.logger.Warn("failed to publish batch.pending", "batch_id", id, "error", err)
	}
}

// checkLanguage читает начало файла и предупреждает, если язык текста
// отличается от языка назначения. Ошибки чтения тоже становятся
// предупреждениями: файл ещё раз прочитает worker.
func (h *Handler) checkLanguage(ctx context.Context, path string, languages []string) []string {
	if h.baseJob == "" || len(languages) != 1 {
		return nil
	}

	rows, err := h.jobs.Sample(ctx, h.baseJob, batch.SourceOverrides(path), sampleRows)
	if err != nil {
		if errors.Is(err, migrate.ErrJobNotFound) {
			return nil
		}
		return []string{fmt.Sprintf("products file could not be checked: %v", err)}
	}

	detected, mismatch := language.Mismatch(sampleText(rows), languages[0])
	if !mismatch {
		return nil
	}
	return []string{fmt.Sprintf("products file looks like %q, but the import language is %q", detected, languages[0])}
}

// sampleText собирает текстовые значения строк для детекции языка.
// Числа, коды и короткие значения пропускаются.
func sampleText(rows []migrate.Row) string {
	var sb strings.Builder
	for _, row := range rows {
		for _, key := range slices.Sorted(maps.Keys(row)) {
			v := strings.TrimSpace(row[key])
			if len([]rune(v)) < 4 || !hasLetters(v) {
				continue
			}
			sb.WriteString(v)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func hasLetters(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters*2 >= len([]rune(s))
}

// queryInt парсит query параметр в int с дефолтным значением.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
