package api

import (
	"fmt"
	"net/http"

	"github.com/shaiso/ContentImport/internal/domain"
)

// GetSettings возвращает сохранённые настройки импорта.
// GET /api/v1/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if HandleRepoError(w, h.logger, err, "settings not saved yet") {
		return
	}

	Success(w, s)
}

// UpdateSettings сохраняет настройки импорта.
// PUT /api/v1/settings
//
// Сохранённые настройки использует scheduler.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if !h.languages.Has(req.Language) {
		InvalidState(w, fmt.Sprintf("language %q is not configured", req.Language))
		return
	}

	s := &domain.Settings{ProductsCSV: req.ProductsCSV, Language: req.Language}
	if err := h.settings.Save(r.Context(), s); err != nil {
		InternalError(w, h.logger, err)
		return
	}
	h.jobs.Invalidate()

	h.logger.Info("import settings saved", "products_csv", s.ProductsCSV, "language", s.Language)

	Success(w, s)
}
