package api

import "net/http"

// ListLanguages возвращает сконфигурированные языки.
// GET /api/v1/languages
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	langs := h.languages.List()
	def := h.languages.Default()

	result := make([]LanguageResponse, len(langs))
	for i, l := range langs {
		result[i] = LanguageResponse{
			Code:    l.Code,
			Name:    l.Name,
			Default: l.Code == def,
		}
	}

	List(w, result, len(result))
}
