package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Imports (batch)
	mux.Handle("POST /api/v1/imports", chain(http.HandlerFunc(h.CreateImport)))
	mux.Handle("GET /api/v1/imports", chain(http.HandlerFunc(h.ListImports)))
	mux.Handle("GET /api/v1/imports/{id}", chain(http.HandlerFunc(h.GetImport)))

	// Jobs
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("POST /api/v1/jobs/{id}/stop", chain(http.HandlerFunc(h.StopJob)))
	mux.Handle("POST /api/v1/jobs/{id}/reset", chain(http.HandlerFunc(h.ResetJob)))

	// Languages
	mux.Handle("GET /api/v1/languages", chain(http.HandlerFunc(h.ListLanguages)))

	// Settings
	mux.Handle("GET /api/v1/settings", chain(http.HandlerFunc(h.GetSettings)))
	mux.Handle("PUT /api/v1/settings", chain(http.HandlerFunc(h.UpdateSettings)))
}
