package api

import (
	"fmt"
	"net/http"

	"github.com/shaiso/ContentImport/internal/domain"
)

// ListJobs возвращает развёрнутые definitions с их состоянием.
// GET /api/v1/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	defs := h.jobs.Definitions()

	result := make([]JobResponse, 0, len(defs))
	for _, def := range defs {
		state, found, err := h.states.Get(r.Context(), def.ID)
		if err != nil {
			InternalError(w, h.logger, err)
			return
		}
		result = append(result, JobFromDomain(def, state, found))
	}

	List(w, result, len(result))
}

// StopJob запрашивает остановку выполняющегося job.
// POST /api/v1/jobs/{id}/stop
//
// Job заметит interrupt при следующей проверке и вернёт STOPPED.
func (h *Handler) StopJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	def, err := h.jobs.Definition(id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	state, found, err := h.states.Get(ctx, id)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	resp := JobFromDomain(def, state, found)
	if !resp.Status.IsBusy() {
		InvalidState(w, fmt.Sprintf("job %s is not running (status %s)", id, resp.Status))
		return
	}

	if err := h.states.SetInterrupt(ctx, id, domain.RunResultStopped); err != nil {
		InternalError(w, h.logger, err)
		return
	}
	if err := h.states.SetStatus(ctx, id, domain.JobStatusStopping); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("job stop requested", "job_id", id, "previous_status", resp.Status)

	resp.Status = domain.JobStatusStopping
	resp.Interrupt = domain.RunResultStopped.String()
	Success(w, resp)
}

// ResetJob сбрасывает job в IDLE и снимает interrupt.
// POST /api/v1/jobs/{id}/reset
//
// Нужен после падения процесса, когда job остался в IMPORTING.
func (h *Handler) ResetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	def, err := h.jobs.Definition(id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}
	if def.Status == domain.JobStatusDisabled {
		InvalidState(w, fmt.Sprintf("job %s is disabled", id))
		return
	}

	if err := h.states.SetInterrupt(ctx, id, 0); err != nil {
		InternalError(w, h.logger, err)
		return
	}
	if err := h.states.SetStatus(ctx, id, domain.JobStatusIdle); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("job reset to idle", "job_id", id)

	state, found, err := h.states.Get(ctx, id)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}
	Success(w, JobFromDomain(def, state, found))
}
