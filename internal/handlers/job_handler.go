package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/jobs"
)

// JobHandler handles the job surface of the API.
type JobHandler struct {
	manager *jobs.Manager
	logger  arbor.ILogger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(manager *jobs.Manager) *JobHandler {
	return &JobHandler{
		manager: manager,
		logger:  common.GetLogger(),
	}
}

// ListHandler handles GET /projects/{p}/jobs
func (h *JobHandler) ListHandler(w http.ResponseWriter, r *http.Request, project string) {
	list, err := h.manager.ListJobs(r.Context(), project)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// InsertHandler handles POST /projects/{p}/jobs. Query jobs run to completion
// before the response is written.
func (h *JobHandler) InsertHandler(w http.ResponseWriter, r *http.Request, project string) {
	var job bq.Job
	if err := DecodeJSON(r, &job); err != nil {
		WriteAPIError(w, err)
		return
	}
	if job.Configuration == nil || job.Configuration.Query == nil {
		WriteAPIError(w, errs.Unimplemented("only query jobs are supported"))
		return
	}
	done, _, err := h.manager.SubmitQuery(r.Context(), project, job.JobReference, job.Configuration)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, done)
}

// GetHandler handles GET /projects/{p}/jobs/{j}
func (h *JobHandler) GetHandler(w http.ResponseWriter, r *http.Request, project, id string) {
	job, err := h.manager.GetJob(r.Context(), project, id)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// CancelHandler handles POST /projects/{p}/jobs/{j}/cancel
func (h *JobHandler) CancelHandler(w http.ResponseWriter, r *http.Request, project, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	resp, err := h.manager.CancelJob(r.Context(), project, id)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// DeleteHandler handles DELETE /projects/{p}/jobs/{j}/delete
func (h *JobHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, project, id string) {
	if err := h.manager.DeleteJob(r.Context(), project, id); err != nil {
		WriteAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
