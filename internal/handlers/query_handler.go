package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/jobs"
)

// QueryHandler handles the synchronous query surface.
type QueryHandler struct {
	manager *jobs.Manager
	logger  arbor.ILogger
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(manager *jobs.Manager) *QueryHandler {
	return &QueryHandler{
		manager: manager,
		logger:  common.GetLogger(),
	}
}

// QueryHandler handles POST /projects/{p}/queries
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request, project string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req bq.QueryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteAPIError(w, err)
		return
	}
	if req.Query == "" {
		WriteAPIError(w, errs.Invalid("query is required"))
		return
	}

	job, result, err := h.manager.SubmitQuery(r.Context(), project, nil, req.JobConfiguration())
	if err != nil {
		WriteAPIError(w, err)
		return
	}

	resp := &bq.QueryResponse{
		Kind:                bq.Ptr("bigquery#queryResponse"),
		Schema:              result.Schema,
		JobReference:        job.JobReference,
		JobCreationReason:   job.JobCreationReason,
		QueryID:             bq.Ptr(job.JobReference.JobID),
		Rows:                result.Rows,
		TotalRows:           result.TotalRows,
		TotalBytesProcessed: result.TotalBytesProcessed,
		JobComplete:         result.JobComplete,
		CacheHit:            result.CacheHit,
	}
	if job.Statistics != nil {
		resp.CreationTime = job.Statistics.CreationTime
		resp.StartTime = job.Statistics.StartTime
		resp.EndTime = job.Statistics.EndTime
		if job.Statistics.SessionInfo != nil {
			resp.SessionInfo = job.Statistics.SessionInfo
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ResultsHandler handles GET /projects/{p}/queries/{j}
func (h *QueryHandler) ResultsHandler(w http.ResponseWriter, r *http.Request, project, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	result, err := h.manager.GetQueryResults(r.Context(), project, id)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
