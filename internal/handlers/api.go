package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/errs"
)

type APIHandler struct {
	logger arbor.ILogger
}

func NewAPIHandler() *APIHandler {
	return &APIHandler{
		logger: common.GetLogger(),
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// NotFoundHandler handles unmatched API routes with the standard envelope
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteAPIError(w, errs.NotFound("no handler for %s %s", r.Method, r.URL.Path))
}

// UnimplementedHandler covers surfaces the emulator does not support: models,
// routines, row access policies, IAM and tabledata listing.
func (h *APIHandler) UnimplementedHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("path", r.URL.Path).Msg("Unimplemented endpoint called")
	WriteAPIError(w, errs.Unimplemented("%s %s is not supported by this emulator", r.Method, r.URL.Path))
}
