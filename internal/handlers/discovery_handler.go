package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/common"
)

// DiscoveryHandler serves a minimal discovery document so client libraries
// that bootstrap from it resolve their endpoints against this server.
type DiscoveryHandler struct {
	baseURL string
	logger  arbor.ILogger
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(host string, port int) *DiscoveryHandler {
	return &DiscoveryHandler{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		logger:  common.GetLogger(),
	}
}

// DocumentHandler handles GET /$discovery/rest and the versioned alias.
func (h *DiscoveryHandler) DocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"kind":             "discovery#restDescription",
		"discoveryVersion": "v1",
		"id":               "bigquery:v2",
		"name":             "bigquery",
		"version":          "v2",
		"title":            "BigQuery API (local emulator)",
		"description":      "A data platform for customers to create, manage, share and query data.",
		"protocol":         "rest",
		"rootUrl":          h.baseURL + "/",
		"baseUrl":          h.baseURL + "/bigquery/v2/",
		"basePath":         "/bigquery/v2/",
		"servicePath":      "bigquery/v2/",
		"batchPath":        "batch/bigquery/v2",
	})
}
