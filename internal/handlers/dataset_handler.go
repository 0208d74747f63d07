package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/errs"
)

// DatasetHandler handles dataset CRUD over the catalog store.
type DatasetHandler struct {
	store  *catalog.Store
	logger arbor.ILogger
}

// NewDatasetHandler creates a new DatasetHandler
func NewDatasetHandler(store *catalog.Store) *DatasetHandler {
	return &DatasetHandler{
		store:  store,
		logger: common.GetLogger(),
	}
}

// ListHandler handles GET /projects/{p}/datasets
func (h *DatasetHandler) ListHandler(w http.ResponseWriter, r *http.Request, project string) {
	list, err := h.store.ListDatasets(r.Context(), project)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// CreateHandler handles POST /projects/{p}/datasets
func (h *DatasetHandler) CreateHandler(w http.ResponseWriter, r *http.Request, project string) {
	var dataset bq.Dataset
	if err := DecodeJSON(r, &dataset); err != nil {
		WriteAPIError(w, err)
		return
	}
	created, err := h.store.CreateDataset(r.Context(), project, &dataset)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

// GetHandler handles GET /projects/{p}/datasets/{d}
func (h *DatasetHandler) GetHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	d, err := h.store.GetDataset(r.Context(), project, dataset)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// DeleteHandler handles DELETE /projects/{p}/datasets/{d}
func (h *DatasetHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	if err := h.store.DeleteDataset(r.Context(), project, dataset); err != nil {
		WriteAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateHandler handles PUT /projects/{p}/datasets/{d}
func (h *DatasetHandler) UpdateHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	var d bq.Dataset
	if err := DecodeJSON(r, &d); err != nil {
		WriteAPIError(w, err)
		return
	}
	updated, err := h.store.UpdateDataset(r.Context(), project, dataset, &d)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// PatchHandler handles PATCH /projects/{p}/datasets/{d}. The raw body is
// forwarded so absent fields stay distinguishable from null ones.
func (h *DatasetHandler) PatchHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		WriteAPIError(w, errs.Invalid("request body is required"))
		return
	}
	patched, err := h.store.PatchDataset(r.Context(), project, dataset, json.RawMessage(body))
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, patched)
}

// UndeleteHandler handles POST /projects/{p}/datasets/{d}:undelete
func (h *DatasetHandler) UndeleteHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	d, err := h.store.UndeleteDataset(r.Context(), project, dataset)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}
