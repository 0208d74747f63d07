package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/common"
)

// TableHandler handles table CRUD and bulk row insertion.
type TableHandler struct {
	store  *catalog.Store
	logger arbor.ILogger
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(store *catalog.Store) *TableHandler {
	return &TableHandler{
		store:  store,
		logger: common.GetLogger(),
	}
}

// ListHandler handles GET /projects/{p}/datasets/{d}/tables
func (h *TableHandler) ListHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	list, err := h.store.ListTables(r.Context(), project, dataset)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// CreateHandler handles POST /projects/{p}/datasets/{d}/tables
func (h *TableHandler) CreateHandler(w http.ResponseWriter, r *http.Request, project, dataset string) {
	var table bq.Table
	if err := DecodeJSON(r, &table); err != nil {
		WriteAPIError(w, err)
		return
	}
	created, err := h.store.CreateTable(r.Context(), project, dataset, &table)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, created)
}

// GetHandler handles GET /projects/{p}/datasets/{d}/tables/{t}. The schema is
// read back from the live engine catalog.
func (h *TableHandler) GetHandler(w http.ResponseWriter, r *http.Request, project, dataset, table string) {
	t, err := h.store.GetTable(r.Context(), project, dataset, table)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// DeleteHandler handles DELETE /projects/{p}/datasets/{d}/tables/{t}
func (h *TableHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, project, dataset, table string) {
	if err := h.store.DeleteTable(r.Context(), project, dataset, table); err != nil {
		WriteAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InsertAllHandler handles POST /projects/{p}/datasets/{d}/tables/{t}/insertAll
func (h *TableHandler) InsertAllHandler(w http.ResponseWriter, r *http.Request, project, dataset, table string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req bq.TableDataInsertAllRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteAPIError(w, err)
		return
	}
	resp, err := h.store.InsertAll(r.Context(), project, dataset, table, &req)
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}
