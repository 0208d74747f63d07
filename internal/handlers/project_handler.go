package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/common"
)

// ProjectHandler handles project listing and the service account stub.
type ProjectHandler struct {
	store  *catalog.Store
	logger arbor.ILogger
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(store *catalog.Store) *ProjectHandler {
	return &ProjectHandler{
		store:  store,
		logger: common.GetLogger(),
	}
}

// ListHandler handles GET /bigquery/v2/projects
func (h *ProjectHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	names, err := h.store.Engine().Projects()
	if err != nil {
		WriteAPIError(w, err)
		return
	}
	list := &bq.ProjectList{Kind: bq.Ptr("bigquery#projectList"), TotalItems: bq.Ptr(len(names))}
	for _, name := range names {
		list.Projects = append(list.Projects, bq.Project{
			Kind:             bq.Ptr("bigquery#project"),
			ID:               bq.Ptr(name),
			NumericID:        bq.Ptr("0"),
			ProjectReference: &bq.ProjectReference{ProjectID: name},
			FriendlyName:     bq.Ptr(name),
		})
	}
	WriteJSON(w, http.StatusOK, list)
}

// ServiceAccountHandler handles GET /bigquery/v2/projects/{p}/serviceAccount
func (h *ProjectHandler) ServiceAccountHandler(w http.ResponseWriter, r *http.Request, project string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, bq.GetServiceAccountResponse{
		Kind:  bq.Ptr("bigquery#getServiceAccountResponse"),
		Email: "bigquery@" + project + ".iam.gserviceaccount.example.com",
	})
}
