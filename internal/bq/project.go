package bq

// ProjectReference identifies a project.
type ProjectReference struct {
	ProjectID string `json:"projectId,omitempty"`
}

// Project is one entry of the projects.list response.
type Project struct {
	Kind             *string           `json:"kind,omitempty"`
	ID               *string           `json:"id,omitempty"`
	NumericID        *string           `json:"numericId,omitempty"`
	ProjectReference *ProjectReference `json:"projectReference,omitempty"`
	FriendlyName     *string           `json:"friendlyName,omitempty"`
}

// ProjectList is the projects.list response.
type ProjectList struct {
	Kind          *string   `json:"kind,omitempty"`
	Etag          *string   `json:"etag,omitempty"`
	NextPageToken *string   `json:"nextPageToken,omitempty"`
	Projects      []Project `json:"projects,omitempty"`
	TotalItems    *int      `json:"totalItems,omitempty"`
}

// GetServiceAccountResponse is the projects.getServiceAccount response.
type GetServiceAccountResponse struct {
	Kind  *string `json:"kind,omitempty"`
	Email string  `json:"email,omitempty"`
}
