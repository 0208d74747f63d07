package bq

// DatasetReference identifies a dataset within a project.
type DatasetReference struct {
	ProjectID string `json:"projectId,omitempty"`
	DatasetID string `json:"datasetId,omitempty"`
}

// Dataset is the full dataset resource.
type Dataset struct {
	Kind                   *string               `json:"kind,omitempty"`
	Etag                   *string               `json:"etag,omitempty"`
	ID                     *string               `json:"id,omitempty"`
	SelfLink               *string               `json:"selfLink,omitempty"`
	DatasetReference       *DatasetReference     `json:"datasetReference,omitempty"`
	FriendlyName           *string               `json:"friendlyName,omitempty"`
	Description            *string               `json:"description,omitempty"`
	DefaultTableExpiration *string               `json:"defaultTableExpirationMs,omitempty"`
	Labels                 map[string]string     `json:"labels,omitempty"`
	Location               *string               `json:"location,omitempty"`
	CreationTime           *string               `json:"creationTime,omitempty"`
	LastModifiedTime       *string               `json:"lastModifiedTime,omitempty"`
	StorageBillingModel    *string               `json:"storageBillingModel,omitempty"`
	LinkedDatasetMetadata  *LinkedDatasetMeta    `json:"linkedDatasetMetadata,omitempty"`
	ResourceTags           map[string]string     `json:"resourceTags,omitempty"`
	Access                 []map[string]any      `json:"access,omitempty"`
	Type                   *string               `json:"type,omitempty"`
	IsCaseInsensitive      *bool                 `json:"isCaseInsensitive,omitempty"`
	MaxTimeTravelHours     *string               `json:"maxTimeTravelHours,omitempty"`
	Tags                   []map[string]string   `json:"tags,omitempty"`
	ExternalDatasetRef     map[string]any        `json:"externalDatasetReference,omitempty"`
}

// LinkedDatasetMeta carries the link state of a linked dataset.
type LinkedDatasetMeta struct {
	LinkState string `json:"linkState,omitempty"`
}

// Link states.
const (
	LinkStateUnlinked = "UNLINKED"
	LinkStateLinked   = "LINKED"
)

// Storage billing models.
const (
	BillingModelLogical  = "LOGICAL"
	BillingModelPhysical = "PHYSICAL"
)

// DatasetListEntry is the trimmed dataset shape used in list responses.
type DatasetListEntry struct {
	Kind             *string           `json:"kind,omitempty"`
	ID               *string           `json:"id,omitempty"`
	DatasetReference *DatasetReference `json:"datasetReference,omitempty"`
	FriendlyName     *string           `json:"friendlyName,omitempty"`
	Labels           map[string]string `json:"labels,omitempty"`
	Location         *string           `json:"location,omitempty"`
}

// DatasetList is the datasets.list response.
type DatasetList struct {
	Kind          *string            `json:"kind,omitempty"`
	Etag          *string            `json:"etag,omitempty"`
	NextPageToken *string            `json:"nextPageToken,omitempty"`
	Datasets      []DatasetListEntry `json:"datasets,omitempty"`
	Unreachable   []string           `json:"unreachable,omitempty"`
}

// ListEntry converts a dataset resource to its list shape.
func (d *Dataset) ListEntry() DatasetListEntry {
	return DatasetListEntry{
		Kind:             Ptr("bigquery#dataset"),
		ID:               d.ID,
		DatasetReference: d.DatasetReference,
		FriendlyName:     d.FriendlyName,
		Labels:           d.Labels,
		Location:         d.Location,
	}
}

// Ptr returns a pointer to v, for filling optional wire fields.
func Ptr[T any](v T) *T { return &v }
