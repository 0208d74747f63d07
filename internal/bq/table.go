package bq

// TableReference identifies a table within a dataset.
type TableReference struct {
	ProjectID string `json:"projectId,omitempty"`
	DatasetID string `json:"datasetId,omitempty"`
	TableID   string `json:"tableId,omitempty"`
}

// Table is the full table resource. The wire key "schema" collides with
// nothing in Go; the field keeps its original key via the tag.
type Table struct {
	Kind                   *string         `json:"kind,omitempty"`
	Etag                   *string         `json:"etag,omitempty"`
	ID                     *string         `json:"id,omitempty"`
	SelfLink               *string         `json:"selfLink,omitempty"`
	TableReference         *TableReference `json:"tableReference,omitempty"`
	FriendlyName           *string         `json:"friendlyName,omitempty"`
	Description            *string         `json:"description,omitempty"`
	Labels                 map[string]string `json:"labels,omitempty"`
	Schema                 *TableSchema    `json:"schema,omitempty"`
	NumRows                *string         `json:"numRows,omitempty"`
	NumBytes               *string         `json:"numBytes,omitempty"`
	CreationTime           *string         `json:"creationTime,omitempty"`
	ExpirationTime         *string         `json:"expirationTime,omitempty"`
	LastModifiedTime       *string         `json:"lastModifiedTime,omitempty"`
	Type                   *string         `json:"type,omitempty"`
	Location               *string         `json:"location,omitempty"`
	RequirePartitionFilter *bool           `json:"requirePartitionFilter,omitempty"`
}

// TableListEntry is the trimmed table shape used in list responses.
type TableListEntry struct {
	Kind           *string         `json:"kind,omitempty"`
	ID             *string         `json:"id,omitempty"`
	TableReference *TableReference `json:"tableReference,omitempty"`
	FriendlyName   *string         `json:"friendlyName,omitempty"`
	Type           *string         `json:"type,omitempty"`
	CreationTime   *string         `json:"creationTime,omitempty"`
}

// TableList is the tables.list response.
type TableList struct {
	Kind          *string          `json:"kind,omitempty"`
	Etag          *string          `json:"etag,omitempty"`
	NextPageToken *string          `json:"nextPageToken,omitempty"`
	Tables        []TableListEntry `json:"tables,omitempty"`
	TotalItems    *int             `json:"totalItems,omitempty"`
}

// TableDataInsertAllRequest is the tabledata.insertAll request body. Each
// row's "json" member maps column names to arbitrary JSON values.
type TableDataInsertAllRequest struct {
	Kind                *string         `json:"kind,omitempty"`
	SkipInvalidRows     *bool           `json:"skipInvalidRows,omitempty"`
	IgnoreUnknownValues *bool           `json:"ignoreUnknownValues,omitempty"`
	TemplateSuffix      *string         `json:"templateSuffix,omitempty"`
	Rows                []InsertAllRow  `json:"rows,omitempty"`
}

// InsertAllRow is one row of an insertAll request.
type InsertAllRow struct {
	InsertID *string        `json:"insertId,omitempty"`
	JSON     map[string]any `json:"json,omitempty"`
}

// InsertAllError describes a failed row insert.
type InsertAllError struct {
	Index  *int         `json:"index,omitempty"`
	Errors []ErrorProto `json:"errors,omitempty"`
}

// TableDataInsertAllResponse is the tabledata.insertAll response.
type TableDataInsertAllResponse struct {
	Kind         *string          `json:"kind,omitempty"`
	InsertErrors []InsertAllError `json:"insertErrors,omitempty"`
}
