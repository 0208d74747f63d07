package bq

// QueryRequest is the jobs.query request body.
type QueryRequest struct {
	Kind            *string           `json:"kind,omitempty"`
	Query           string            `json:"query"`
	MaxResults      *int64            `json:"maxResults,omitempty"`
	DefaultDataset  *DatasetReference `json:"defaultDataset,omitempty"`
	TimeoutMs       *int64            `json:"timeoutMs,omitempty"`
	DryRun          *bool             `json:"dryRun,omitempty"`
	UseQueryCache   *bool             `json:"useQueryCache,omitempty"`
	UseLegacySQL    *bool             `json:"useLegacySql,omitempty"`
	ParameterMode   *string           `json:"parameterMode,omitempty"`
	QueryParameters []QueryParameter  `json:"queryParameters,omitempty"`
	Location        *string           `json:"location,omitempty"`
	RequestID       *string           `json:"requestId,omitempty"`
	JobCreationMode *string           `json:"jobCreationMode,omitempty"`
	LabelsMap       map[string]string `json:"labels,omitempty"`
}

// JobConfiguration converts a synchronous query request into the equivalent
// job configuration stored on the job record.
func (r *QueryRequest) JobConfiguration() *JobConfiguration {
	return &JobConfiguration{
		JobType: Ptr("QUERY"),
		Query: &JobConfigurationQuery{
			Query:           r.Query,
			DefaultDataset:  r.DefaultDataset,
			UseLegacySQL:    r.UseLegacySQL,
			UseQueryCache:   r.UseQueryCache,
			ParameterMode:   r.ParameterMode,
			QueryParameters: r.QueryParameters,
		},
	}
}

// QueryResponse is the jobs.query response.
type QueryResponse struct {
	Kind                *string            `json:"kind,omitempty"`
	Schema              *TableSchema       `json:"schema,omitempty"`
	JobReference        *JobReference      `json:"jobReference,omitempty"`
	JobCreationReason   *JobCreationReason `json:"jobCreationReason,omitempty"`
	QueryID             *string            `json:"queryId,omitempty"`
	TotalRows           *string            `json:"totalRows,omitempty"`
	PageToken           *string            `json:"pageToken,omitempty"`
	Rows                []TableRow         `json:"rows,omitempty"`
	TotalBytesProcessed *string            `json:"totalBytesProcessed,omitempty"`
	TotalBytesBilled    *string            `json:"totalBytesBilled,omitempty"`
	TotalSlotMs         *string            `json:"totalSlotMs,omitempty"`
	JobComplete         *bool              `json:"jobComplete,omitempty"`
	Errors              []ErrorProto       `json:"errors,omitempty"`
	CacheHit            *bool              `json:"cacheHit,omitempty"`
	NumDmlAffectedRows  *string            `json:"numDmlAffectedRows,omitempty"`
	SessionInfo         *SessionInfo       `json:"sessionInfo,omitempty"`
	Location            *string            `json:"location,omitempty"`
	CreationTime        *string            `json:"creationTime,omitempty"`
	StartTime           *string            `json:"startTime,omitempty"`
	EndTime             *string            `json:"endTime,omitempty"`
}

// GetQueryResultsResponse is the stored query result companion of a job, and
// the jobs.getQueryResults response.
type GetQueryResultsResponse struct {
	Kind                *string       `json:"kind,omitempty"`
	Etag                *string       `json:"etag,omitempty"`
	Schema              *TableSchema  `json:"schema,omitempty"`
	JobReference        *JobReference `json:"jobReference,omitempty"`
	TotalRows           *string       `json:"totalRows,omitempty"`
	PageToken           *string       `json:"pageToken,omitempty"`
	Rows                []TableRow    `json:"rows,omitempty"`
	TotalBytesProcessed *string       `json:"totalBytesProcessed,omitempty"`
	JobComplete         *bool         `json:"jobComplete,omitempty"`
	Errors              []ErrorProto  `json:"errors,omitempty"`
	CacheHit            *bool         `json:"cacheHit,omitempty"`
	NumDmlAffectedRows  *string       `json:"numDmlAffectedRows,omitempty"`
}
