package bq

// Job states.
const (
	JobStatePending = "PENDING"
	JobStateRunning = "RUNNING"
	JobStateDone    = "DONE"
)

// JobReference identifies a job within a project.
type JobReference struct {
	ProjectID string  `json:"projectId,omitempty"`
	JobID     string  `json:"jobId,omitempty"`
	Location  *string `json:"location,omitempty"`
}

// ErrorProto is a single wire error record.
type ErrorProto struct {
	Reason   string `json:"reason,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// JobStatus carries the job state machine plus any terminal errors.
type JobStatus struct {
	State       string       `json:"state,omitempty"`
	ErrorResult *ErrorProto  `json:"errorResult,omitempty"`
	Errors      []ErrorProto `json:"errors,omitempty"`
}

// JobConfigurationQuery configures a query job. The wire key "query" holds the
// SQL text itself.
type JobConfigurationQuery struct {
	Query              string            `json:"query,omitempty"`
	DefaultDataset     *DatasetReference `json:"defaultDataset,omitempty"`
	DestinationTable   *TableReference   `json:"destinationTable,omitempty"`
	UseLegacySQL       *bool             `json:"useLegacySql,omitempty"`
	UseQueryCache      *bool             `json:"useQueryCache,omitempty"`
	ParameterMode      *string           `json:"parameterMode,omitempty"`
	QueryParameters    []QueryParameter  `json:"queryParameters,omitempty"`
	WriteDisposition   *string           `json:"writeDisposition,omitempty"`
	CreateDisposition  *string           `json:"createDisposition,omitempty"`
	MaximumBytesBilled *string           `json:"maximumBytesBilled,omitempty"`
}

// JobConfiguration is the submitted configuration; only query jobs execute.
// "copy" is a reserved word in several client languages but plain in Go.
type JobConfiguration struct {
	JobType      *string                `json:"jobType,omitempty"`
	Query        *JobConfigurationQuery `json:"query,omitempty"`
	Load         map[string]any         `json:"load,omitempty"`
	Copy         map[string]any         `json:"copy,omitempty"`
	Extract      map[string]any         `json:"extract,omitempty"`
	DryRun       *bool                  `json:"dryRun,omitempty"`
	JobTimeoutMs *string                `json:"jobTimeoutMs,omitempty"`
	Labels       map[string]string      `json:"labels,omitempty"`
}

// SessionInfo carries the id of the session a job ran in.
type SessionInfo struct {
	SessionID string `json:"sessionId,omitempty"`
}

// BI engine modes and reason codes.
const (
	BiEngineModeDisabled         = "DISABLED"
	BiEngineAccelerationDisabled = "BI_ENGINE_DISABLED"
	BiEngineReasonOther          = "OTHER_REASON"
)

// BiEngineReason explains why BI Engine did not accelerate a query.
type BiEngineReason struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// BiEngineStatistics reports BI Engine involvement; always disabled here.
type BiEngineStatistics struct {
	BiEngineMode     string           `json:"biEngineMode,omitempty"`
	AccelerationMode string           `json:"accelerationMode,omitempty"`
	BiEngineReasons  []BiEngineReason `json:"biEngineReasons,omitempty"`
}

// JobStatisticsQuery is the query-specific statistics block.
type JobStatisticsQuery struct {
	BiEngineStatistics  *BiEngineStatistics `json:"biEngineStatistics,omitempty"`
	StatementType       *string             `json:"statementType,omitempty"`
	TotalBytesProcessed *string             `json:"totalBytesProcessed,omitempty"`
	TotalBytesBilled    *string             `json:"totalBytesBilled,omitempty"`
	CacheHit            *bool               `json:"cacheHit,omitempty"`
	NumDmlAffectedRows  *string             `json:"numDmlAffectedRows,omitempty"`
}

// JobStatistics is the top-level statistics block. Timestamps are
// seconds-since-epoch strings.
type JobStatistics struct {
	CreationTime        *string             `json:"creationTime,omitempty"`
	StartTime           *string             `json:"startTime,omitempty"`
	EndTime             *string             `json:"endTime,omitempty"`
	CompletionRatio     *float64            `json:"completionRatio,omitempty"`
	TotalBytesProcessed *string             `json:"totalBytesProcessed,omitempty"`
	TotalSlotMs         *string             `json:"totalSlotMs,omitempty"`
	Query               *JobStatisticsQuery `json:"query,omitempty"`
	SessionInfo         *SessionInfo        `json:"sessionInfo,omitempty"`
	ParentJobID         *string             `json:"parentJobId,omitempty"`
	NumChildJobs        *string             `json:"numChildJobs,omitempty"`
}

// JobCreationReason codes.
const JobCreationRequested = "REQUESTED"

// JobCreationReason records why a job was created.
type JobCreationReason struct {
	Code string `json:"code,omitempty"`
}

// Job is the full job resource.
type Job struct {
	Kind              *string            `json:"kind,omitempty"`
	Etag              *string            `json:"etag,omitempty"`
	ID                *string            `json:"id,omitempty"`
	SelfLink          *string            `json:"selfLink,omitempty"`
	UserEmail         *string            `json:"user_email,omitempty"`
	Configuration     *JobConfiguration  `json:"configuration,omitempty"`
	JobReference      *JobReference      `json:"jobReference,omitempty"`
	JobCreationReason *JobCreationReason `json:"jobCreationReason,omitempty"`
	Statistics        *JobStatistics     `json:"statistics,omitempty"`
	Status            *JobStatus         `json:"status,omitempty"`
	PrincipalSubject  *string            `json:"principal_subject,omitempty"`
}

// JobListEntry is the trimmed job shape used in list responses.
type JobListEntry struct {
	Kind          *string           `json:"kind,omitempty"`
	ID            *string           `json:"id,omitempty"`
	JobReference  *JobReference     `json:"jobReference,omitempty"`
	State         *string           `json:"state,omitempty"`
	Configuration *JobConfiguration `json:"configuration,omitempty"`
	Statistics    *JobStatistics    `json:"statistics,omitempty"`
	Status        *JobStatus        `json:"status,omitempty"`
	UserEmail     *string           `json:"user_email,omitempty"`
}

// JobList is the jobs.list response.
type JobList struct {
	Kind          *string        `json:"kind,omitempty"`
	Etag          *string        `json:"etag,omitempty"`
	NextPageToken *string        `json:"nextPageToken,omitempty"`
	Jobs          []JobListEntry `json:"jobs,omitempty"`
}

// ListEntry converts a job resource to its list shape.
func (j *Job) ListEntry() JobListEntry {
	entry := JobListEntry{
		Kind:          Ptr("bigquery#job"),
		ID:            j.ID,
		JobReference:  j.JobReference,
		Configuration: j.Configuration,
		Statistics:    j.Statistics,
		Status:        j.Status,
		UserEmail:     j.UserEmail,
	}
	if j.Status != nil {
		entry.State = Ptr(j.Status.State)
	}
	return entry
}

// JobCancelResponse is the jobs.cancel response.
type JobCancelResponse struct {
	Kind *string `json:"kind,omitempty"`
	Job  *Job    `json:"job,omitempty"`
}
