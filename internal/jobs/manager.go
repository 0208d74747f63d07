// Package jobs implements the synchronous job protocol: every submitted
// query runs to completion before the job record exists.
package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/query"
)

// Manager runs query jobs and owns job record CRUD.
type Manager struct {
	store    *catalog.Store
	executor *query.Executor
	logger   arbor.ILogger
}

// NewManager wires the manager onto the store and executor.
func NewManager(store *catalog.Store, executor *query.Executor) *Manager {
	return &Manager{store: store, executor: executor, logger: common.GetLogger()}
}

func nowSeconds() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// SubmitQuery executes a query job synchronously. On success the DONE job and
// its companion result are persisted; on failure nothing is stored and the
// typed error propagates.
func (m *Manager) SubmitQuery(ctx context.Context, project string, ref *bq.JobReference, cfg *bq.JobConfiguration) (*bq.Job, *bq.GetQueryResultsResponse, error) {
	if cfg == nil || cfg.Query == nil || cfg.Query.Query == "" {
		return nil, nil, errs.Invalid("configuration.query.query is required")
	}
	queryProject, queryDataset := project, ""
	if dd := cfg.Query.DefaultDataset; dd != nil {
		if dd.ProjectID != "" {
			queryProject = dd.ProjectID
		}
		queryDataset = dd.DatasetID
	}

	out, err := m.executor.Execute(ctx, query.Request{
		Project: queryProject,
		Dataset: queryDataset,
		Query:   cfg.Query.Query,
		Params:  cfg.Query.QueryParameters,
	})
	if err != nil {
		return nil, nil, err
	}

	location := "US"
	if ref == nil {
		ref = &bq.JobReference{}
	}
	if ref.JobID == "" {
		ref.JobID = common.NewJobID()
	}
	ref.ProjectID = project
	if ref.Location == nil {
		ref.Location = bq.Ptr(location)
	}

	now := nowSeconds()
	job := &bq.Job{
		Kind:              bq.Ptr("bigquery#job"),
		ID:                bq.Ptr(project + ":" + location + "." + ref.JobID),
		JobReference:      ref,
		JobCreationReason: &bq.JobCreationReason{Code: bq.JobCreationRequested},
		Configuration:     cfg,
		Status:            &bq.JobStatus{State: bq.JobStateDone},
		Statistics: &bq.JobStatistics{
			CreationTime:        bq.Ptr(now),
			StartTime:           bq.Ptr(now),
			EndTime:             bq.Ptr(now),
			CompletionRatio:     bq.Ptr(1.0),
			TotalBytesProcessed: bq.Ptr("0"),
			TotalSlotMs:         bq.Ptr("0"),
			SessionInfo:         &bq.SessionInfo{SessionID: uuid.NewString()},
			Query: &bq.JobStatisticsQuery{
				StatementType:       bq.Ptr("SELECT"),
				TotalBytesProcessed: bq.Ptr("0"),
				TotalBytesBilled:    bq.Ptr("0"),
				CacheHit:            bq.Ptr(false),
				BiEngineStatistics: &bq.BiEngineStatistics{
					BiEngineMode:     bq.BiEngineModeDisabled,
					AccelerationMode: bq.BiEngineAccelerationDisabled,
					BiEngineReasons: []bq.BiEngineReason{{
						Code:    bq.BiEngineReasonOther,
						Message: "BI Engine is not emulated",
					}},
				},
			},
		},
	}
	result := &bq.GetQueryResultsResponse{
		Kind:                bq.Ptr("bigquery#getQueryResultsResponse"),
		JobReference:        ref,
		Schema:              out.Schema,
		Rows:                out.Rows,
		TotalRows:           bq.Ptr(strconv.Itoa(out.TotalRows)),
		TotalBytesProcessed: bq.Ptr("0"),
		JobComplete:         bq.Ptr(true),
		CacheHit:            bq.Ptr(false),
	}

	if err := m.store.InsertJob(ctx, project, job); err != nil {
		return nil, nil, err
	}
	if err := m.store.SaveQueryResult(ctx, project, ref.JobID, result); err != nil {
		return nil, nil, err
	}
	m.logger.Debug().Str("project", project).Str("job", ref.JobID).Msg("Query job completed")
	return job, result, nil
}

// GetJob loads one job.
func (m *Manager) GetJob(ctx context.Context, project, id string) (*bq.Job, error) {
	return m.store.GetJob(ctx, project, id)
}

// ListJobs returns the stored jobs of a project.
func (m *Manager) ListJobs(ctx context.Context, project string) (*bq.JobList, error) {
	jobs, err := m.store.ListJobs(ctx, project)
	if err != nil {
		return nil, err
	}
	list := &bq.JobList{Kind: bq.Ptr("bigquery#jobList")}
	for i := range jobs {
		list.Jobs = append(list.Jobs, jobs[i].ListEntry())
	}
	return list, nil
}

// CancelJob returns the job unchanged: execution is synchronous, so by the
// time a cancel arrives the job is already terminal.
func (m *Manager) CancelJob(ctx context.Context, project, id string) (*bq.JobCancelResponse, error) {
	job, err := m.store.GetJob(ctx, project, id)
	if err != nil {
		return nil, err
	}
	return &bq.JobCancelResponse{Kind: bq.Ptr("bigquery#jobCancelResponse"), Job: job}, nil
}

// DeleteJob removes the job record and its stored result.
func (m *Manager) DeleteJob(ctx context.Context, project, id string) error {
	return m.store.DeleteJob(ctx, project, id)
}

// GetQueryResults loads the stored result of a job.
func (m *Manager) GetQueryResults(ctx context.Context, project, id string) (*bq.GetQueryResultsResponse, error) {
	return m.store.GetQueryResult(ctx, project, id)
}
