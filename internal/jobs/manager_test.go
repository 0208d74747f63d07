package jobs

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/engine"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/query"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	e, err := engine.Open(engine.Config{
		DataDir:         t.TempDir(),
		DefaultProject:  "local",
		InternalProject: "bigquery-internal",
		DefaultDataset:  "local",
		InternalDataset: "meta",
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	store := catalog.NewStore(e)
	return NewManager(store, query.NewExecutor(store, "us.default", ""))
}

func queryConfig(sql string) *bq.JobConfiguration {
	return &bq.JobConfiguration{Query: &bq.JobConfigurationQuery{Query: sql}}
}

func TestSubmitQueryCompletesSynchronously(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job, result, err := m.SubmitQuery(ctx, "local", nil, queryConfig("SELECT 1 AS a"))
	require.NoError(t, err)

	assert.Equal(t, bq.JobStateDone, job.Status.State)
	require.NotNil(t, job.JobReference)
	assert.NotEmpty(t, job.JobReference.JobID)
	assert.Equal(t, "local", job.JobReference.ProjectID)

	require.NotNil(t, result.JobComplete)
	assert.True(t, *result.JobComplete)
	assert.Equal(t, "1", *result.TotalRows)
	require.Len(t, result.Rows, 1)
	require.NotNil(t, result.Rows[0].F[0].Value)
	assert.Equal(t, "1", *result.Rows[0].F[0].Value)
}

func TestSubmitQueryStatisticsTimestampsAreSeconds(t *testing.T) {
	m := newTestManager(t)
	job, _, err := m.SubmitQuery(context.Background(), "local", nil, queryConfig("SELECT 1"))
	require.NoError(t, err)

	require.NotNil(t, job.Statistics)
	for _, stamp := range []*string{
		job.Statistics.CreationTime,
		job.Statistics.StartTime,
		job.Statistics.EndTime,
	} {
		require.NotNil(t, stamp)
		v, err := strconv.ParseInt(*stamp, 10, 64)
		require.NoError(t, err)
		assert.InDelta(t, time.Now().Unix(), v, 120)
	}
}

func TestSubmitQueryPersistsJobAndResult(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job, _, err := m.SubmitQuery(ctx, "local", nil, queryConfig("SELECT 2 AS b"))
	require.NoError(t, err)
	id := job.JobReference.JobID

	got, err := m.GetJob(ctx, "local", id)
	require.NoError(t, err)
	assert.Equal(t, bq.JobStateDone, got.Status.State)

	replay, err := m.GetQueryResults(ctx, "local", id)
	require.NoError(t, err)
	assert.Equal(t, "1", *replay.TotalRows)
	require.Len(t, replay.Rows, 1)
	assert.Equal(t, "2", *replay.Rows[0].F[0].Value)

	list, err := m.ListJobs(ctx, "local")
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)

	cancel, err := m.CancelJob(ctx, "local", id)
	require.NoError(t, err)
	require.NotNil(t, cancel.Job)
	assert.Equal(t, bq.JobStateDone, cancel.Job.Status.State)

	require.NoError(t, m.DeleteJob(ctx, "local", id))
	_, err = m.GetJob(ctx, "local", id)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestSubmitQueryHonorsDefaultDataset(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, _, err := m.SubmitQuery(ctx, "local", nil,
		queryConfig("CREATE TABLE counters (n INT64); INSERT INTO counters VALUES (7)"))
	require.NoError(t, err)

	cfg := queryConfig("SELECT n FROM counters")
	cfg.Query.DefaultDataset = &bq.DatasetReference{ProjectID: "local", DatasetID: "local"}
	_, result, err := m.SubmitQuery(ctx, "local", nil, cfg)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "7", *result.Rows[0].F[0].Value)
}

func TestSubmitQueryRequiresConfiguration(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.SubmitQuery(context.Background(), "local", nil, nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalid, errs.KindOf(err))
}

func TestSubmitQueryFailureStoresNothing(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, _, err := m.SubmitQuery(ctx, "local", nil, queryConfig("SELEC oops"))
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidQuery, errs.KindOf(err))

	list, err := m.ListJobs(ctx, "local")
	require.NoError(t, err)
	assert.Empty(t, list.Jobs)
}

func TestGetJobMissing(t *testing.T) {
	m := newTestManager(t)
	_, err := m.GetJob(context.Background(), "local", "absent")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}
