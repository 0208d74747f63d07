package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/engine"
	"github.com/novucs/local-bigquery/internal/errs"
)

func newTestStore(t *testing.T) *Store {
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
	return NewStore(e)
}

func createDataset(t *testing.T, s *Store, project, dataset string) *bq.Dataset {
	t.Helper()
	d, err := s.CreateDataset(context.Background(), project, &bq.Dataset{
		DatasetReference: &bq.DatasetReference{DatasetID: dataset},
	})
	require.NoError(t, err)
	return d
}

func TestCreateAndGetDataset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d, err := s.CreateDataset(ctx, "local", &bq.Dataset{
		DatasetReference: &bq.DatasetReference{DatasetID: "sales"},
		FriendlyName:     bq.Ptr("Sales"),
	})
	require.NoError(t, err)
	assert.Equal(t, "local:sales", *d.ID)

	got, err := s.GetDataset(ctx, "local", "sales")
	require.NoError(t, err)
	require.NotNil(t, got.FriendlyName)
	assert.Equal(t, "Sales", *got.FriendlyName)
	assert.Equal(t, "local", got.DatasetReference.ProjectID)
}

func TestCreateDatasetDuplicate(t *testing.T) {
	s := newTestStore(t)
	createDataset(t, s, "local", "dup")

	_, err := s.CreateDataset(context.Background(), "local", &bq.Dataset{
		DatasetReference: &bq.DatasetReference{DatasetID: "dup"},
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindAlreadyExists, errs.KindOf(err))
}

func TestDatasetTimestampsAreEpochSeconds(t *testing.T) {
	s := newTestStore(t)
	d := createDataset(t, s, "local", "stamped")

	require.NotNil(t, d.CreationTime)
	require.NotNil(t, d.LastModifiedTime)
	created, err := strconv.ParseInt(*d.CreationTime, 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), created, 120)
	modified, err := strconv.ParseInt(*d.LastModifiedTime, 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), modified, 120)
}

func TestGetDatasetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetDataset(context.Background(), "local", "nope")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestGetDatasetSynthesizesFromSchema(t *testing.T) {
	// The bootstrapped default dataset exists only as an engine schema until
	// someone asks for its metadata.
	s := newTestStore(t)
	d, err := s.GetDataset(context.Background(), "local", "local")
	require.NoError(t, err)
	assert.Equal(t, "local:local", *d.ID)
	require.NotNil(t, d.CreationTime)
	_, err = strconv.ParseInt(*d.CreationTime, 10, 64)
	assert.NoError(t, err)
}

func TestDeleteDataset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDataset(t, s, "local", "gone")

	require.NoError(t, s.DeleteDataset(ctx, "local", "gone"))
	_, err := s.GetDataset(ctx, "local", "gone")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	err = s.DeleteDataset(ctx, "local", "gone")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestPatchDatasetMergesFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateDataset(ctx, "local", &bq.Dataset{
		DatasetReference: &bq.DatasetReference{DatasetID: "patched"},
		FriendlyName:     bq.Ptr("before"),
		Description:      bq.Ptr("keep me"),
	})
	require.NoError(t, err)

	d, err := s.PatchDataset(ctx, "local", "patched", json.RawMessage(`{"friendlyName":"after"}`))
	require.NoError(t, err)
	assert.Equal(t, "after", *d.FriendlyName)
	require.NotNil(t, d.Description)
	assert.Equal(t, "keep me", *d.Description)
}

func TestListDatasets(t *testing.T) {
	s := newTestStore(t)
	createDataset(t, s, "local", "aaa")
	createDataset(t, s, "local", "bbb")

	list, err := s.ListDatasets(context.Background(), "local")
	require.NoError(t, err)
	var ids []string
	for _, entry := range list.Datasets {
		ids = append(ids, entry.DatasetReference.DatasetID)
	}
	assert.Contains(t, ids, "aaa")
	assert.Contains(t, ids, "bbb")
	assert.Contains(t, ids, "local")
}

func TestCreateTableReadsSchemaBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDataset(t, s, "local", "shop")

	_, err := s.CreateTable(ctx, "local", "shop", &bq.Table{
		TableReference: &bq.TableReference{TableID: "orders"},
		Schema: &bq.TableSchema{Fields: []bq.TableFieldSchema{
			{Name: "id", Type: bq.TypeInteger, Mode: bq.ModeRequired},
			{Name: "note", Type: bq.TypeString, Mode: bq.ModeNullable},
		}},
	})
	require.NoError(t, err)

	got, err := s.GetTable(ctx, "local", "shop", "orders")
	require.NoError(t, err)
	require.Len(t, got.Schema.Fields, 2)
	assert.Equal(t, "id", got.Schema.Fields[0].Name)
	assert.Equal(t, bq.TypeInteger, got.Schema.Fields[0].Type)
	assert.Equal(t, "note", got.Schema.Fields[1].Name)
	assert.Equal(t, bq.TypeString, got.Schema.Fields[1].Type)

	names, err := s.ListTableNames("local", "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, names)
}

func TestGetTableMissing(t *testing.T) {
	s := newTestStore(t)
	createDataset(t, s, "local", "empty")
	_, err := s.GetTable(context.Background(), "local", "empty", "nope")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestInsertAllFillsMissingKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDataset(t, s, "local", "stream")
	_, err := s.CreateTable(ctx, "local", "stream", &bq.Table{
		TableReference: &bq.TableReference{TableID: "events"},
		Schema: &bq.TableSchema{Fields: []bq.TableFieldSchema{
			{Name: "a", Type: bq.TypeInteger},
			{Name: "b", Type: bq.TypeString},
		}},
	})
	require.NoError(t, err)

	resp, err := s.InsertAll(ctx, "local", "stream", "events", &bq.TableDataInsertAllRequest{
		Rows: []bq.InsertAllRow{
			{JSON: map[string]any{"a": 1}},
			{JSON: map[string]any{"b": "x"}},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.InsertErrors)

	sess, err := s.Engine().Session(ctx, "local", "stream")
	require.NoError(t, err)
	defer sess.Close()
	res, err := sess.Query(ctx, `SELECT a, b FROM "local"."stream"."events" ORDER BY a NULLS LAST`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.EqualValues(t, 1, res.Rows[0][0])
	assert.Nil(t, res.Rows[0][1])
	assert.Nil(t, res.Rows[1][0])
	assert.Equal(t, "x", res.Rows[1][1])
}

func TestJobRecordLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job := &bq.Job{
		Kind:         bq.Ptr("bigquery#job"),
		JobReference: &bq.JobReference{ProjectID: "local", JobID: "job-1"},
		Status:       &bq.JobStatus{State: bq.JobStateDone},
	}
	require.NoError(t, s.InsertJob(ctx, "local", job))
	assert.Equal(t, errs.KindAlreadyExists, errs.KindOf(s.InsertJob(ctx, "local", job)))

	got, err := s.GetJob(ctx, "local", "job-1")
	require.NoError(t, err)
	assert.Equal(t, bq.JobStateDone, got.Status.State)

	result := &bq.GetQueryResultsResponse{
		JobReference: job.JobReference,
		JobComplete:  bq.Ptr(true),
		TotalRows:    bq.Ptr("1"),
	}
	require.NoError(t, s.SaveQueryResult(ctx, "local", "job-1", result))
	stored, err := s.GetQueryResult(ctx, "local", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "1", *stored.TotalRows)

	jobs, err := s.ListJobs(ctx, "local")
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, s.DeleteJob(ctx, "local", "job-1"))
	_, err = s.GetJob(ctx, "local", "job-1")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(s.DeleteJob(ctx, "local", "job-1")))
}
