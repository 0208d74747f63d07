package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(Config{
		DataDir:         t.TempDir(),
		DefaultProject:  "local",
		InternalProject: "bigquery-internal",
		DefaultDataset:  "local",
		InternalDataset: "meta",
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestMetadataDatasetUsesInternalDataset(t *testing.T) {
	e := openTestEngine(t)
	assert.Equal(t, "bigquery-internal", e.InternalProject())
	assert.Equal(t, "meta", e.InternalDataset())
	assert.Equal(t, `"bigquery-internal"."meta"`, e.MetadataDataset())
}

func TestBootstrapCreatesMetadataTables(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()
	sess, err := e.Session(ctx, "bigquery-internal", "meta")
	require.NoError(t, err)
	defer sess.Close()

	for _, table := range []string{"datasets", "tables", "jobs", "query_results"} {
		res, err := sess.Query(ctx, `SELECT COUNT(*) FROM "bigquery-internal"."meta".`+`"`+table+`"`)
		require.NoError(t, err, table)
		require.Len(t, res.Rows, 1, table)
		assert.EqualValues(t, 0, res.Rows[0][0], table)
	}
}

func TestSessionQueryRoundtrip(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()
	sess, err := e.Session(ctx, "local", "local")
	require.NoError(t, err)
	defer sess.Close()

	res, err := sess.Query(ctx, "SELECT 42 AS answer")
	require.NoError(t, err)
	assert.Equal(t, []string{"answer"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, 42, res.Rows[0][0])
}

func TestEnsureProjectCreatesStorage(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()
	sess, err := e.Session(ctx, "local", "local")
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.EnsureProject(ctx, "other"))
	projects, err := e.Projects()
	require.NoError(t, err)
	assert.Contains(t, projects, "local")
	assert.Contains(t, projects, "other")
	assert.NotContains(t, projects, "bigquery-internal")
}

func TestResetClearsUserData(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	sess, err := e.Session(ctx, "local", "local")
	require.NoError(t, err)
	_, err = sess.Exec(ctx, `CREATE TABLE "local"."local"."scratch" (v BIGINT)`)
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	require.NoError(t, e.Reset(ctx))

	sess, err = e.Session(ctx, "local", "local")
	require.NoError(t, err)
	defer sess.Close()
	res, err := sess.Query(ctx,
		`SELECT COUNT(*) FROM duckdb_tables() WHERE database_name = 'local' AND table_name = 'scratch'`)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Rows[0][0])
}
