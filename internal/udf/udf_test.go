package udf

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/sqlt"
)

func declare(t *testing.T, source string) *sqlt.UDFDecl {
	t.Helper()
	tokens, err := sqlt.Lex(source)
	require.NoError(t, err)
	decl, ok, err := sqlt.ParseUDFDecl(tokens)
	require.NoError(t, err)
	require.True(t, ok)
	return decl
}

func TestCallReturnsNumber(t *testing.T) {
	decl := declare(t, `CREATE TEMP FUNCTION double_it(x INT64) RETURNS INT64 LANGUAGE js AS "return x * 2;"`)
	fn := New(decl)
	got, err := fn.call([]driver.Value{int64(21)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestCallReturnsString(t *testing.T) {
	decl := declare(t, `CREATE FUNCTION greet(name STRING) RETURNS STRING LANGUAGE js AS "return 'hi ' + name;"`)
	fn := New(decl)
	got, err := fn.call([]driver.Value{"ada"})
	require.NoError(t, err)
	assert.Equal(t, "hi ada", got)
}

func TestCallNullResult(t *testing.T) {
	decl := declare(t, `CREATE FUNCTION nothing(x STRING) RETURNS STRING LANGUAGE js AS "return null;"`)
	fn := New(decl)
	got, err := fn.call([]driver.Value{"x"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCallJSError(t *testing.T) {
	decl := declare(t, `CREATE FUNCTION boom(x STRING) RETURNS STRING LANGUAGE js AS "throw new Error('bad');"`)
	fn := New(decl)
	_, err := fn.call([]driver.Value{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCallMultipleArgs(t *testing.T) {
	decl := declare(t, `CREATE FUNCTION mix(a INT64, b FLOAT64, c BOOL) RETURNS FLOAT64 LANGUAGE js AS "return c ? a + b : 0;"`)
	fn := New(decl)
	got, err := fn.call([]driver.Value{int64(1), 0.5, true})
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)
}
