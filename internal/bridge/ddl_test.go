package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
)

func TestFieldToEngineType(t *testing.T) {
	tests := []struct {
		field bq.TableFieldSchema
		want  string
	}{
		{field("s", bq.TypeString, bq.ModeNullable), "VARCHAR"},
		{field("i", "INT64", bq.ModeNullable), "BIGINT"},
		{field("f", "FLOAT64", bq.ModeNullable), "DOUBLE"},
		{field("n", bq.TypeNumeric, bq.ModeNullable), "DECIMAL(38,9)"},
		{field("bn", bq.TypeBigNumeric, bq.ModeNullable), "DOUBLE"},
		{field("b", "BOOL", bq.ModeNullable), "BOOLEAN"},
		{field("ts", bq.TypeTimestamp, bq.ModeNullable), "TIMESTAMPTZ"},
		{field("dt", bq.TypeDatetime, bq.ModeNullable), "TIMESTAMP"},
		{field("d", bq.TypeDate, bq.ModeNullable), "DATE"},
		{field("g", bq.TypeGeography, bq.ModeNullable), "VARCHAR"},
		{field("j", bq.TypeJSON, bq.ModeNullable), "JSON"},
		{field("by", bq.TypeBytes, bq.ModeNullable), "BLOB"},
		{field("r", bq.TypeString, bq.ModeRepeated), "VARCHAR[]"},
	}
	for _, tt := range tests {
		got, err := FieldToEngineType(tt.field)
		require.NoError(t, err, tt.field.Name)
		assert.Equal(t, tt.want, got, tt.field.Name)
	}
}

func TestFieldToEngineTypeRecord(t *testing.T) {
	got, err := FieldToEngineType(field("person", "STRUCT", bq.ModeRepeated,
		field("name", bq.TypeString, bq.ModeNullable),
		field("age", "INT64", bq.ModeNullable),
	))
	require.NoError(t, err)
	assert.Equal(t, `STRUCT("name" VARCHAR, "age" BIGINT)[]`, got)
}

func TestFieldToEngineTypeRange(t *testing.T) {
	f := field("span", bq.TypeRange, bq.ModeNullable)
	f.RangeElementType = &bq.RangeElementType{Type: bq.TypeTimestamp}
	got, err := FieldToEngineType(f)
	require.NoError(t, err)
	assert.Equal(t, `STRUCT("start" TIMESTAMPTZ, "end" TIMESTAMPTZ)`, got)
}

func TestSchemaToColumnDefs(t *testing.T) {
	schema := &bq.TableSchema{Fields: []bq.TableFieldSchema{
		field("id", "INT64", bq.ModeRequired),
		field("name", bq.TypeString, bq.ModeNullable),
	}}
	got, err := SchemaToColumnDefs(schema)
	require.NoError(t, err)
	assert.Equal(t, `"id" BIGINT NOT NULL, "name" VARCHAR`, got)
}

func TestSchemaToColumnDefsEmpty(t *testing.T) {
	_, err := SchemaToColumnDefs(&bq.TableSchema{})
	require.Error(t, err)
}

func TestNormalizeRows(t *testing.T) {
	keys, rows := NormalizeRows([]map[string]any{
		{"b": 1, "a": "x"},
		{"c": true},
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0]["c"])
	assert.Nil(t, rows[1]["a"])
	assert.Equal(t, true, rows[1]["c"])
}
