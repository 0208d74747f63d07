package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
)

func TestFieldFromEngineTypeScalars(t *testing.T) {
	tests := []struct {
		engineType string
		wantType   string
	}{
		{"BIGINT", bq.TypeInteger},
		{"INTEGER", bq.TypeInteger},
		{"HUGEINT", bq.TypeInteger},
		{"DOUBLE", bq.TypeFloat},
		{"DECIMAL(18,3)", bq.TypeFloat},
		{"VARCHAR", bq.TypeString},
		{"UUID", bq.TypeString},
		{"BLOB", bq.TypeBytes},
		{"BOOLEAN", bq.TypeBoolean},
		{"DATE", bq.TypeDate},
		{"TIME", bq.TypeTime},
		{"TIMESTAMP", bq.TypeTimestamp},
		{"TIMESTAMP WITH TIME ZONE", bq.TypeTimestamp},
		{"TIMESTAMP_NS", bq.TypeTimestamp},
		{"JSON", bq.TypeJSON},
	}
	for _, tt := range tests {
		field, err := FieldFromEngineType("c", tt.engineType)
		require.NoError(t, err, tt.engineType)
		assert.Equal(t, tt.wantType, field.Type, tt.engineType)
		assert.Equal(t, bq.ModeNullable, field.Mode, tt.engineType)
	}
}

func TestFieldFromEngineTypeList(t *testing.T) {
	field, err := FieldFromEngineType("tags", "VARCHAR[]")
	require.NoError(t, err)
	assert.Equal(t, bq.TypeString, field.Type)
	assert.Equal(t, bq.ModeRepeated, field.Mode)
}

func TestFieldFromEngineTypeStruct(t *testing.T) {
	field, err := FieldFromEngineType("person", `STRUCT(name VARCHAR, age BIGINT)`)
	require.NoError(t, err)
	assert.Equal(t, bq.TypeRecord, field.Type)
	require.Len(t, field.Fields, 2)
	assert.Equal(t, "name", field.Fields[0].Name)
	assert.Equal(t, bq.TypeString, field.Fields[0].Type)
	assert.Equal(t, "age", field.Fields[1].Name)
	assert.Equal(t, bq.TypeInteger, field.Fields[1].Type)
}

func TestFieldFromEngineTypeNested(t *testing.T) {
	field, err := FieldFromEngineType("rec", `STRUCT("outer key" STRUCT(inner DECIMAL(10,2))[], flag BOOLEAN)`)
	require.NoError(t, err)
	require.Len(t, field.Fields, 2)
	outer := field.Fields[0]
	assert.Equal(t, "outer key", outer.Name)
	assert.Equal(t, bq.TypeRecord, outer.Type)
	assert.Equal(t, bq.ModeRepeated, outer.Mode)
	require.Len(t, outer.Fields, 1)
	assert.Equal(t, bq.TypeFloat, outer.Fields[0].Type)
	assert.Equal(t, bq.TypeBoolean, field.Fields[1].Type)
}

func TestFieldFromEngineTypeMap(t *testing.T) {
	field, err := FieldFromEngineType("m", "MAP(VARCHAR, BIGINT)")
	require.NoError(t, err)
	assert.Equal(t, bq.TypeRecord, field.Type)
	require.Len(t, field.Fields, 2)
	assert.Equal(t, "key", field.Fields[0].Name)
	assert.Equal(t, "value", field.Fields[1].Name)
}

func TestFieldFromEngineTypeUnsupported(t *testing.T) {
	_, err := FieldFromEngineType("c", "GIBBERISH_TYPE")
	require.Error(t, err)
}

func TestSchemaFromEngineColumns(t *testing.T) {
	schema, err := SchemaFromEngineColumns(
		[]string{"id", "name", "mystery"},
		[]string{"BIGINT", "VARCHAR", ""},
		[][]any{
			{int64(1), "a", int64(10)},
			{int64(2), "b", int64(20)},
		},
	)
	require.NoError(t, err)
	require.Len(t, schema.Fields, 3)
	assert.Equal(t, bq.TypeInteger, schema.Fields[0].Type)
	assert.Equal(t, bq.TypeString, schema.Fields[1].Type)
	// Untyped columns get their schema inferred from the result values.
	assert.Equal(t, bq.TypeInteger, schema.Fields[2].Type)
	assert.Equal(t, bq.ModeRequired, schema.Fields[2].Mode)
}

func TestSchemaFromEngineColumnsUntypedNoRows(t *testing.T) {
	schema, err := SchemaFromEngineColumns([]string{"mystery"}, []string{""}, nil)
	require.NoError(t, err)
	require.Len(t, schema.Fields, 1)
	assert.Equal(t, bq.TypeString, schema.Fields[0].Type)
	assert.Equal(t, bq.ModeNullable, schema.Fields[0].Mode)
}
