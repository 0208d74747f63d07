package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
)

func fieldByName(t *testing.T, schema *bq.TableSchema, name string) bq.TableFieldSchema {
	t.Helper()
	for _, f := range schema.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not inferred", name)
	return bq.TableFieldSchema{}
}

func TestInferSchemaModes(t *testing.T) {
	schema := InferSchema(
		[]string{"id", "note"},
		[][]any{
			{int64(1), "a"},
			{int64(2), nil},
			{int64(3), "c"},
		},
	)
	require.Len(t, schema.Fields, 2)
	id := fieldByName(t, schema, "id")
	assert.Equal(t, bq.TypeInteger, id.Type)
	assert.Equal(t, bq.ModeRequired, id.Mode)
	note := fieldByName(t, schema, "note")
	assert.Equal(t, bq.TypeString, note.Type)
	assert.Equal(t, bq.ModeNullable, note.Mode)
}

func TestInferSchemaPreservesColumnOrder(t *testing.T) {
	schema := InferSchema(
		[]string{"z", "a"},
		[][]any{{int64(1), "x"}},
	)
	require.Len(t, schema.Fields, 2)
	assert.Equal(t, "z", schema.Fields[0].Name)
	assert.Equal(t, "a", schema.Fields[1].Name)
}

func TestInferFieldNumericWidening(t *testing.T) {
	field := InferField("n", []any{float64(1), float64(2.5)})
	assert.Equal(t, bq.TypeFloat, field.Type)
}

func TestInferFieldMixedFallsBackToString(t *testing.T) {
	field := InferField("x", []any{int64(1), true})
	assert.Equal(t, bq.TypeString, field.Type)
}

func TestInferFieldNoValues(t *testing.T) {
	field := InferField("empty", nil)
	assert.Equal(t, bq.TypeString, field.Type)
	assert.Equal(t, bq.ModeNullable, field.Mode)
}

func TestInferFieldRepeated(t *testing.T) {
	field := InferField("tags", []any{[]any{"a", "b"}})
	assert.Equal(t, bq.TypeString, field.Type)
	assert.Equal(t, bq.ModeRepeated, field.Mode)
}

func TestInferFieldRecord(t *testing.T) {
	field := InferField("person", []any{
		map[string]any{"name": "ada", "age": float64(30)},
		map[string]any{"name": "bob"},
	})
	require.Equal(t, bq.TypeRecord, field.Type)
	sub := &bq.TableSchema{Fields: field.Fields}
	assert.Equal(t, bq.TypeString, fieldByName(t, sub, "name").Type)
	assert.Equal(t, bq.TypeInteger, fieldByName(t, sub, "age").Type)
}
