package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
)

func field(name, typ, mode string, children ...bq.TableFieldSchema) bq.TableFieldSchema {
	return bq.TableFieldSchema{Name: name, Type: typ, Mode: mode, Fields: children}
}

func TestValueToCellScalars(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)
	tests := []struct {
		name  string
		value any
		field bq.TableFieldSchema
		want  string
	}{
		{"bool true", true, field("f", bq.TypeBoolean, bq.ModeNullable), "true"},
		{"bool false", false, field("f", bq.TypeBoolean, bq.ModeNullable), "false"},
		{"int", int64(42), field("f", bq.TypeInteger, bq.ModeNullable), "42"},
		{"float", 2.5, field("f", bq.TypeFloat, bq.ModeNullable), "2.5"},
		{"string", "hi", field("f", bq.TypeString, bq.ModeNullable), "hi"},
		{"timestamp micros", ts, field("f", bq.TypeTimestamp, bq.ModeNullable), "1709296245123456"},
		{"date", ts, field("f", bq.TypeDate, bq.ModeNullable), "2024-03-01"},
		{"time", ts, field("f", bq.TypeTime, bq.ModeNullable), "12:30:45.123456"},
		{"bytes base64", []byte("abc"), field("f", bq.TypeBytes, bq.ModeNullable), "YWJj"},
		{"json compacted", `{"a": 1}`, field("f", bq.TypeJSON, bq.ModeNullable), `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := ValueToCell(tt.value, tt.field)
			require.NotNil(t, cell.Value)
			assert.Equal(t, tt.want, *cell.Value)
		})
	}
}

func TestValueToCellNull(t *testing.T) {
	cell := ValueToCell(nil, field("f", bq.TypeString, bq.ModeNullable))
	assert.True(t, cell.IsNull())
}

func TestValueToCellRepeated(t *testing.T) {
	cell := ValueToCell([]any{int64(1), int64(2)}, field("f", bq.TypeInteger, bq.ModeRepeated))
	require.Len(t, cell.Array, 2)
	assert.Equal(t, "1", *cell.Array[0].Value)
	assert.Equal(t, "2", *cell.Array[1].Value)
}

func TestValueToCellRecordOrder(t *testing.T) {
	rec := field("person", bq.TypeRecord, bq.ModeNullable,
		field("name", bq.TypeString, bq.ModeNullable),
		field("age", bq.TypeInteger, bq.ModeNullable),
	)
	cell := ValueToCell(map[string]any{"age": int64(30), "name": "ada"}, rec)
	require.NotNil(t, cell.Record)
	require.Len(t, cell.Record.F, 2)
	assert.Equal(t, "ada", *cell.Record.F[0].Value)
	assert.Equal(t, "30", *cell.Record.F[1].Value)
}

func TestValueToCellRecordMissingMember(t *testing.T) {
	rec := field("r", bq.TypeRecord, bq.ModeNullable,
		field("a", bq.TypeString, bq.ModeNullable),
		field("b", bq.TypeString, bq.ModeNullable),
	)
	cell := ValueToCell(map[string]any{"a": "x"}, rec)
	require.NotNil(t, cell.Record)
	assert.Equal(t, "x", *cell.Record.F[0].Value)
	assert.True(t, cell.Record.F[1].IsNull())
}

func TestRowsToWire(t *testing.T) {
	schema := &bq.TableSchema{Fields: []bq.TableFieldSchema{
		field("id", bq.TypeInteger, bq.ModeNullable),
		field("name", bq.TypeString, bq.ModeNullable),
	}}
	rows := RowsToWire(schema, [][]any{
		{int64(1), "alpha"},
		{int64(2), nil},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", *rows[0].F[1].Value)
	assert.True(t, rows[1].F[1].IsNull())
}
