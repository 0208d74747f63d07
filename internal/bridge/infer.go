package bridge

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/novucs/local-bigquery/internal/bq"
)

// InferSchema derives a wire schema from result rows, one field per column,
// merging each column's value types across all rows. Columns that are never
// null come back REQUIRED; integer and float observations of the same column
// widen to FLOAT; any other disagreement falls back to STRING.
func InferSchema(columns []string, rows [][]any) *bq.TableSchema {
	schema := &bq.TableSchema{}
	for i, name := range columns {
		values := make([]any, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		schema.Fields = append(schema.Fields, InferField(name, values))
	}
	return schema
}

// InferField derives one column's field schema from the values it held.
// Columns with no observed values come back as NULLABLE STRING.
func InferField(name string, values []any) bq.TableFieldSchema {
	rows := make([]map[string]any, len(values))
	for i, v := range values {
		rows[i] = map[string]any{name: v}
	}
	fields := inferFields(rows)
	if len(fields) == 0 {
		return bq.TableFieldSchema{Name: name, Type: bq.TypeString, Mode: bq.ModeNullable}
	}
	return fields[0]
}

func inferFields(rows []map[string]any) []bq.TableFieldSchema {
	type fieldState struct {
		typ      string
		repeated bool
		nullable bool
		seen     int
		records  []map[string]any
	}
	states := map[string]*fieldState{}
	var order []string
	for _, row := range rows {
		for name, value := range row {
			state, ok := states[name]
			if !ok {
				state = &fieldState{}
				states[name] = state
				order = append(order, name)
			}
			state.seen++
			items := []any{value}
			if list, isList := value.([]any); isList {
				state.repeated = true
				items = list
			}
			for _, item := range items {
				if item == nil {
					state.nullable = true
					continue
				}
				typ := inferScalarType(item)
				if rec, isRec := item.(map[string]any); isRec {
					state.records = append(state.records, rec)
				}
				state.typ = mergeType(state.typ, typ)
			}
		}
	}
	sort.Strings(order)
	fields := make([]bq.TableFieldSchema, 0, len(order))
	for _, name := range order {
		state := states[name]
		field := bq.TableFieldSchema{Name: name, Type: state.typ, Mode: bq.ModeNullable}
		if field.Type == "" {
			field.Type = bq.TypeString
		}
		if field.Type == bq.TypeRecord {
			field.Fields = inferFields(state.records)
		}
		switch {
		case state.repeated:
			field.Mode = bq.ModeRepeated
		case !state.nullable && state.seen == len(rows):
			field.Mode = bq.ModeRequired
		}
		fields = append(fields, field)
	}
	return fields
}

func inferScalarType(v any) string {
	switch t := v.(type) {
	case bool:
		return bq.TypeBoolean
	case int, int32, int64:
		return bq.TypeInteger
	case float32:
		return bq.TypeFloat
	case float64:
		// JSON numbers decode as float64; treat whole values as integers.
		if t == float64(int64(t)) {
			return bq.TypeInteger
		}
		return bq.TypeFloat
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return bq.TypeInteger
		}
		return bq.TypeFloat
	case []byte:
		return bq.TypeBytes
	case time.Time:
		return bq.TypeTimestamp
	case map[string]any:
		return bq.TypeRecord
	default:
		return bq.TypeString
	}
}

func mergeType(prev, next string) string {
	switch {
	case prev == "" || prev == next:
		return next
	case prev == bq.TypeInteger && next == bq.TypeFloat,
		prev == bq.TypeFloat && next == bq.TypeInteger:
		return bq.TypeFloat
	default:
		return bq.TypeString
	}
}
