package bridge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/novucs/local-bigquery/internal/bq"
)

// decimalValue matches the driver's fixed-point decimal without importing it.
type decimalValue interface {
	Float64() float64
}

// RowsToWire converts scanned engine rows into wire rows shaped by schema.
// Each row is a slice of driver values in column order.
func RowsToWire(schema *bq.TableSchema, rows [][]any) []bq.TableRow {
	out := make([]bq.TableRow, 0, len(rows))
	for _, row := range rows {
		wire := bq.TableRow{F: make([]bq.TableCell, len(schema.Fields))}
		for i, field := range schema.Fields {
			var v any
			if i < len(row) {
				v = row[i]
			}
			wire.F[i] = ValueToCell(v, field)
		}
		out = append(out, wire)
	}
	return out
}

// ValueToCell renders one driver value as a wire cell according to its field
// schema. Nulls become the null cell, repeated fields become array cells, and
// record fields nest child cells in schema order.
func ValueToCell(v any, field bq.TableFieldSchema) bq.TableCell {
	if v == nil {
		return bq.NullCell()
	}
	if field.Mode == bq.ModeRepeated {
		items, ok := v.([]any)
		if !ok {
			items = []any{v}
		}
		elem := field
		elem.Mode = bq.ModeNullable
		cells := make([]bq.TableCell, 0, len(items))
		for _, item := range items {
			cells = append(cells, ValueToCell(item, elem))
		}
		return bq.ArrayCell(cells)
	}
	switch field.Type {
	case bq.TypeRecord:
		return recordCell(v, field)
	case bq.TypeBoolean:
		if b, ok := v.(bool); ok {
			return bq.StringCell(strconv.FormatBool(b))
		}
	case bq.TypeTimestamp, bq.TypeDatetime:
		if t, ok := v.(time.Time); ok {
			return bq.StringCell(strconv.FormatInt(t.UnixMicro(), 10))
		}
	case bq.TypeDate:
		if t, ok := v.(time.Time); ok {
			return bq.StringCell(t.Format("2006-01-02"))
		}
	case bq.TypeTime:
		if t, ok := v.(time.Time); ok {
			return bq.StringCell(t.Format("15:04:05.000000"))
		}
	case bq.TypeBytes:
		if b, ok := v.([]byte); ok {
			return bq.StringCell(base64.StdEncoding.EncodeToString(b))
		}
	case bq.TypeJSON:
		return bq.StringCell(jsonText(v))
	}
	return bq.StringCell(scalarText(v))
}

func recordCell(v any, field bq.TableFieldSchema) bq.TableCell {
	members, ok := v.(map[string]any)
	if !ok {
		return bq.StringCell(scalarText(v))
	}
	cells := make([]bq.TableCell, len(field.Fields))
	for i, sub := range field.Fields {
		cells[i] = ValueToCell(members[sub.Name], sub)
	}
	return bq.RecordCell(bq.TableRow{F: cells})
}

// scalarText formats a driver scalar the way the wire expects: integers and
// floats as decimal text, byte slices as base64, everything else via fmt.
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case *big.Int:
		return t.String()
	case big.Int:
		return t.String()
	case time.Time:
		return strconv.FormatInt(t.UnixMicro(), 10)
	case decimalValue:
		return strconv.FormatFloat(t.Float64(), 'g', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// jsonText renders a JSON-typed value as a compact JSON string. The driver
// usually hands JSON columns back as text already; composite values are
// re-marshalled.
func jsonText(v any) string {
	if s, ok := v.(string); ok {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(s)); err == nil {
			return buf.String()
		}
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
