package bridge

import (
	"sort"
	"strings"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/errs"
)

// FieldToEngineType renders the engine column type for a wire field,
// including repeated-mode list suffixes and nested record members.
func FieldToEngineType(field bq.TableFieldSchema) (string, error) {
	base, err := baseEngineType(field)
	if err != nil {
		return "", err
	}
	if field.Mode == bq.ModeRepeated {
		base += "[]"
	}
	return base, nil
}

func baseEngineType(field bq.TableFieldSchema) (string, error) {
	switch bq.CanonicalType(field.Type) {
	case bq.TypeString, bq.TypeGeography:
		return "VARCHAR", nil
	case bq.TypeInteger:
		return "BIGINT", nil
	case bq.TypeFloat, bq.TypeBigNumeric:
		return "DOUBLE", nil
	case bq.TypeNumeric:
		return "DECIMAL(38,9)", nil
	case bq.TypeBoolean:
		return "BOOLEAN", nil
	case bq.TypeTimestamp:
		return "TIMESTAMPTZ", nil
	case bq.TypeDatetime:
		return "TIMESTAMP", nil
	case bq.TypeDate:
		return "DATE", nil
	case bq.TypeTime:
		return "TIME", nil
	case bq.TypeBytes:
		return "BLOB", nil
	case bq.TypeJSON:
		return "JSON", nil
	case bq.TypeInterval:
		return "INTERVAL", nil
	case bq.TypeRecord:
		return structEngineType(field.Fields)
	case bq.TypeRange:
		elem := bq.TableFieldSchema{Type: bq.TypeDate}
		if field.RangeElementType != nil {
			elem.Type = field.RangeElementType.Type
		}
		elemType, err := baseEngineType(elem)
		if err != nil {
			return "", err
		}
		return `STRUCT("start" ` + elemType + `, "end" ` + elemType + `)`, nil
	default:
		return "", errs.Invalid("unsupported field type %q", field.Type)
	}
}

func structEngineType(fields []bq.TableFieldSchema) (string, error) {
	members := make([]string, 0, len(fields))
	for _, sub := range fields {
		typ, err := FieldToEngineType(sub)
		if err != nil {
			return "", err
		}
		members = append(members, `"`+sub.Name+`" `+typ)
	}
	return "STRUCT(" + strings.Join(members, ", ") + ")", nil
}

// SchemaToColumnDefs renders the column list of a CREATE TABLE statement.
// REQUIRED top-level fields get NOT NULL; nested requiredness is not
// representable and is dropped.
func SchemaToColumnDefs(schema *bq.TableSchema) (string, error) {
	if schema == nil || len(schema.Fields) == 0 {
		return "", errs.Invalid("table schema has no fields")
	}
	defs := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		typ, err := FieldToEngineType(field)
		if err != nil {
			return "", err
		}
		def := `"` + field.Name + `" ` + typ
		if field.Mode == bq.ModeRequired {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return strings.Join(defs, ", "), nil
}

// NormalizeRows computes the union of keys across row maps and fills absent
// keys with nulls so every row binds the same column list. Keys come back
// sorted for a stable statement shape.
func NormalizeRows(rows []map[string]any) ([]string, []map[string]any) {
	keySet := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	filled := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = row[k]
		}
		filled = append(filled, out)
	}
	return keys, filled
}
