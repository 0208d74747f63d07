package bq

// Field type tags supported by the emulator.
const (
	TypeString     = "STRING"
	TypeBytes      = "BYTES"
	TypeInteger    = "INTEGER"
	TypeFloat      = "FLOAT"
	TypeNumeric    = "NUMERIC"
	TypeBigNumeric = "BIGNUMERIC"
	TypeBoolean    = "BOOLEAN"
	TypeTimestamp  = "TIMESTAMP"
	TypeDate       = "DATE"
	TypeTime       = "TIME"
	TypeDatetime   = "DATETIME"
	TypeGeography  = "GEOGRAPHY"
	TypeJSON       = "JSON"
	TypeRecord     = "RECORD"
	TypeRange      = "RANGE"
	TypeInterval   = "INTERVAL"
)

// Field modes.
const (
	ModeNullable = "NULLABLE"
	ModeRequired = "REQUIRED"
	ModeRepeated = "REPEATED"
)

// CanonicalType resolves BigQuery type aliases to the tags used on the wire
// (INT64->INTEGER, FLOAT64->FLOAT, BOOL->BOOLEAN, STRUCT->RECORD).
func CanonicalType(typ string) string {
	switch typ {
	case "INT64":
		return TypeInteger
	case "FLOAT64":
		return TypeFloat
	case "BOOL":
		return TypeBoolean
	case "STRUCT":
		return TypeRecord
	default:
		return typ
	}
}

// TableSchema describes the ordered fields of a table or result set.
type TableSchema struct {
	Fields []TableFieldSchema `json:"fields,omitempty"`
}

// TableFieldSchema is one field of a schema. RECORD fields nest; RANGE fields
// carry the element type of their bounds.
type TableFieldSchema struct {
	Name             string             `json:"name"`
	Type             string             `json:"type"`
	Mode             string             `json:"mode,omitempty"`
	Description      *string            `json:"description,omitempty"`
	Fields           []TableFieldSchema `json:"fields,omitempty"`
	RangeElementType *RangeElementType  `json:"rangeElementType,omitempty"`
	MaxLength        *string            `json:"maxLength,omitempty"`
	Precision        *string            `json:"precision,omitempty"`
	Scale            *string            `json:"scale,omitempty"`
}

// RangeElementType is the bound type of a RANGE field.
type RangeElementType struct {
	Type string `json:"type"`
}
