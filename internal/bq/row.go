package bq

import (
	"bytes"
	"encoding/json"
)

// TableRow is one result row in the BigQuery "f/v" wire format.
type TableRow struct {
	F []TableCell `json:"f,omitempty"`
}

// TableCell holds one cell value. On the wire `v` is one of: omitted (NULL),
// a string scalar, a nested row object, or an array of cells.
type TableCell struct {
	// Exactly one of the following is set; all nil means NULL.
	Value  *string
	Record *TableRow
	Array  []TableCell
}

// NullCell is a cell whose `v` key is omitted entirely.
func NullCell() TableCell { return TableCell{} }

// StringCell wraps a scalar string value.
func StringCell(s string) TableCell { return TableCell{Value: &s} }

// RecordCell wraps a nested row.
func RecordCell(row TableRow) TableCell { return TableCell{Record: &row} }

// ArrayCell wraps repeated values.
func ArrayCell(cells []TableCell) TableCell { return TableCell{Array: cells} }

// IsNull reports whether the cell carries no value.
func (c TableCell) IsNull() bool {
	return c.Value == nil && c.Record == nil && c.Array == nil
}

func (c TableCell) MarshalJSON() ([]byte, error) {
	switch {
	case c.Value != nil:
		return json.Marshal(struct {
			V string `json:"v"`
		}{V: *c.Value})
	case c.Record != nil:
		return json.Marshal(struct {
			V *TableRow `json:"v"`
		}{V: c.Record})
	case c.Array != nil:
		return json.Marshal(struct {
			V []TableCell `json:"v"`
		}{V: c.Array})
	default:
		return []byte("{}"), nil
	}
}

func (c *TableCell) UnmarshalJSON(data []byte) error {
	var probe struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	raw := bytes.TrimSpace(probe.V)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*c = TableCell{}
		return nil
	}
	switch raw[0] {
	case '[':
		var cells []TableCell
		if err := json.Unmarshal(raw, &cells); err != nil {
			return err
		}
		*c = TableCell{Array: cells}
	case '{':
		var row TableRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return err
		}
		*c = TableCell{Record: &row}
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*c = TableCell{Value: &s}
	}
	return nil
}
