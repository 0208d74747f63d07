// Package bridge converts between the engine's column types and row values
// and the BigQuery wire schema/value model.
package bridge

import (
	"fmt"
	"strings"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/errs"
)

// FieldFromEngineType translates an engine column type string (as reported by
// the driver, e.g. "BIGINT", "DECIMAL(18,3)", "STRUCT(a INTEGER)[]") into a
// wire field schema. Unsupported engine types surface as invalid-query errors.
func FieldFromEngineType(name, engineType string) (bq.TableFieldSchema, error) {
	parsed, rest, err := parseType(strings.TrimSpace(engineType))
	if err != nil {
		return bq.TableFieldSchema{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return bq.TableFieldSchema{}, errs.InvalidQuery("unsupported column type %q", engineType)
	}
	field, err := parsed.toField(name)
	if err != nil {
		return bq.TableFieldSchema{}, err
	}
	return field, nil
}

// engineType is a parsed engine column type.
type engineType struct {
	base     string       // upper-cased tag without arguments
	list     bool         // trailing []
	children []engineMember // struct or map members
}

type engineMember struct {
	name string
	typ  engineType
}

func (t engineType) toField(name string) (bq.TableFieldSchema, error) {
	if t.list {
		elem := t
		elem.list = false
		field, err := elem.toField(name)
		if err != nil {
			return bq.TableFieldSchema{}, err
		}
		field.Mode = bq.ModeRepeated
		return field, nil
	}
	field := bq.TableFieldSchema{Name: name, Mode: bq.ModeNullable}
	switch t.base {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "INT", "INT1", "INT2", "INT4", "INT8":
		field.Type = bq.TypeInteger
	case "FLOAT", "FLOAT4", "FLOAT8", "REAL", "DOUBLE", "DECIMAL", "NUMERIC":
		field.Type = bq.TypeFloat
	case "VARCHAR", "TEXT", "STRING", "CHAR", "BPCHAR", "UUID", "ENUM":
		field.Type = bq.TypeString
	case "BLOB", "BYTEA", "BYTES", "VARBINARY", "BINARY":
		field.Type = bq.TypeBytes
	case "BOOLEAN", "BOOL", "LOGICAL":
		field.Type = bq.TypeBoolean
	case "DATE":
		field.Type = bq.TypeDate
	case "TIME", "TIME WITH TIME ZONE":
		field.Type = bq.TypeTime
	case "TIMESTAMP", "DATETIME", "TIMESTAMP WITH TIME ZONE", "TIMESTAMPTZ",
		"TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		field.Type = bq.TypeTimestamp
	case "JSON":
		field.Type = bq.TypeJSON
	case "STRUCT", "MAP":
		field.Type = bq.TypeRecord
		for _, child := range t.children {
			sub, err := child.typ.toField(child.name)
			if err != nil {
				return bq.TableFieldSchema{}, err
			}
			field.Fields = append(field.Fields, sub)
		}
	default:
		return bq.TableFieldSchema{}, errs.InvalidQuery("unsupported column type %q", t.base)
	}
	return field, nil
}

// parseType consumes one type expression from s and returns the remainder.
// Handles nested STRUCT(...), MAP(...), DECIMAL(p,s) and trailing [].
func parseType(s string) (engineType, string, error) {
	var t engineType
	s = strings.TrimLeft(s, " ")
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '(' || c == ',' || c == ')' || c == '[' {
			break
		}
		i++
	}
	t.base = strings.ToUpper(strings.TrimSpace(s[:i]))
	s = s[i:]
	if strings.HasPrefix(s, "(") {
		switch t.base {
		case "STRUCT":
			rest, children, err := parseMembers(s[1:], true)
			if err != nil {
				return t, "", err
			}
			t.children = children
			s = rest
		case "MAP":
			rest, children, err := parseMembers(s[1:], false)
			if err != nil {
				return t, "", err
			}
			// Maps surface as key/value records.
			names := []string{"key", "value"}
			for i := range children {
				if i < len(names) {
					children[i].name = names[i]
				}
			}
			t.children = children
			s = rest
		default:
			// Scalar arguments such as DECIMAL(18,3); skip to the closing paren.
			depth := 1
			j := 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth != 0 {
				return t, "", errs.InvalidQuery("malformed column type %q", s)
			}
			s = s[j:]
		}
	}
	for strings.HasPrefix(strings.TrimLeft(s, " "), "[]") {
		s = strings.TrimLeft(s, " ")[2:]
		t = engineType{base: "LIST", list: true, children: []engineMember{{typ: t}}}
		// Collapse the wrapper: list-of on the element type itself.
		inner := t.children[0].typ
		inner.list = true
		if inner.base == "LIST" {
			// Nested lists flatten to repeated of the innermost element.
			inner = inner.children[0].typ
			inner.list = true
		}
		t = inner
	}
	// WITH TIME ZONE suffixes arrive after the base word.
	trimmed := strings.TrimLeft(s, " ")
	if strings.HasPrefix(strings.ToUpper(trimmed), "WITH TIME ZONE") {
		t.base += " WITH TIME ZONE"
		s = trimmed[len("WITH TIME ZONE"):]
	}
	return t, s, nil
}

// parseMembers parses "name TYPE, name TYPE)" (named=true) or "TYPE, TYPE)".
func parseMembers(s string, named bool) (string, []engineMember, error) {
	var members []engineMember
	for {
		s = strings.TrimLeft(s, " ")
		if strings.HasPrefix(s, ")") {
			return s[1:], members, nil
		}
		var m engineMember
		if named {
			name, rest, err := parseMemberName(s)
			if err != nil {
				return "", nil, err
			}
			m.name = name
			s = rest
		}
		typ, rest, err := parseType(s)
		if err != nil {
			return "", nil, err
		}
		m.typ = typ
		members = append(members, m)
		s = strings.TrimLeft(rest, " ")
		switch {
		case strings.HasPrefix(s, ","):
			s = s[1:]
		case strings.HasPrefix(s, ")"):
			return s[1:], members, nil
		default:
			return "", nil, errs.InvalidQuery("malformed struct type near %q", s)
		}
	}
}

func parseMemberName(s string) (string, string, error) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return "", "", errs.InvalidQuery("malformed struct member")
	}
	if s[0] == '"' {
		end := strings.Index(s[1:], `"`)
		if end < 0 {
			return "", "", errs.InvalidQuery("unterminated quoted struct member in %q", s)
		}
		return s[1 : 1+end], s[end+2:], nil
	}
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return "", "", errs.InvalidQuery("malformed struct member %q", s)
	}
	return s[:i], s[i+1:], nil
}

// SchemaFromEngineColumns maps column names and engine type strings to a wire
// schema. Columns with no reported type get their schema inferred from the
// result values instead.
func SchemaFromEngineColumns(names, engineTypes []string, rows [][]any) (*bq.TableSchema, error) {
	schema := &bq.TableSchema{}
	for i, name := range names {
		typ := ""
		if i < len(engineTypes) {
			typ = engineTypes[i]
		}
		if typ == "" {
			values := make([]any, 0, len(rows))
			for _, row := range rows {
				if i < len(row) {
					values = append(values, row[i])
				}
			}
			schema.Fields = append(schema.Fields, InferField(name, values))
			continue
		}
		field, err := FieldFromEngineType(name, typ)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		schema.Fields = append(schema.Fields, field)
	}
	return schema, nil
}
