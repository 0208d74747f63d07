package bridge

import (
	"database/sql"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/errs"
)

// timestampLayouts are accepted parameter timestamp spellings, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// ParametersToArgs converts wire query parameters into engine bind arguments.
// Named parameters keep their names; positional parameters are assigned
// param0..paramN in request order, matching the rewriter's placeholder names.
func ParametersToArgs(params []bq.QueryParameter) ([]any, error) {
	args := make([]any, 0, len(params))
	for i, p := range params {
		name := "param" + strconv.Itoa(i)
		if p.Name != nil && *p.Name != "" {
			name = *p.Name
		}
		value, err := parameterValue(p.ParameterType, p.ParameterValue)
		if err != nil {
			return nil, errs.InvalidQuery("parameter %s: %v", name, err)
		}
		args = append(args, sql.Named(name, value))
	}
	return args, nil
}

func parameterValue(typ *bq.QueryParameterType, val *bq.QueryParameterValue) (any, error) {
	if val == nil {
		return nil, nil
	}
	kind := ""
	if typ != nil {
		kind = strings.ToUpper(typ.Type)
	}
	switch kind {
	case "ARRAY":
		var elemType *bq.QueryParameterType
		if typ != nil {
			elemType = typ.ArrayType
		}
		items := make([]any, 0, len(val.ArrayValues))
		for i := range val.ArrayValues {
			item, err := parameterValue(elemType, &val.ArrayValues[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case "STRUCT", "RECORD":
		members := map[string]any{}
		for _, ft := range typ.StructTypes {
			sub, ok := val.StructValues[ft.Name]
			if !ok {
				members[ft.Name] = nil
				continue
			}
			fieldType := ft.Type
			converted, err := parameterValue(&fieldType, &sub)
			if err != nil {
				return nil, err
			}
			members[ft.Name] = converted
		}
		return members, nil
	case "RANGE":
		var elemType *bq.QueryParameterType
		if typ != nil {
			elemType = typ.RangeElementType
		}
		members := map[string]any{"start": nil, "end": nil}
		if val.RangeValue != nil {
			if val.RangeValue.Start != nil {
				start, err := parameterValue(elemType, val.RangeValue.Start)
				if err != nil {
					return nil, err
				}
				members["start"] = start
			}
			if val.RangeValue.End != nil {
				end, err := parameterValue(elemType, val.RangeValue.End)
				if err != nil {
					return nil, err
				}
				members["end"] = end
			}
		}
		return members, nil
	}
	if val.Value == nil {
		return nil, nil
	}
	return scalarParameter(kind, *val.Value)
}

func scalarParameter(kind, raw string) (any, error) {
	switch kind {
	case "INT64", "INTEGER":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "FLOAT64", "FLOAT", "NUMERIC", "BIGNUMERIC", "DECIMAL", "BIGDECIMAL":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "BOOL", "BOOLEAN":
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, err
		}
		return b, nil
	case "BYTES":
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "DATE":
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "TIMESTAMP", "DATETIME":
		return parseTimestamp(raw)
	default:
		// STRING, TIME, JSON, GEOGRAPHY and unknown types bind as text.
		return raw, nil
	}
}

// parseTimestamp accepts the spellings BigQuery clients send; values without
// an explicit offset are taken as UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), " UTC")
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
