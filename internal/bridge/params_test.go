package bridge

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novucs/local-bigquery/internal/bq"
)

func scalarParam(name, typ, value string) bq.QueryParameter {
	p := bq.QueryParameter{
		ParameterType:  &bq.QueryParameterType{Type: typ},
		ParameterValue: &bq.QueryParameterValue{Value: &value},
	}
	if name != "" {
		p.Name = &name
	}
	return p
}

func TestParametersToArgsScalars(t *testing.T) {
	args, err := ParametersToArgs([]bq.QueryParameter{
		scalarParam("count", "INT64", "42"),
		scalarParam("ratio", "FLOAT64", "0.5"),
		scalarParam("ok", "BOOL", "TRUE"),
		scalarParam("label", "STRING", "hello"),
	})
	require.NoError(t, err)
	require.Len(t, args, 4)

	count := args[0].(sql.NamedArg)
	assert.Equal(t, "count", count.Name)
	assert.Equal(t, int64(42), count.Value)
	assert.Equal(t, 0.5, args[1].(sql.NamedArg).Value)
	assert.Equal(t, true, args[2].(sql.NamedArg).Value)
	assert.Equal(t, "hello", args[3].(sql.NamedArg).Value)
}

func TestParametersToArgsPositionalNames(t *testing.T) {
	args, err := ParametersToArgs([]bq.QueryParameter{
		scalarParam("", "STRING", "a"),
		scalarParam("", "STRING", "b"),
	})
	require.NoError(t, err)
	assert.Equal(t, "param0", args[0].(sql.NamedArg).Name)
	assert.Equal(t, "param1", args[1].(sql.NamedArg).Name)
}

func TestParametersToArgsTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-01 12:30:45", time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)},
		{"2024-03-01 12:30:45.123456", time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)},
		{"2024-03-01T12:30:45Z", time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)},
		{"2024-03-01 12:30:45+02:00", time.Date(2024, 3, 1, 12, 30, 45, 0, time.FixedZone("", 2*3600))},
		{"2024-03-01 12:30:45 UTC", time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)},
	}
	for _, tt := range tests {
		args, err := ParametersToArgs([]bq.QueryParameter{scalarParam("ts", "TIMESTAMP", tt.raw)})
		require.NoError(t, err, tt.raw)
		got := args[0].(sql.NamedArg).Value.(time.Time)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.raw, got)
	}
}

func TestParametersToArgsArray(t *testing.T) {
	one, two := "1", "2"
	args, err := ParametersToArgs([]bq.QueryParameter{{
		Name: bq.Ptr("ids"),
		ParameterType: &bq.QueryParameterType{
			Type:      "ARRAY",
			ArrayType: &bq.QueryParameterType{Type: "INT64"},
		},
		ParameterValue: &bq.QueryParameterValue{
			ArrayValues: []bq.QueryParameterValue{{Value: &one}, {Value: &two}},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, args[0].(sql.NamedArg).Value)
}

func TestParametersToArgsStruct(t *testing.T) {
	name, age := "ada", "30"
	args, err := ParametersToArgs([]bq.QueryParameter{{
		Name: bq.Ptr("person"),
		ParameterType: &bq.QueryParameterType{
			Type: "STRUCT",
			StructTypes: []bq.QueryParameterFieldType{
				{Name: "name", Type: bq.QueryParameterType{Type: "STRING"}},
				{Name: "age", Type: bq.QueryParameterType{Type: "INT64"}},
			},
		},
		ParameterValue: &bq.QueryParameterValue{
			StructValues: map[string]bq.QueryParameterValue{
				"name": {Value: &name},
				"age":  {Value: &age},
			},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ada", "age": int64(30)}, args[0].(sql.NamedArg).Value)
}

func TestParametersToArgsNull(t *testing.T) {
	args, err := ParametersToArgs([]bq.QueryParameter{{
		Name:           bq.Ptr("maybe"),
		ParameterType:  &bq.QueryParameterType{Type: "STRING"},
		ParameterValue: &bq.QueryParameterValue{},
	}})
	require.NoError(t, err)
	assert.Nil(t, args[0].(sql.NamedArg).Value)
}

func TestParametersToArgsBadValue(t *testing.T) {
	_, err := ParametersToArgs([]bq.QueryParameter{scalarParam("n", "INT64", "not-a-number")})
	require.Error(t, err)
}
