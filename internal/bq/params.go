package bq

// QueryParameterType is the type tree of a query parameter: a scalar type, an
// ARRAY with an element type, a STRUCT with ordered field types, or a RANGE
// with an element type.
type QueryParameterType struct {
	Type              string                    `json:"type"`
	ArrayType         *QueryParameterType       `json:"arrayType,omitempty"`
	StructTypes       []QueryParameterFieldType `json:"structTypes,omitempty"`
	RangeElementType  *QueryParameterType       `json:"rangeElementType,omitempty"`
}

// QueryParameterFieldType is one named member of a STRUCT parameter type.
type QueryParameterFieldType struct {
	Name        string             `json:"name,omitempty"`
	Type        QueryParameterType `json:"type"`
	Description *string            `json:"description,omitempty"`
}

// QueryParameterValue is the value tree mirroring QueryParameterType.
type QueryParameterValue struct {
	Value       *string                        `json:"value,omitempty"`
	ArrayValues []QueryParameterValue          `json:"arrayValues,omitempty"`
	StructValues map[string]QueryParameterValue `json:"structValues,omitempty"`
	RangeValue  *RangeValue                    `json:"rangeValue,omitempty"`
}

// RangeValue bounds a RANGE parameter.
type RangeValue struct {
	Start *QueryParameterValue `json:"start,omitempty"`
	End   *QueryParameterValue `json:"end,omitempty"`
}

// QueryParameter is a named or positional query parameter.
type QueryParameter struct {
	Name           *string             `json:"name,omitempty"`
	ParameterType  *QueryParameterType  `json:"parameterType,omitempty"`
	ParameterValue *QueryParameterValue `json:"parameterValue,omitempty"`
}
