// Package udf binds JavaScript user-defined functions onto engine sessions.
package udf

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/marcboeker/go-duckdb/v2"

	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/sqlt"
)

// Function adapts a parsed JS UDF declaration to the engine's scalar
// function interface. Each invocation runs in a fresh JavaScript context so
// calls cannot observe each other's state.
type Function struct {
	decl   *sqlt.UDFDecl
	script string
}

// New compiles the wrapper script for a declaration.
func New(decl *sqlt.UDFDecl) *Function {
	names := make([]string, 0, len(decl.Args))
	for _, arg := range decl.Args {
		names = append(names, arg.Name)
	}
	script := "var f = function(" + strings.Join(names, ", ") + ") {\n" + decl.Body + "\n};"
	return &Function{decl: decl, script: script}
}

// Register binds the function on a pinned engine connection. The binding
// lives for the lifetime of the connection.
func Register(conn *sql.Conn, decl *sqlt.UDFDecl) error {
	fn := New(decl)
	if err := duckdb.RegisterScalarUDF(conn, decl.Name, fn); err != nil {
		return errs.InvalidQuery("cannot register function %s: %v", decl.Name, err)
	}
	return nil
}

// Config reports the signature metadata to the engine binding layer.
func (f *Function) Config() duckdb.ScalarFuncConfig {
	inputs := make([]duckdb.TypeInfo, 0, len(f.decl.Args))
	for _, arg := range f.decl.Args {
		inputs = append(inputs, typeInfo(arg.EngineType))
	}
	return duckdb.ScalarFuncConfig{
		InputTypeInfos: inputs,
		ResultTypeInfo: typeInfo(f.decl.EngineReturnType),
		Volatile:       true,
	}
}

// Executor runs the JavaScript body row by row.
func (f *Function) Executor() duckdb.ScalarFuncExecutor {
	return duckdb.ScalarFuncExecutor{RowExecutor: f.call}
}

func (f *Function) call(values []driver.Value) (any, error) {
	vm := goja.New()
	if _, err := vm.RunString(f.script); err != nil {
		return nil, fmt.Errorf("function %s: %w", f.decl.Name, err)
	}
	callable, ok := goja.AssertFunction(vm.Get("f"))
	if !ok {
		return nil, fmt.Errorf("function %s did not evaluate to a callable", f.decl.Name)
	}
	args := make([]goja.Value, len(values))
	for i, v := range values {
		args[i] = vm.ToValue(v)
	}
	result, err := callable(goja.Undefined(), args...)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", f.decl.Name, err)
	}
	return exportResult(result, f.decl.EngineReturnType)
}

func exportResult(value goja.Value, engineType string) (any, error) {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	switch engineType {
	case "BIGINT":
		return value.ToInteger(), nil
	case "DOUBLE":
		return value.ToFloat(), nil
	case "BOOLEAN":
		return value.ToBoolean(), nil
	default:
		return value.String(), nil
	}
}

func typeInfo(engineType string) duckdb.TypeInfo {
	var t duckdb.Type
	switch engineType {
	case "BIGINT":
		t = duckdb.TYPE_BIGINT
	case "DOUBLE":
		t = duckdb.TYPE_DOUBLE
	case "BOOLEAN":
		t = duckdb.TYPE_BOOLEAN
	default:
		t = duckdb.TYPE_VARCHAR
	}
	info, err := duckdb.NewTypeInfo(t)
	if err != nil {
		// The scalar types above always construct.
		panic(err)
	}
	return info
}
