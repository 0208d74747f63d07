// Package query runs translated statement scripts against engine sessions
// and shapes the final result for the wire.
package query

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/bridge"
	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/engine"
	"github.com/novucs/local-bigquery/internal/sqlt"
)

// Executor executes query requests end to end: translate, bind UDFs, run
// statements in order and keep the last result.
type Executor struct {
	store             *catalog.Store
	federationID      string
	federationCatalog string
	logger            arbor.ILogger
}

// NewExecutor wires the executor onto the catalog store.
func NewExecutor(store *catalog.Store, federationID, federationCatalog string) *Executor {
	return &Executor{
		store:             store,
		federationID:      federationID,
		federationCatalog: federationCatalog,
		logger:            common.GetLogger(),
	}
}

// Request is one query submission.
type Request struct {
	Project string
	Dataset string // default dataset, may be empty
	Query   string
	Params  []bq.QueryParameter
}

// Output is the shaped result of the final statement.
type Output struct {
	Schema    *bq.TableSchema
	Rows      []bq.TableRow
	TotalRows int
}

// Execute runs the request. The session is released on all exits.
func (e *Executor) Execute(ctx context.Context, req Request) (*Output, error) {
	args, err := bridge.ParametersToArgs(req.Params)
	if err != nil {
		return nil, err
	}
	statements, err := sqlt.Translate(req.Query, sqlt.Options{
		DefaultProject:    req.Project,
		DefaultDataset:    e.resolveDataset(req.Dataset),
		FederationID:      e.federationID,
		FederationCatalog: e.federationCatalog,
		Tables:            e.store,
		ParamValues:       scalarParamValues(req.Params),
	})
	if err != nil {
		return nil, err
	}

	session, err := e.store.Engine().Session(ctx, req.Project, req.Dataset)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var last *engine.Result
	for _, stmt := range statements {
		if stmt.UDF != nil {
			if err := session.RegisterUDF(stmt.UDF); err != nil {
				return nil, err
			}
			continue
		}
		if stmt.External {
			if err := session.AttachFederation(ctx); err != nil {
				return nil, err
			}
		}
		e.logger.Trace().Str("sql", stmt.SQL).Msg("Executing statement")
		result, err := session.Query(ctx, stmt.SQL, scopeArgs(args, stmt.Params)...)
		if err != nil {
			return nil, err
		}
		last = result
	}
	if last == nil {
		// Every statement was a UDF declaration.
		return &Output{Schema: &bq.TableSchema{}}, nil
	}
	schema, err := bridge.SchemaFromEngineColumns(last.Columns, last.TypeNames, last.Rows)
	if err != nil {
		return nil, err
	}
	rows := bridge.RowsToWire(schema, last.Rows)
	return &Output{Schema: schema, Rows: rows, TotalRows: len(rows)}, nil
}

func (e *Executor) resolveDataset(dataset string) string {
	if dataset != "" {
		return sqlt.StripQuotes(dataset)
	}
	return e.store.Engine().DefaultDataset()
}

// scopeArgs keeps only the named arguments a statement references, so the
// engine does not reject unused parameters.
func scopeArgs(args []any, names []string) []any {
	if len(names) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	var scoped []any
	for _, arg := range args {
		if named, ok := arg.(sql.NamedArg); ok && wanted[named.Name] {
			scoped = append(scoped, named)
		}
	}
	return scoped
}

// scalarParamValues exposes scalar parameter values by name for
// EXTERNAL_QUERY argument resolution.
func scalarParamValues(params []bq.QueryParameter) map[string]string {
	values := map[string]string{}
	for i, p := range params {
		if p.ParameterValue == nil || p.ParameterValue.Value == nil {
			continue
		}
		name := "param" + strconv.Itoa(i)
		if p.Name != nil && *p.Name != "" {
			name = *p.Name
		}
		values[name] = *p.ParameterValue.Value
	}
	return values
}
