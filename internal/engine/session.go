package engine

import (
	"context"
	"database/sql"

	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/sqlt"
	"github.com/novucs/local-bigquery/internal/udf"
)

// Session pins one connection so the USE scope, registered UDFs and the
// federated attachment stay in effect for the whole request.
type Session struct {
	engine     *Engine
	conn       *sql.Conn
	federation bool // federated source attached on this connection
}

// Session opens a pinned connection scoped to (project, dataset). If the
// requested dataset does not exist the scope falls back to the project's
// default dataset.
func (e *Engine) Session(ctx context.Context, project, dataset string) (*Session, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "acquire connection")
	}
	s := &Session{engine: e, conn: conn}
	if err := s.EnsureProject(ctx, project); err != nil {
		conn.Close()
		return nil, err
	}
	if err := s.use(ctx, project, dataset); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pinned connection.
func (s *Session) Close() error { return s.conn.Close() }

// EnsureProject attaches a project's storage on this connection, creating
// the file on first use.
func (s *Session) EnsureProject(ctx context.Context, project string) error {
	if project == "" || project == s.engine.cfg.InternalProject {
		return nil
	}
	stmt := attachStatement(s.engine.projectPath(project), project)
	if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
		return errs.Wrap(errs.KindInternal, err, "attach project "+project)
	}
	return nil
}

func (s *Session) use(ctx context.Context, project, dataset string) error {
	if project == "" {
		return nil
	}
	if dataset != "" {
		if _, err := s.conn.ExecContext(ctx, "USE "+sqlt.QualifiedName(project, dataset)); err == nil {
			return nil
		}
	}
	fallback := "USE " + sqlt.QualifiedName(project, s.engine.cfg.DefaultDataset)
	if _, err := s.conn.ExecContext(ctx, fallback); err == nil {
		return nil
	}
	// Fresh projects have no default schema yet; scope to the project alone.
	if _, err := s.conn.ExecContext(ctx, "USE "+sqlt.QuoteIdent(project)); err != nil {
		return errs.FromEngine(err)
	}
	return nil
}

// AttachFederation installs and attaches the federated source once per
// session; later calls are no-ops.
func (s *Session) AttachFederation(ctx context.Context) error {
	if s.federation {
		return nil
	}
	if s.engine.cfg.FederationURI == "" {
		return errs.InvalidQuery("no federated source is configured")
	}
	statements := []string{
		"INSTALL postgres",
		"LOAD postgres",
		"ATTACH IF NOT EXISTS " + sqlt.EncodeString(s.engine.cfg.FederationURI) +
			" AS " + sqlt.QuoteIdent(s.engine.cfg.FederationCatalog) + " (TYPE postgres, READ_ONLY)",
	}
	for _, stmt := range statements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return errs.Wrap(errs.KindInvalidQuery, err, "attach federated source")
		}
	}
	s.federation = true
	return nil
}

// RegisterUDF binds a JavaScript UDF on this session's connection.
func (s *Session) RegisterUDF(decl *sqlt.UDFDecl) error {
	return udf.Register(s.conn, decl)
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errs.FromEngine(err)
	}
	return res, nil
}

// Query runs a statement and drains it into a Result.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.FromEngine(err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// Result is a fully-drained query result with engine type names per column.
type Result struct {
	Columns   []string
	TypeNames []string
	Rows      [][]any
}

func scanAll(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.FromEngine(err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errs.FromEngine(err)
	}
	result := &Result{Columns: columns, TypeNames: make([]string, len(types))}
	for i, t := range types {
		result.TypeNames[i] = t.DatabaseTypeName()
	}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.FromEngine(err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.FromEngine(err)
	}
	return result, nil
}
