// Package engine owns the embedded analytical database: one storage file per
// project, attached into every session, plus the internal metadata catalog.
package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marcboeker/go-duckdb/v2"
	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/sqlt"
)

// Config carries the storage layout and federation settings.
type Config struct {
	DataDir           string
	DefaultProject    string
	InternalProject   string
	DefaultDataset    string
	InternalDataset   string // dataset holding the metadata tables
	FederationURI     string // federated source DSN, empty disables EXTERNAL_QUERY
	FederationCatalog string // catalog name the federated source attaches under
}

// Engine is the process-wide database handle. Sessions pin one connection
// each so USE scope and UDF registrations hold for the request.
type Engine struct {
	cfg    Config
	db     *sql.DB
	logger arbor.ILogger

	mu sync.Mutex // guards Reset's close-and-reopen
}

// Open creates the data directory, opens the internal project's storage and
// prepares the metadata catalog.
func Open(cfg Config) (*Engine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	e := &Engine{
		cfg:    cfg,
		logger: common.GetLogger(),
	}
	connector, err := duckdb.NewConnector(e.projectPath(cfg.InternalProject), e.initConnection)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	e.db = sql.OpenDB(connector)
	if err := e.bootstrap(context.Background()); err != nil {
		e.db.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// DataDir returns the storage directory.
func (e *Engine) DataDir() string { return e.cfg.DataDir }

// InternalProject returns the project holding the metadata catalog.
func (e *Engine) InternalProject() string { return e.cfg.InternalProject }

// DefaultDataset returns the dataset name bootstrapped into every project.
func (e *Engine) DefaultDataset() string { return e.cfg.DefaultDataset }

// InternalDataset returns the dataset name holding the metadata tables.
func (e *Engine) InternalDataset() string { return e.cfg.InternalDataset }

// MetadataDataset returns the fully-qualified prefix of the metadata tables.
func (e *Engine) MetadataDataset() string {
	return sqlt.QualifiedName(e.cfg.InternalProject, e.cfg.InternalDataset)
}

func (e *Engine) projectPath(project string) string {
	return filepath.Join(e.cfg.DataDir, project+".db")
}

// initConnection attaches every known project file on each new pooled
// connection. Projects created after the connection opened are attached
// lazily by the session.
func (e *Engine) initConnection(execer driver.ExecerContext) error {
	entries, err := os.ReadDir(e.cfg.DataDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		project := strings.TrimSuffix(name, ".db")
		if project == e.cfg.InternalProject {
			continue
		}
		stmt := attachStatement(e.projectPath(project), project)
		if _, err := execer.ExecContext(context.Background(), stmt, nil); err != nil {
			return fmt.Errorf("attach %s: %w", project, err)
		}
	}
	return nil
}

func attachStatement(path, project string) string {
	return "ATTACH IF NOT EXISTS " + sqlt.EncodeString(path) + " AS " + sqlt.QuoteIdent(project)
}

// bootstrap ensures the default project and the metadata tables exist.
func (e *Engine) bootstrap(ctx context.Context) error {
	session, err := e.Session(ctx, e.cfg.InternalProject, e.cfg.InternalDataset)
	if err != nil {
		return err
	}
	defer session.Close()
	if err := session.EnsureProject(ctx, e.cfg.DefaultProject); err != nil {
		return err
	}
	meta := e.MetadataDataset()
	statements := []string{
		"CREATE SCHEMA IF NOT EXISTS " + sqlt.QualifiedName(e.cfg.DefaultProject, e.cfg.DefaultDataset),
		"CREATE SCHEMA IF NOT EXISTS " + meta,
		"CREATE TABLE IF NOT EXISTS " + meta + `.datasets (project VARCHAR, dataset VARCHAR, payload JSON, PRIMARY KEY (project, dataset))`,
		"CREATE TABLE IF NOT EXISTS " + meta + `.tables (project VARCHAR, dataset VARCHAR, "table" VARCHAR, payload JSON, PRIMARY KEY (project, dataset, "table"))`,
		"CREATE TABLE IF NOT EXISTS " + meta + `.jobs (project VARCHAR, job_id VARCHAR, payload JSON, PRIMARY KEY (project, job_id))`,
		"CREATE TABLE IF NOT EXISTS " + meta + `.query_results (project VARCHAR, job_id VARCHAR, payload JSON, PRIMARY KEY (project, job_id))`,
		"CREATE TABLE IF NOT EXISTS " + meta + `.models (project VARCHAR, dataset VARCHAR, model VARCHAR, payload JSON, PRIMARY KEY (project, dataset, model))`,
		"CREATE TABLE IF NOT EXISTS " + meta + `.routines (project VARCHAR, dataset VARCHAR, routine VARCHAR, payload JSON, PRIMARY KEY (project, dataset, routine))`,
	}
	for _, stmt := range statements {
		if _, err := session.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}
	e.logger.Debug().
		Str("data_dir", e.cfg.DataDir).
		Str("default_project", e.cfg.DefaultProject).
		Msg("Storage ready")
	return nil
}

// Reset closes the engine, deletes every storage file and starts over.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	if err := os.RemoveAll(e.cfg.DataDir); err != nil {
		return fmt.Errorf("clear data dir: %w", err)
	}
	if err := os.MkdirAll(e.cfg.DataDir, 0o755); err != nil {
		return err
	}
	connector, err := duckdb.NewConnector(e.projectPath(e.cfg.InternalProject), e.initConnection)
	if err != nil {
		return fmt.Errorf("reopen storage: %w", err)
	}
	e.db = sql.OpenDB(connector)
	e.logger.Info().Str("data_dir", e.cfg.DataDir).Msg("Storage reset")
	return e.bootstrap(ctx)
}

// Projects lists the project ids with storage on disk.
func (e *Engine) Projects() ([]string, error) {
	entries, err := os.ReadDir(e.cfg.DataDir)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "list projects")
	}
	var projects []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		project := strings.TrimSuffix(name, ".db")
		if project != e.cfg.InternalProject {
			projects = append(projects, project)
		}
	}
	return projects, nil
}
