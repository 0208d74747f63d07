package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/catalog"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/engine"
	"github.com/novucs/local-bigquery/internal/handlers"
	"github.com/novucs/local-bigquery/internal/jobs"
	"github.com/novucs/local-bigquery/internal/query"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage and execution
	Engine     *engine.Engine
	Store      *catalog.Store
	Executor   *query.Executor
	JobManager *jobs.Manager

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	ProjectHandler   *handlers.ProjectHandler
	DatasetHandler   *handlers.DatasetHandler
	TableHandler     *handlers.TableHandler
	JobHandler       *handlers.JobHandler
	QueryHandler     *handlers.QueryHandler
	DiscoveryHandler *handlers.DiscoveryHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initEngine(); err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	app.initServices()
	app.initHandlers()

	logger.Info().
		Str("data_dir", cfg.Storage.DataDir).
		Str("default_project", cfg.Projects.Default).
		Msg("Application initialization complete")

	return app, nil
}

// initEngine opens the embedded database and bootstraps the metadata catalog
func (a *App) initEngine() error {
	eng, err := engine.Open(engine.Config{
		DataDir:           a.Config.Storage.DataDir,
		DefaultProject:    a.Config.Projects.Default,
		InternalProject:   a.Config.Projects.Internal,
		DefaultDataset:    a.Config.Projects.DefaultDataset,
		InternalDataset:   a.Config.Projects.InternalDataset,
		FederationURI:     a.Config.Federation.URI,
		FederationCatalog: a.Config.Federation.Catalog,
	})
	if err != nil {
		return err
	}
	a.Engine = eng

	if a.Config.Storage.ResetOnStartup {
		if err := eng.Reset(context.Background()); err != nil {
			return fmt.Errorf("failed to reset data dir: %w", err)
		}
		a.Logger.Info().Str("data_dir", a.Config.Storage.DataDir).Msg("Data dir reset on startup")
	}

	a.Logger.Debug().
		Str("storage", "duckdb").
		Str("path", a.Config.Storage.DataDir).
		Msg("Storage layer initialized")
	return nil
}

// initServices initializes the catalog store, executor and job manager
func (a *App) initServices() {
	a.Store = catalog.NewStore(a.Engine)
	a.Logger.Debug().Msg("Catalog store initialized")

	a.Executor = query.NewExecutor(a.Store, a.Config.Federation.ConnectionID, a.Config.Federation.Catalog)
	a.Logger.Debug().Str("connection_id", a.Config.Federation.ConnectionID).Msg("Query executor initialized")

	a.JobManager = jobs.NewManager(a.Store, a.Executor)
	a.Logger.Debug().Msg("Job manager initialized")
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.ProjectHandler = handlers.NewProjectHandler(a.Store)
	a.DatasetHandler = handlers.NewDatasetHandler(a.Store)
	a.TableHandler = handlers.NewTableHandler(a.Store)
	a.JobHandler = handlers.NewJobHandler(a.JobManager)
	a.QueryHandler = handlers.NewQueryHandler(a.JobManager)
	a.DiscoveryHandler = handlers.NewDiscoveryHandler(a.Config.Server.Host, a.Config.Server.Port)
	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Engine != nil {
		if err := a.Engine.Close(); err != nil {
			return fmt.Errorf("failed to close engine: %w", err)
		}
		a.Logger.Info().Msg("Engine closed")
	}
	return nil
}
