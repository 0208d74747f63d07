package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// BigQuery v2 surface
	mux.HandleFunc("/bigquery/v2/projects", s.app.ProjectHandler.ListHandler)
	mux.HandleFunc("/bigquery/v2/projects/", s.handleProjectRoutes)

	// Discovery document (served at both the modern and the legacy path)
	mux.HandleFunc("/$discovery/rest", s.app.DiscoveryHandler.DocumentHandler)
	mux.HandleFunc("/discovery/v1/apis/bigquery/v2/rest", s.app.DiscoveryHandler.DocumentHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for everything else
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleProjectRoutes dispatches everything under /bigquery/v2/projects/{p}.
func (s *Server) handleProjectRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/bigquery/v2/projects/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}
	project := parts[0]
	rest := parts[1:]
	if len(rest) == 0 {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}

	switch rest[0] {
	case "serviceAccount":
		if len(rest) == 1 {
			s.app.ProjectHandler.ServiceAccountHandler(w, r, project)
			return
		}
	case "datasets":
		s.handleDatasetRoutes(w, r, project, rest[1:])
		return
	case "jobs":
		s.handleJobRoutes(w, r, project, rest[1:])
		return
	case "queries":
		s.handleQueryRoutes(w, r, project, rest[1:])
		return
	}
	s.app.APIHandler.NotFoundHandler(w, r)
}

// handleDatasetRoutes dispatches /projects/{p}/datasets and below.
func (s *Server) handleDatasetRoutes(w http.ResponseWriter, r *http.Request, project string, parts []string) {
	if len(parts) == 0 {
		RouteResourceCollection(w, r,
			func(w http.ResponseWriter, r *http.Request) { s.app.DatasetHandler.ListHandler(w, r, project) },
			func(w http.ResponseWriter, r *http.Request) { s.app.DatasetHandler.CreateHandler(w, r, project) },
		)
		return
	}

	dataset := parts[0]
	// Verb suffixes arrive glued to the resource id, e.g. "{d}:undelete".
	if name, verb, ok := strings.Cut(dataset, ":"); ok {
		if verb == "undelete" && len(parts) == 1 {
			s.app.DatasetHandler.UndeleteHandler(w, r, project, name)
			return
		}
		s.app.APIHandler.UnimplementedHandler(w, r)
		return
	}

	if len(parts) == 1 {
		RouteCRUD(w, r,
			func(w http.ResponseWriter, r *http.Request) { s.app.DatasetHandler.GetHandler(w, r, project, dataset) },
			nil,
			func(w http.ResponseWriter, r *http.Request) { s.app.DatasetHandler.UpdateHandler(w, r, project, dataset) },
			func(w http.ResponseWriter, r *http.Request) { s.app.DatasetHandler.PatchHandler(w, r, project, dataset) },
			func(w http.ResponseWriter, r *http.Request) { s.app.DatasetHandler.DeleteHandler(w, r, project, dataset) },
		)
		return
	}

	switch parts[1] {
	case "tables":
		s.handleTableRoutes(w, r, project, dataset, parts[2:])
		return
	case "models", "routines":
		// Not emulated
		s.app.APIHandler.UnimplementedHandler(w, r)
		return
	}
	s.app.APIHandler.NotFoundHandler(w, r)
}

// handleTableRoutes dispatches /projects/{p}/datasets/{d}/tables and below.
func (s *Server) handleTableRoutes(w http.ResponseWriter, r *http.Request, project, dataset string, parts []string) {
	if len(parts) == 0 {
		RouteResourceCollection(w, r,
			func(w http.ResponseWriter, r *http.Request) { s.app.TableHandler.ListHandler(w, r, project, dataset) },
			func(w http.ResponseWriter, r *http.Request) { s.app.TableHandler.CreateHandler(w, r, project, dataset) },
		)
		return
	}

	table := parts[0]
	if _, verb, ok := strings.Cut(table, ":"); ok {
		switch verb {
		case "getIamPolicy", "setIamPolicy", "testIamPermissions":
			s.app.APIHandler.UnimplementedHandler(w, r)
			return
		}
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}

	if len(parts) == 1 {
		RouteCRUD(w, r,
			func(w http.ResponseWriter, r *http.Request) { s.app.TableHandler.GetHandler(w, r, project, dataset, table) },
			nil,
			s.app.APIHandler.UnimplementedHandler, // PUT
			s.app.APIHandler.UnimplementedHandler, // PATCH
			func(w http.ResponseWriter, r *http.Request) {
				s.app.TableHandler.DeleteHandler(w, r, project, dataset, table)
			},
		)
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "insertAll":
			s.app.TableHandler.InsertAllHandler(w, r, project, dataset, table)
			return
		case "data", "rowAccessPolicies":
			s.app.APIHandler.UnimplementedHandler(w, r)
			return
		}
	}
	s.app.APIHandler.NotFoundHandler(w, r)
}

// handleJobRoutes dispatches /projects/{p}/jobs and below.
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request, project string, parts []string) {
	if len(parts) == 0 {
		RouteResourceCollection(w, r,
			func(w http.ResponseWriter, r *http.Request) { s.app.JobHandler.ListHandler(w, r, project) },
			func(w http.ResponseWriter, r *http.Request) { s.app.JobHandler.InsertHandler(w, r, project) },
		)
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		RouteByMethod(w, r, MethodRouter{
			"GET": func(w http.ResponseWriter, r *http.Request) { s.app.JobHandler.GetHandler(w, r, project, id) },
		})
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "cancel":
			s.app.JobHandler.CancelHandler(w, r, project, id)
			return
		case "delete":
			s.app.JobHandler.DeleteHandler(w, r, project, id)
			return
		}
	}
	s.app.APIHandler.NotFoundHandler(w, r)
}

// handleQueryRoutes dispatches /projects/{p}/queries and below.
func (s *Server) handleQueryRoutes(w http.ResponseWriter, r *http.Request, project string, parts []string) {
	if len(parts) == 0 {
		s.app.QueryHandler.QueryHandler(w, r, project)
		return
	}
	if len(parts) == 1 {
		s.app.QueryHandler.ResultsHandler(w, r, project, parts[0])
		return
	}
	s.app.APIHandler.NotFoundHandler(w, r)
}
