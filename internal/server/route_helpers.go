package server

import (
	"net/http"

	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/handlers"
)

// RouteHandler is a function type for HTTP handlers
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers
type MethodRouter map[string]RouteHandler

// RouteByMethod routes requests based on HTTP method with standardized error handling
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		handlers.WriteAPIError(w, errs.Invalid("method %s is not allowed on %s", r.Method, r.URL.Path))
		return
	}
	handler(w, r)
}

// RouteCRUD is a convenience function for standard CRUD operations
func RouteCRUD(w http.ResponseWriter, r *http.Request, get, post, put, patch, delete RouteHandler) {
	routes := make(MethodRouter)
	if get != nil {
		routes["GET"] = get
	}
	if post != nil {
		routes["POST"] = post
	}
	if put != nil {
		routes["PUT"] = put
	}
	if patch != nil {
		routes["PATCH"] = patch
	}
	if delete != nil {
		routes["DELETE"] = delete
	}
	RouteByMethod(w, r, routes)
}

// RouteResourceCollection handles standard list + create pattern
// GET -> list, POST -> create
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create RouteHandler) {
	RouteCRUD(w, r, list, create, nil, nil, nil)
}
