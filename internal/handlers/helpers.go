package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/errs"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteAPIError(w, errs.Invalid("method %s is not allowed here", r.Method))
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteAPIError renders a typed error as the standard BigQuery error envelope.
func WriteAPIError(w http.ResponseWriter, err error) error {
	kind := errs.KindOf(err)
	envelope := bq.NewErrorEnvelope(kind.HTTPStatus(), kind.Reason(), errs.RenderMessage(err))
	return WriteJSON(w, kind.HTTPStatus(), envelope)
}

// DecodeJSON decodes the request body into v, mapping failures to Invalid.
func DecodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errs.Invalid("failed to read request body: %v", err)
	}
	if len(body) == 0 {
		return errs.Invalid("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errs.Invalid("malformed request body: %v", err)
	}
	return nil
}
