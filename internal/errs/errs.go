// Package errs defines the typed error taxonomy shared by the catalog,
// translator, executor and HTTP layers, and its mapping onto BigQuery-style
// wire errors.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for HTTP rendering.
type Kind int

const (
	// KindInternal is the fallback for unexpected errors.
	KindInternal Kind = iota
	// KindInvalid marks malformed requests (bad JSON, bad path segments).
	KindInvalid
	// KindNotFound marks missing datasets, tables or jobs.
	KindNotFound
	// KindAlreadyExists marks duplicate resource creation.
	KindAlreadyExists
	// KindInvalidQuery marks SQL parse and execution failures.
	KindInvalidQuery
	// KindUnimplemented marks API surfaces the emulator does not support.
	KindUnimplemented
)

// Error is a typed emulator error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing resource.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists reports a duplicate resource.
func AlreadyExists(format string, args ...any) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// InvalidQuery reports a SQL parse or execution failure.
func InvalidQuery(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidQuery, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports a malformed request.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// Unimplemented reports an unsupported API surface.
func Unimplemented(format string, args ...any) *Error {
	return &Error{Kind: KindUnimplemented, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, classifying engine errors by message when
// err carries no explicit kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classifyMessage(err.Error())
}

// FromEngine converts an engine (DuckDB) error into a typed error. Messages
// mentioning a missing or duplicate object re-classify to NotFound and
// AlreadyExists; everything else surfaces as an invalid query so BigQuery
// clients do not retry-loop on 5xx.
func FromEngine(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: classifyMessage(err.Error()), Message: err.Error()}
}

func classifyMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "does not exist"), strings.Contains(lower, "not found"):
		return KindNotFound
	case strings.Contains(lower, "already exists"):
		return KindAlreadyExists
	default:
		return KindInvalidQuery
	}
}

// HTTPStatus returns the wire status code for an error kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalid:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindInvalidQuery:
		return http.StatusBadRequest
	case KindUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the wire reason tag for an error kind.
func (k Kind) Reason() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "notFound"
	case KindAlreadyExists:
		return "duplicate"
	case KindInvalidQuery:
		return "invalidQuery"
	case KindUnimplemented:
		return "notImplemented"
	default:
		return "dontRetry"
	}
}

const issueTracker = "https://github.com/novucs/local-bigquery/issues"

// RenderMessage returns the message to put on the wire, decorating
// unimplemented and internal errors with a pointer at the issue tracker.
func RenderMessage(err error) string {
	switch KindOf(err) {
	case KindUnimplemented:
		return fmt.Sprintf("%s\nIf you're seeing this, and want to use this feature, "+
			"please file an issue (or raise a pull request!).\nSee: %s", err.Error(), issueTracker)
	case KindInternal:
		return fmt.Sprintf("%s\nThis is an unexpected internal error, treat this as a bug. "+
			"If you see this, please file an issue with the above logs.\nSee: %s", err.Error(), issueTracker)
	default:
		return err.Error()
	}
}
