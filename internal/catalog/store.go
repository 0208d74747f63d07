// Package catalog stores datasets, tables, jobs and query results: resource
// metadata lives as JSON rows in the internal project, while the engine's own
// catalog stays authoritative for schema and table existence.
package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/engine"
	"github.com/novucs/local-bigquery/internal/errs"
)

// Store is the catalog facade over the engine.
type Store struct {
	engine *engine.Engine
	logger arbor.ILogger
}

// NewStore builds a Store on an open engine.
func NewStore(e *engine.Engine) *Store {
	return &Store{engine: e, logger: common.GetLogger()}
}

// Engine exposes the underlying engine for the executor.
func (s *Store) Engine() *engine.Engine { return s.engine }

// session opens a metadata-scoped session with the given project attached.
func (s *Store) session(ctx context.Context, project string) (*engine.Session, error) {
	sess, err := s.engine.Session(ctx, s.engine.InternalProject(), s.engine.InternalDataset())
	if err != nil {
		return nil, err
	}
	if project != "" {
		if err := sess.EnsureProject(ctx, project); err != nil {
			sess.Close()
			return nil, err
		}
	}
	return sess, nil
}

func (s *Store) metaTable(name string) string {
	return s.engine.MetadataDataset() + "." + name
}

// nowSeconds renders the current time as a seconds-since-epoch string, the
// format metadata timestamps carry on the wire.
func nowSeconds() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// loadPayload unmarshals a single JSON payload column into out; the caller
// supplies the not-found error.
func loadPayload[T any](res *engine.Result, missing error) (*T, error) {
	if len(res.Rows) == 0 {
		return nil, missing
	}
	raw, ok := res.Rows[0][0].(string)
	if !ok {
		if b, isBytes := res.Rows[0][0].([]byte); isBytes {
			raw = string(b)
		} else {
			return nil, errs.Invalid("malformed catalog payload")
		}
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "decode catalog payload")
	}
	return &out, nil
}

func marshalPayload(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errs.Wrap(errs.KindInternal, err, "encode catalog payload")
	}
	return string(b), nil
}
