package catalog

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/engine"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/sqlt"
)

// hidden schemas never surfaced as datasets.
func isHiddenSchema(name string) bool {
	switch name {
	case "information_schema", "pg_catalog", "main":
		return true
	}
	return false
}

// syntheticDataset backfills a metadata record for a schema that exists in
// the engine catalog without one.
func syntheticDataset(project, dataset string) *bq.Dataset {
	return &bq.Dataset{
		Kind: bq.Ptr("bigquery#dataset"),
		ID:   bq.Ptr(project + ":" + dataset),
		DatasetReference: &bq.DatasetReference{
			ProjectID: project,
			DatasetID: dataset,
		},
		Location:              bq.Ptr("US"),
		CreationTime:          bq.Ptr(nowSeconds()),
		LastModifiedTime:      bq.Ptr(nowSeconds()),
		StorageBillingModel:   bq.Ptr(bq.BillingModelLogical),
		LinkedDatasetMetadata: &bq.LinkedDatasetMeta{LinkState: bq.LinkStateUnlinked},
	}
}

// schemaNames lists the engine schemas of a project.
func (s *Store) schemaNames(ctx context.Context, sess *engine.Session, project string) ([]string, error) {
	res, err := sess.Query(ctx,
		"SELECT schema_name FROM duckdb_schemas() WHERE database_name = ? AND NOT internal ORDER BY schema_name",
		project)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range res.Rows {
		name, _ := row[0].(string)
		if name != "" && !isHiddenSchema(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Store) schemaExists(ctx context.Context, sess *engine.Session, project, dataset string) (bool, error) {
	names, err := s.schemaNames(ctx, sess, project)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == dataset {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) loadDataset(ctx context.Context, sess *engine.Session, project, dataset string) (*bq.Dataset, error) {
	res, err := sess.Query(ctx,
		"SELECT payload FROM "+s.metaTable("datasets")+" WHERE project = ? AND dataset = ?",
		project, dataset)
	if err != nil {
		return nil, err
	}
	return loadPayload[bq.Dataset](res, errs.NotFound("dataset %s:%s was not found", project, dataset))
}

func (s *Store) saveDataset(ctx context.Context, sess *engine.Session, project, dataset string, d *bq.Dataset) error {
	payload, err := marshalPayload(d)
	if err != nil {
		return err
	}
	_, err = sess.Exec(ctx,
		"INSERT OR REPLACE INTO "+s.metaTable("datasets")+" (project, dataset, payload) VALUES (?, ?, ?)",
		project, dataset, payload)
	return err
}

// ListDatasets enumerates schemas from the engine catalog, backfilling
// synthetic metadata rows for schemas created outside the API.
func (s *Store) ListDatasets(ctx context.Context, project string) (*bq.DatasetList, error) {
	project = sqlt.StripQuotes(project)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	names, err := s.schemaNames(ctx, sess, project)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	list := &bq.DatasetList{Kind: bq.Ptr("bigquery#datasetList")}
	for _, name := range names {
		d, err := s.loadDataset(ctx, sess, project, name)
		if errs.KindOf(err) == errs.KindNotFound {
			d = syntheticDataset(project, name)
			if err := s.saveDataset(ctx, sess, project, name, d); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		list.Datasets = append(list.Datasets, d.ListEntry())
	}
	return list, nil
}

// GetDataset returns a dataset, synthesizing metadata when only the schema
// exists.
func (s *Store) GetDataset(ctx context.Context, project, dataset string) (*bq.Dataset, error) {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	d, err := s.loadDataset(ctx, sess, project, dataset)
	if errs.KindOf(err) == errs.KindNotFound {
		exists, exErr := s.schemaExists(ctx, sess, project, dataset)
		if exErr != nil {
			return nil, exErr
		}
		if !exists {
			return nil, err
		}
		d = syntheticDataset(project, dataset)
		if err := s.saveDataset(ctx, sess, project, dataset, d); err != nil {
			return nil, err
		}
		return d, nil
	}
	return d, err
}

// CreateDataset records metadata and creates the engine schema.
func (s *Store) CreateDataset(ctx context.Context, project string, d *bq.Dataset) (*bq.Dataset, error) {
	project = sqlt.StripQuotes(project)
	if d == nil || d.DatasetReference == nil || d.DatasetReference.DatasetID == "" {
		return nil, errs.Invalid("datasetReference.datasetId is required")
	}
	dataset := sqlt.StripQuotes(d.DatasetReference.DatasetID)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	exists, err := s.schemaExists(ctx, sess, project, dataset)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.AlreadyExists("dataset %s:%s already exists", project, dataset)
	}

	d.Kind = bq.Ptr("bigquery#dataset")
	d.ID = bq.Ptr(project + ":" + dataset)
	d.DatasetReference = &bq.DatasetReference{ProjectID: project, DatasetID: dataset}
	if d.CreationTime == nil {
		d.CreationTime = bq.Ptr(nowSeconds())
	}
	d.LastModifiedTime = bq.Ptr(nowSeconds())
	if d.Location == nil {
		d.Location = bq.Ptr("US")
	}
	if d.StorageBillingModel == nil {
		d.StorageBillingModel = bq.Ptr(bq.BillingModelLogical)
	}

	if err := s.saveDataset(ctx, sess, project, dataset, d); err != nil {
		return nil, err
	}
	if _, err := sess.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+sqlt.QualifiedName(project, dataset)); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("project", project).Str("dataset", dataset).Msg("Dataset created")
	return d, nil
}

// DeleteDataset drops the schema with everything in it.
func (s *Store) DeleteDataset(ctx context.Context, project, dataset string) error {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	sess, err := s.session(ctx, project)
	if err != nil {
		return err
	}
	defer sess.Close()

	exists, err := s.schemaExists(ctx, sess, project, dataset)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NotFound("dataset %s:%s was not found", project, dataset)
	}
	if _, err := sess.Exec(ctx, "DROP SCHEMA "+sqlt.QualifiedName(project, dataset)+" CASCADE"); err != nil {
		return err
	}
	_, err = sess.Exec(ctx,
		"DELETE FROM "+s.metaTable("datasets")+" WHERE project = ? AND dataset = ?",
		project, dataset)
	return err
}

// UpdateDataset replaces the stored resource.
func (s *Store) UpdateDataset(ctx context.Context, project, dataset string, d *bq.Dataset) (*bq.Dataset, error) {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if _, err := s.loadDataset(ctx, sess, project, dataset); err != nil {
		return nil, err
	}
	d.ID = bq.Ptr(project + ":" + dataset)
	d.DatasetReference = &bq.DatasetReference{ProjectID: project, DatasetID: dataset}
	d.LastModifiedTime = bq.Ptr(nowSeconds())
	if err := s.saveDataset(ctx, sess, project, dataset, d); err != nil {
		return nil, err
	}
	return d, nil
}

// PatchDataset merges set fields of the patch into the stored resource.
// Unset (absent) fields keep their stored values.
func (s *Store) PatchDataset(ctx context.Context, project, dataset string, patch json.RawMessage) (*bq.Dataset, error) {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	current, err := s.loadDataset(ctx, sess, project, dataset)
	if err != nil {
		return nil, err
	}
	merged, err := mergePatch(current, patch)
	if err != nil {
		return nil, err
	}
	merged.ID = bq.Ptr(project + ":" + dataset)
	merged.DatasetReference = &bq.DatasetReference{ProjectID: project, DatasetID: dataset}
	merged.LastModifiedTime = bq.Ptr(nowSeconds())
	if err := s.saveDataset(ctx, sess, project, dataset, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// UndeleteDataset restores a dropped dataset as an empty one; metadata that
// survived the drop is reused.
func (s *Store) UndeleteDataset(ctx context.Context, project, dataset string) (*bq.Dataset, error) {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	d, err := s.loadDataset(ctx, sess, project, dataset)
	if errs.KindOf(err) == errs.KindNotFound {
		d = syntheticDataset(project, dataset)
		if err := s.saveDataset(ctx, sess, project, dataset, d); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if _, err := sess.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+sqlt.QualifiedName(project, dataset)); err != nil {
		return nil, err
	}
	return d, nil
}

// mergePatch unmarshals the patch over a copy of the stored resource so
// absent fields keep their stored values.
func mergePatch(current *bq.Dataset, patch json.RawMessage) (*bq.Dataset, error) {
	merged := *current
	if err := json.Unmarshal(patch, &merged); err != nil {
		return nil, errs.Invalid("malformed dataset patch: %v", err)
	}
	return &merged, nil
}
