package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/bridge"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/sqlt"
)

// CreateTable renders the schema into engine DDL and executes it.
func (s *Store) CreateTable(ctx context.Context, project, dataset string, t *bq.Table) (*bq.Table, error) {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	if t == nil || t.TableReference == nil || t.TableReference.TableID == "" {
		return nil, errs.Invalid("tableReference.tableId is required")
	}
	table := sqlt.StripQuotes(t.TableReference.TableID)
	columns, err := bridge.SchemaToColumnDefs(t.Schema)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	fqn := sqlt.QualifiedName(project, dataset, table)
	if _, err := sess.Exec(ctx, "CREATE TABLE "+fqn+" ("+columns+")"); err != nil {
		return nil, err
	}
	t.Kind = bq.Ptr("bigquery#table")
	t.ID = bq.Ptr(project + ":" + dataset + "." + table)
	t.TableReference = &bq.TableReference{ProjectID: project, DatasetID: dataset, TableID: table}
	t.CreationTime = bq.Ptr(nowSeconds())
	t.Type = bq.Ptr("TABLE")
	s.logger.Debug().Str("table", fqn).Msg("Table created")
	return t, nil
}

// GetTable reads the live column list back out of the engine catalog.
func (s *Store) GetTable(ctx context.Context, project, dataset, table string) (*bq.Table, error) {
	project = sqlt.StripQuotes(project)
	dataset = sqlt.StripQuotes(dataset)
	table = sqlt.StripQuotes(table)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res, err := sess.Query(ctx,
		`SELECT column_name, data_type FROM duckdb_columns()
		 WHERE database_name = ? AND schema_name = ? AND table_name = ?
		 ORDER BY column_index`,
		project, dataset, table)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, errs.NotFound("table %s:%s.%s was not found", project, dataset, table)
	}
	schema := &bq.TableSchema{}
	for _, row := range res.Rows {
		name, _ := row[0].(string)
		typ, _ := row[1].(string)
		field, err := bridge.FieldFromEngineType(name, typ)
		if err != nil {
			return nil, err
		}
		schema.Fields = append(schema.Fields, field)
	}
	return &bq.Table{
		Kind: bq.Ptr("bigquery#table"),
		ID:   bq.Ptr(project + ":" + dataset + "." + table),
		TableReference: &bq.TableReference{
			ProjectID: project, DatasetID: dataset, TableID: table,
		},
		Schema: schema,
		Type:   bq.Ptr("TABLE"),
	}, nil
}

// ListTables reads the engine catalog, filtered by project and optionally by
// dataset, sorted by (project, dataset, table).
func (s *Store) ListTables(ctx context.Context, project, dataset string) (*bq.TableList, error) {
	project, dataset = sqlt.StripQuotes(project), sqlt.StripQuotes(dataset)
	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	query := `SELECT database_name, schema_name, table_name FROM duckdb_tables()
		WHERE database_name = ?`
	args := []any{project}
	if dataset != "" {
		query += " AND schema_name = ?"
		args = append(args, dataset)
	}
	query += " ORDER BY database_name, schema_name, table_name"
	res, err := sess.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	list := &bq.TableList{Kind: bq.Ptr("bigquery#tableList"), TotalItems: bq.Ptr(len(res.Rows))}
	for _, row := range res.Rows {
		p, _ := row[0].(string)
		d, _ := row[1].(string)
		t, _ := row[2].(string)
		if isHiddenSchema(d) || isMetadataTable(s, p, d) {
			continue
		}
		list.Tables = append(list.Tables, bq.TableListEntry{
			Kind: bq.Ptr("bigquery#table"),
			ID:   bq.Ptr(p + ":" + d + "." + t),
			TableReference: &bq.TableReference{
				ProjectID: p, DatasetID: d, TableID: t,
			},
			Type: bq.Ptr("TABLE"),
		})
	}
	list.TotalItems = bq.Ptr(len(list.Tables))
	return list, nil
}

func isMetadataTable(s *Store, project, dataset string) bool {
	return project == s.engine.InternalProject() && dataset == s.engine.InternalDataset()
}

// ListTableNames satisfies the translator's wildcard lookup.
func (s *Store) ListTableNames(project, dataset string) ([]string, error) {
	ctx := context.Background()
	list, err := s.ListTables(ctx, project, dataset)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Tables))
	for _, entry := range list.Tables {
		if entry.TableReference != nil {
			names = append(names, entry.TableReference.TableID)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteTable drops the table.
func (s *Store) DeleteTable(ctx context.Context, project, dataset, table string) error {
	project = sqlt.StripQuotes(project)
	dataset = sqlt.StripQuotes(dataset)
	table = sqlt.StripQuotes(table)
	sess, err := s.session(ctx, project)
	if err != nil {
		return err
	}
	defer sess.Close()

	fqn := sqlt.QualifiedName(project, dataset, table)
	if _, err := sess.Exec(ctx, "DROP TABLE "+fqn); err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			return errs.NotFound("table %s:%s.%s was not found", project, dataset, table)
		}
		return err
	}
	return nil
}

// InsertAll appends rows to a table with a single parameterized INSERT.
// Heterogeneous rows are filled to the union of their keys.
func (s *Store) InsertAll(ctx context.Context, project, dataset, table string, req *bq.TableDataInsertAllRequest) (*bq.TableDataInsertAllResponse, error) {
	project = sqlt.StripQuotes(project)
	dataset = sqlt.StripQuotes(dataset)
	table = sqlt.StripQuotes(table)
	resp := &bq.TableDataInsertAllResponse{Kind: bq.Ptr("bigquery#tableDataInsertAllResponse")}
	if req == nil || len(req.Rows) == 0 {
		return resp, nil
	}
	raw := make([]map[string]any, 0, len(req.Rows))
	for _, row := range req.Rows {
		raw = append(raw, row.JSON)
	}
	keys, rows := bridge.NormalizeRows(raw)
	if len(keys) == 0 {
		return resp, nil
	}

	sess, err := s.session(ctx, project)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	quoted := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = sqlt.QuoteIdent(k)
		placeholders[i] = "?"
	}
	stmt := "INSERT INTO " + sqlt.QualifiedName(project, dataset, table) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	for i, row := range rows {
		args := make([]any, len(keys))
		for j, k := range keys {
			args[j] = row[k]
		}
		if _, err := sess.Exec(ctx, stmt, args...); err != nil {
			insertID := uuid.NewString()
			if req.Rows[i].InsertID != nil {
				insertID = *req.Rows[i].InsertID
			}
			resp.InsertErrors = append(resp.InsertErrors, bq.InsertAllError{
				Index: bq.Ptr(i),
				Errors: []bq.ErrorProto{{
					Reason:   errs.KindOf(err).Reason(),
					Location: insertID,
					Message:  err.Error(),
				}},
			})
		}
	}
	return resp, nil
}
