package catalog

import (
	"context"
	"encoding/json"

	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/errs"
	"github.com/novucs/local-bigquery/internal/sqlt"
)

func jobID(j *bq.Job) string {
	if j != nil && j.JobReference != nil {
		return j.JobReference.JobID
	}
	return ""
}

// InsertJob stores a job record; at most one row per (project, job_id).
func (s *Store) InsertJob(ctx context.Context, project string, j *bq.Job) error {
	project = sqlt.StripQuotes(project)
	id := jobID(j)
	if id == "" {
		return errs.Invalid("jobReference.jobId is required")
	}
	sess, err := s.session(ctx, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.Query(ctx,
		"SELECT 1 FROM "+s.metaTable("jobs")+" WHERE project = ? AND job_id = ?",
		project, id)
	if err != nil {
		return err
	}
	if len(res.Rows) > 0 {
		return errs.AlreadyExists("job %s:%s already exists", project, id)
	}
	payload, err := marshalPayload(j)
	if err != nil {
		return err
	}
	_, err = sess.Exec(ctx,
		"INSERT INTO "+s.metaTable("jobs")+" (project, job_id, payload) VALUES (?, ?, ?)",
		project, id, payload)
	return err
}

// UpdateJob replaces a stored job record.
func (s *Store) UpdateJob(ctx context.Context, project string, j *bq.Job) error {
	project = sqlt.StripQuotes(project)
	id := jobID(j)
	sess, err := s.session(ctx, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	payload, err := marshalPayload(j)
	if err != nil {
		return err
	}
	res, err := sess.Exec(ctx,
		"UPDATE "+s.metaTable("jobs")+" SET payload = ? WHERE project = ? AND job_id = ?",
		payload, project, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("job %s:%s was not found", project, id)
	}
	return nil
}

// GetJob loads one job record.
func (s *Store) GetJob(ctx context.Context, project, id string) (*bq.Job, error) {
	project, id = sqlt.StripQuotes(project), sqlt.StripQuotes(id)
	sess, err := s.session(ctx, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res, err := sess.Query(ctx,
		"SELECT payload FROM "+s.metaTable("jobs")+" WHERE project = ? AND job_id = ?",
		project, id)
	if err != nil {
		return nil, err
	}
	return loadPayload[bq.Job](res, errs.NotFound("job %s:%s was not found", project, id))
}

// ListJobs returns every job of a project, newest insertion last.
func (s *Store) ListJobs(ctx context.Context, project string) ([]bq.Job, error) {
	project = sqlt.StripQuotes(project)
	sess, err := s.session(ctx, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res, err := sess.Query(ctx,
		"SELECT payload FROM "+s.metaTable("jobs")+" WHERE project = ? ORDER BY job_id",
		project)
	if err != nil {
		return nil, err
	}
	jobs := make([]bq.Job, 0, len(res.Rows))
	for _, row := range res.Rows {
		raw, _ := row[0].(string)
		var j bq.Job
		if err := json.Unmarshal([]byte(raw), &j); err != nil {
			return nil, errs.Wrap(errs.KindInternal, err, "decode job payload")
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// DeleteJob removes a job and its stored result.
func (s *Store) DeleteJob(ctx context.Context, project, id string) error {
	project, id = sqlt.StripQuotes(project), sqlt.StripQuotes(id)
	sess, err := s.session(ctx, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.Exec(ctx,
		"DELETE FROM "+s.metaTable("jobs")+" WHERE project = ? AND job_id = ?",
		project, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("job %s:%s was not found", project, id)
	}
	_, err = sess.Exec(ctx,
		"DELETE FROM "+s.metaTable("query_results")+" WHERE project = ? AND job_id = ?",
		project, id)
	return err
}

// SaveQueryResult stores the companion result of a finished query job.
func (s *Store) SaveQueryResult(ctx context.Context, project, id string, r *bq.GetQueryResultsResponse) error {
	project, id = sqlt.StripQuotes(project), sqlt.StripQuotes(id)
	sess, err := s.session(ctx, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	payload, err := marshalPayload(r)
	if err != nil {
		return err
	}
	_, err = sess.Exec(ctx,
		"INSERT OR REPLACE INTO "+s.metaTable("query_results")+" (project, job_id, payload) VALUES (?, ?, ?)",
		project, id, payload)
	return err
}

// GetQueryResult loads the stored result of a job.
func (s *Store) GetQueryResult(ctx context.Context, project, id string) (*bq.GetQueryResultsResponse, error) {
	project, id = sqlt.StripQuotes(project), sqlt.StripQuotes(id)
	sess, err := s.session(ctx, "")
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res, err := sess.Query(ctx,
		"SELECT payload FROM "+s.metaTable("query_results")+" WHERE project = ? AND job_id = ?",
		project, id)
	if err != nil {
		return nil, err
	}
	return loadPayload[bq.GetQueryResultsResponse](res,
		errs.NotFound("results for job %s:%s were not found", project, id))
}
