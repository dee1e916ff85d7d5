package repo

import (
	"context"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
)

// JobRepository persists job postings.
type JobRepository interface {
	Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, id int64, params models.UpdateJobParams) (*models.Job, error)
	Remove(ctx context.Context, id int64) error
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepo returns a JobRepository backed by q.
func NewJobRepo(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

// Job fields already match their column names.
var jobColumns = db.ColumnMap{}

const (
	jobFields = `id, title, salary, equity, company_handle`

	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobFields

	sqlSelectJobs = `
		SELECT ` + jobFields + `
		FROM   jobs`

	sqlGetJob = sqlSelectJobs + `
		WHERE  id = $1`

	sqlDeleteJob = `
		DELETE FROM jobs WHERE id = $1`
)

// Create inserts a job. An unknown company handle yields
// db.ErrForeignKeyViolation.
func (r *jobRepo) Create(ctx context.Context, p models.CreateJobParams) (*models.Job, error) {
	j, err := scanJob(r.q.QueryRow(ctx, sqlInsertJob, p.Title, p.Salary, p.Equity, p.CompanyHandle))
	return j, wrap(err, "job", p.Title)
}

// FindAll lists jobs ordered by title, narrowed by filter.
func (r *jobRepo) FindAll(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	var w whereBuilder
	if f.Title != "" {
		w.add("LOWER(title) LIKE LOWER($%d)", "%"+f.Title+"%")
	}
	if f.MinSalary != nil {
		w.add("salary >= $%d", *f.MinSalary)
	}
	if f.HasEquity {
		w.add("equity > $%d", 0)
	}

	rows, err := r.q.Query(ctx, sqlSelectJobs+w.String()+" ORDER BY title, id", w.args...)
	if err != nil {
		return nil, wrap(err, "job", "")
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) Get(ctx context.Context, id int64) (*models.Job, error) {
	j, err := scanJob(r.q.QueryRow(ctx, sqlGetJob, id))
	return j, wrap(err, "job", id)
}

// Update applies the non-nil fields of params to job id.
func (r *jobRepo) Update(ctx context.Context, id int64, params models.UpdateJobParams) (*models.Job, error) {
	clause, err := db.PartialUpdate(params.Changes(), jobColumns)
	if err != nil {
		return nil, err
	}
	query, args := clause.Update("jobs", "id", id, jobFields)
	j, err := scanJob(r.q.QueryRow(ctx, query, args...))
	return j, wrap(err, "job", id)
}

func (r *jobRepo) Remove(ctx context.Context, id int64) error {
	return wrap(deleteOne(ctx, r.q, sqlDeleteJob, id), "job", id)
}

func scanJob(s scanner) (*models.Job, error) {
	j := &models.Job{}
	if err := s.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
		return nil, err
	}
	return j, nil
}

var _ JobRepository = (*jobRepo)(nil)
