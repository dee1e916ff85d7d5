package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// CompanyRepository
// ─────────────────────────────────────────────────────────────────────────────

// CompanyRepository persists companies.
type CompanyRepository interface {
	Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	CreateMany(ctx context.Context, params []models.CreateCompanyParams) ([]*models.Company, error)
	FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.CompanyWithJobs, error)
	Update(ctx context.Context, handle string, params models.UpdateCompanyParams) (*models.Company, error)
	Remove(ctx context.Context, handle string) error
}

type companyRepo struct {
	q db.Querier
}

// NewCompanyRepo returns a CompanyRepository backed by q (*db.DB or *db.Tx).
func NewCompanyRepo(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

// companyColumns maps API field names onto snake_case columns for
// PartialUpdate.
var companyColumns = db.ColumnMap{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

const (
	companyFields = `handle, name, description, num_employees, logo_url`

	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + companyFields

	sqlSelectCompanies = `
		SELECT ` + companyFields + `
		FROM   companies`

	sqlGetCompany = sqlSelectCompanies + `
		WHERE  handle = $1`

	sqlJobsForCompany = `
		SELECT ` + jobFields + `
		FROM   jobs
		WHERE  company_handle = $1
		ORDER  BY id`

	sqlDeleteCompany = `
		DELETE FROM companies WHERE handle = $1`
)

// Create inserts a company. A taken handle yields a *DuplicateError.
func (r *companyRepo) Create(ctx context.Context, p models.CreateCompanyParams) (*models.Company, error) {
	row := r.q.QueryRow(ctx, sqlInsertCompany, p.Handle, p.Name, p.Description, p.NumEmployees, p.LogoURL)
	c, err := scanCompany(row)
	return c, wrap(err, "company", p.Handle)
}

// CreateMany inserts every company through one prepared statement. Run it
// on a *db.Tx for all-or-nothing semantics.
func (r *companyRepo) CreateMany(ctx context.Context, params []models.CreateCompanyParams) ([]*models.Company, error) {
	if len(params) == 0 {
		return nil, nil
	}
	stmt, err := r.q.Prepare(ctx, sqlInsertCompany)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	out := make([]*models.Company, 0, len(params))
	for _, p := range params {
		c, err := scanCompany(stmt.QueryRow(ctx, p.Handle, p.Name, p.Description, p.NumEmployees, p.LogoURL))
		if err != nil {
			return nil, wrap(err, "company", p.Handle)
		}
		out = append(out, c)
	}
	return out, nil
}

// FindAll lists companies ordered by name, narrowed by filter.
func (r *companyRepo) FindAll(ctx context.Context, f models.CompanyFilter) ([]*models.Company, error) {
	if f.MinEmployees != nil && f.MaxEmployees != nil && *f.MinEmployees > *f.MaxEmployees {
		return nil, fmt.Errorf("%w: minEmployees cannot be greater than maxEmployees", ErrInvalidFilter)
	}

	var w whereBuilder
	if f.Name != "" {
		w.add("LOWER(name) LIKE LOWER($%d)", "%"+f.Name+"%")
	}
	if f.MinEmployees != nil {
		w.add("num_employees >= $%d", *f.MinEmployees)
	}
	if f.MaxEmployees != nil {
		w.add("num_employees <= $%d", *f.MaxEmployees)
	}

	rows, err := r.q.Query(ctx, sqlSelectCompanies+w.String()+" ORDER BY name", w.args...)
	if err != nil {
		return nil, wrap(err, "company", "")
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Get returns a company and its jobs.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.CompanyWithJobs, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, sqlGetCompany, handle))
	if err != nil {
		return nil, wrap(err, "company", handle)
	}

	rows, err := r.q.Query(ctx, sqlJobsForCompany, handle)
	if err != nil {
		return nil, wrap(err, "job", handle)
	}
	defer rows.Close()

	out := &models.CompanyWithJobs{Company: *c, Jobs: []models.Job{}}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out.Jobs = append(out.Jobs, *j)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of params. No fields yields
// db.ErrEmptyUpdate; an unknown handle a *NotFoundError.
func (r *companyRepo) Update(ctx context.Context, handle string, params models.UpdateCompanyParams) (*models.Company, error) {
	clause, err := db.PartialUpdate(params.Changes(), companyColumns)
	if err != nil {
		return nil, err
	}
	query, args := clause.Update("companies", "handle", handle, companyFields)
	c, err := scanCompany(r.q.QueryRow(ctx, query, args...))
	return c, wrap(err, "company", handle)
}

// Remove deletes a company and, by cascade, its jobs.
func (r *companyRepo) Remove(ctx context.Context, handle string) error {
	return wrap(deleteOne(ctx, r.q, sqlDeleteCompany, handle), "company", handle)
}

// deleteOne runs a single-key DELETE and reports db.ErrNotFound when no row
// was removed.
func deleteOne(ctx context.Context, q db.Querier, query string, key any) error {
	res, err := q.Exec(ctx, query, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *db.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(s scanner) (*models.Company, error) {
	c := &models.Company{}
	if err := s.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
		return nil, err
	}
	return c, nil
}

var _ CompanyRepository = (*companyRepo)(nil)
