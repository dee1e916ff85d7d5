package models

import "github.com/Skryldev/jobly/db"

// Job represents a row in the "jobs" table.
type Job struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

// CreateJobParams holds the fields accepted when creating a job.
type CreateJobParams struct {
	Title         string   `json:"title" validate:"required,min=1"`
	Salary        *int     `json:"salary" validate:"omitempty,min=0"`
	Equity        *float64 `json:"equity" validate:"omitempty,min=0,max=1"`
	CompanyHandle string   `json:"companyHandle" validate:"required,min=1,max=25"`
}

// UpdateJobParams holds the updatable job fields. A job cannot move to
// another company, and its id never changes.
type UpdateJobParams struct {
	Title  *string  `json:"title" validate:"omitempty,min=1"`
	Salary *int     `json:"salary" validate:"omitempty,min=0"`
	Equity *float64 `json:"equity" validate:"omitempty,min=0,max=1"`
}

func (p UpdateJobParams) Changes() db.Changes {
	var c db.Changes
	if p.Title != nil {
		c = append(c, db.Set("title", db.String(*p.Title)))
	}
	if p.Salary != nil {
		c = append(c, db.Set("salary", db.Int(int64(*p.Salary))))
	}
	if p.Equity != nil {
		c = append(c, db.Set("equity", db.Float(*p.Equity)))
	}
	return c
}

// JobFilter narrows FindAll.
type JobFilter struct {
	Title     string `mapstructure:"title"`
	MinSalary *int   `mapstructure:"minSalary" validate:"omitempty,min=0"`
	// HasEquity limits results to jobs with equity > 0 when true.
	HasEquity bool `mapstructure:"hasEquity"`
}
