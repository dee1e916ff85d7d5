package models

import "github.com/Skryldev/jobly/db"

// Company represents a row in the "companies" table.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyWithJobs is a company together with its open jobs.
type CompanyWithJobs struct {
	Company
	Jobs []Job `json:"jobs"`
}

// CreateCompanyParams holds the fields accepted when creating a company.
type CreateCompanyParams struct {
	Handle       string  `json:"handle" validate:"required,min=1,max=25,lowercase"`
	Name         string  `json:"name" validate:"required,min=1"`
	Description  string  `json:"description" validate:"required"`
	NumEmployees *int    `json:"numEmployees" validate:"omitempty,min=0"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
}

// UpdateCompanyParams holds the updatable company fields. Nil means
// "leave unchanged". The handle cannot be changed.
type UpdateCompanyParams struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Description  *string `json:"description"`
	NumEmployees *int    `json:"numEmployees" validate:"omitempty,min=0"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
}

// Changes lists the set fields, in declaration order, under their API names.
func (p UpdateCompanyParams) Changes() db.Changes {
	var c db.Changes
	if p.Name != nil {
		c = append(c, db.Set("name", db.String(*p.Name)))
	}
	if p.Description != nil {
		c = append(c, db.Set("description", db.String(*p.Description)))
	}
	if p.NumEmployees != nil {
		c = append(c, db.Set("numEmployees", db.Int(int64(*p.NumEmployees))))
	}
	if p.LogoURL != nil {
		c = append(c, db.Set("logoUrl", db.String(*p.LogoURL)))
	}
	return c
}

// CompanyFilter narrows FindAll. Zero values disable a criterion.
type CompanyFilter struct {
	// Name matches case-insensitively anywhere in the company name.
	Name         string `mapstructure:"name"`
	MinEmployees *int   `mapstructure:"minEmployees" validate:"omitempty,min=0"`
	MaxEmployees *int   `mapstructure:"maxEmployees" validate:"omitempty,min=0"`
}
