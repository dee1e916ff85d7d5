package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines user persistence, including credentials and job
// applications.
type UserRepository interface {
	Register(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, username string) (*models.UserWithJobs, error)
	Update(ctx context.Context, username string, params models.UpdateUserParams) (*models.User, error)
	Remove(ctx context.Context, username string) error
	ApplyToJob(ctx context.Context, username string, jobID int64) error
}

// ─────────────────────────────────────────────────────────────────────────────
// userRepo
// ─────────────────────────────────────────────────────────────────────────────

type userRepo struct {
	q      db.Querier
	hasher auth.PasswordHasher
}

// NewUserRepo returns a UserRepository backed by q. Passwords are hashed
// with hasher before they reach the database.
func NewUserRepo(q db.Querier, hasher auth.PasswordHasher) UserRepository {
	return &userRepo{q: q, hasher: hasher}
}

var userColumns = db.ColumnMap{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const (
	userFields = `username, first_name, last_name, email, is_admin`

	sqlInsertUser = `
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userFields

	sqlGetUserWithPassword = `
		SELECT ` + userFields + `, password
		FROM   users
		WHERE  username = $1`

	sqlListUsers = `
		SELECT ` + userFields + `
		FROM   users
		ORDER  BY username`

	sqlGetUser = `
		SELECT ` + userFields + `
		FROM   users
		WHERE  username = $1`

	sqlUserApplications = `
		SELECT job_id
		FROM   applications
		WHERE  username = $1
		ORDER  BY job_id`

	sqlJobExists = `
		SELECT id FROM jobs WHERE id = $1`

	sqlUserExists = `
		SELECT username FROM users WHERE username = $1`

	sqlInsertApplication = `
		INSERT INTO applications (username, job_id)
		VALUES ($1, $2)`

	sqlDeleteUser = `
		DELETE FROM users WHERE username = $1`
)

// ─────────────────────────────────────────────────────────────────────────────
// Register / Authenticate
// ─────────────────────────────────────────────────────────────────────────────

// Register hashes the password and inserts the user. A taken username
// yields a *DuplicateError.
func (r *userRepo) Register(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	hash, err := r.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	row := r.q.QueryRow(ctx, sqlInsertUser, p.Username, hash, p.FirstName, p.LastName, p.Email, p.IsAdmin)
	u, err := scanUser(row)
	return u, wrap(err, "user", p.Username)
}

// Authenticate returns the user when password matches, ErrInvalidCredentials
// otherwise.
func (r *userRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u := &models.User{}
	var hash string
	err := r.q.QueryRow(ctx, sqlGetUserWithPassword, username).
		Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin, &hash)
	if db.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, wrap(err, "user", username)
	}
	if !r.hasher.Verify(password, hash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// FindAll lists every user ordered by username.
func (r *userRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, sqlListUsers)
	if err != nil {
		return nil, wrap(err, "user", "")
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repo/user: scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns the user and the ids of the jobs they applied to.
func (r *userRepo) Get(ctx context.Context, username string) (*models.UserWithJobs, error) {
	u, err := scanUser(r.q.QueryRow(ctx, sqlGetUser, username))
	if err != nil {
		return nil, wrap(err, "user", username)
	}

	rows, err := r.q.Query(ctx, sqlUserApplications, username)
	if err != nil {
		return nil, wrap(err, "application", username)
	}
	defer rows.Close()

	out := &models.UserWithJobs{User: *u, Jobs: []int64{}}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo/user: scan: %w", err)
		}
		out.Jobs = append(out.Jobs, id)
	}
	return out, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Update / Remove
// ─────────────────────────────────────────────────────────────────────────────

// Update applies the non-nil fields of params. A new password is hashed
// before it is bound.
func (r *userRepo) Update(ctx context.Context, username string, params models.UpdateUserParams) (*models.User, error) {
	changes := params.Changes()
	for i, c := range changes {
		if c.Field != "password" {
			continue
		}
		hash, err := r.hasher.Hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("repo/user: %w", err)
		}
		changes[i].Value = db.String(hash)
	}

	clause, err := db.PartialUpdate(changes, userColumns)
	if err != nil {
		return nil, err
	}
	query, args := clause.Update("users", "username", username, userFields)
	u, err := scanUser(r.q.QueryRow(ctx, query, args...))
	return u, wrap(err, "user", username)
}

// Remove deletes a user and, by cascade, their applications.
func (r *userRepo) Remove(ctx context.Context, username string) error {
	return wrap(deleteOne(ctx, r.q, sqlDeleteUser, username), "user", username)
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyToJob
// ─────────────────────────────────────────────────────────────────────────────

// ApplyToJob records that username applied to jobID. Either one missing
// yields a *NotFoundError; applying twice a *DuplicateError.
func (r *userRepo) ApplyToJob(ctx context.Context, username string, jobID int64) error {
	var id int64
	if err := r.q.QueryRow(ctx, sqlJobExists, jobID).Scan(&id); err != nil {
		return wrap(err, "job", jobID)
	}
	var name string
	if err := r.q.QueryRow(ctx, sqlUserExists, username).Scan(&name); err != nil {
		return wrap(err, "user", username)
	}
	_, err := r.q.Exec(ctx, sqlInsertApplication, username, jobID)
	return wrap(err, "application", jobID)
}

// ─────────────────────────────────────────────────────────────────────────────
// scanUser
// ─────────────────────────────────────────────────────────────────────────────

// scanUser reads the userFields column list.
func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	if err := s.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
		return nil, err
	}
	return u, nil
}

var _ UserRepository = (*userRepo)(nil)
