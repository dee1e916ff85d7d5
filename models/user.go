package models

import "github.com/Skryldev/jobly/db"

// User represents a row in the "users" table, without the password hash.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UserWithJobs adds the ids of the jobs the user applied to.
type UserWithJobs struct {
	User
	Jobs []int64 `json:"jobs"`
}

// CreateUserParams holds the fields required to register a user.
// Password is plain text here; the repository hashes it.
type CreateUserParams struct {
	Username  string `json:"username" validate:"required,min=1,max=25"`
	Password  string `json:"password" validate:"required,min=5,max=20"`
	FirstName string `json:"firstName" validate:"required,min=1,max=30"`
	LastName  string `json:"lastName" validate:"required,min=1,max=30"`
	Email     string `json:"email" validate:"required,email,min=6,max=60"`
	IsAdmin   bool   `json:"isAdmin"`
}

// RegisterUserParams is the self-service signup body. It has no IsAdmin
// field, so a request carrying one is rejected as unknown.
type RegisterUserParams struct {
	Username  string `json:"username" validate:"required,min=1,max=25"`
	Password  string `json:"password" validate:"required,min=5,max=20"`
	FirstName string `json:"firstName" validate:"required,min=1,max=30"`
	LastName  string `json:"lastName" validate:"required,min=1,max=30"`
	Email     string `json:"email" validate:"required,email,min=6,max=60"`
}

// CreateParams converts a signup into a non-admin user.
func (p RegisterUserParams) CreateParams() CreateUserParams {
	return CreateUserParams{
		Username:  p.Username,
		Password:  p.Password,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

// UpdateUserParams holds the updatable user fields. The username cannot
// change. A new Password is hashed before it is stored.
type UpdateUserParams struct {
	Password  *string `json:"password" validate:"omitempty,min=5,max=20"`
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=30"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=30"`
	Email     *string `json:"email" validate:"omitempty,email,min=6,max=60"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// Changes lists the set fields under their API names. The password, when
// present, is emitted as-is; callers replace it with its hash.
func (p UpdateUserParams) Changes() db.Changes {
	var c db.Changes
	if p.Password != nil {
		c = append(c, db.Set("password", db.String(*p.Password)))
	}
	if p.FirstName != nil {
		c = append(c, db.Set("firstName", db.String(*p.FirstName)))
	}
	if p.LastName != nil {
		c = append(c, db.Set("lastName", db.String(*p.LastName)))
	}
	if p.Email != nil {
		c = append(c, db.Set("email", db.String(*p.Email)))
	}
	if p.IsAdmin != nil {
		c = append(c, db.Set("isAdmin", db.Bool(*p.IsAdmin)))
	}
	return c
}

// LoginParams is the body of a token request.
type LoginParams struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}
