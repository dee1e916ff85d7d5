// Package repotest builds migrated, seeded in-memory SQLite databases for
// tests of the repo and api packages.
package repotest

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
)

// Password is the plain-text password of every seeded user.
const Password = "password1"

// Hasher returns an argon2id hasher cheap enough for test suites.
func Hasher() auth.PasswordHasher {
	return auth.NewArgon2Hasher(auth.Argon2Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 32, SaltLen: 16})
}

// NewDB opens a private in-memory database with the schema applied.
// The pool is limited to one connection so every statement sees the same
// database.
func NewDB(t testing.TB, hooks ...db.Hook) *db.DB {
	t.Helper()

	d, err := db.Open(db.Config{
		DSN:          ":memory:?_foreign_keys=on",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
		Hooks:        hooks,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := migrations.Up(d.Raw(), "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

// Fixture describes what Seed inserted.
type Fixture struct {
	Companies []string
	Users     []string
	// JobIDs lists j1, j2, j3 in order.
	JobIDs []int64
}

func intPtr(n int) *int { return &n }
func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string { return &s }

// Seed inserts companies c1..c3, jobs j1..j3 and users u1 (admin), u2 and
// u3. u1 has applied to j1.
func Seed(t testing.TB, d *db.DB) Fixture {
	t.Helper()
	ctx := context.Background()
	hasher := Hasher()

	companies := []models.CreateCompanyParams{
		{Handle: "c1", Name: "C1", Description: "Desc1", NumEmployees: intPtr(1), LogoURL: strPtr("http://c1.img")},
		{Handle: "c2", Name: "C2", Description: "Desc2", NumEmployees: intPtr(2), LogoURL: strPtr("http://c2.img")},
		{Handle: "c3", Name: "C3", Description: "Desc3", NumEmployees: intPtr(3), LogoURL: strPtr("http://c3.img")},
	}
	err := d.ExecTx(ctx, func(tx *db.Tx) error {
		_, err := repo.NewCompanyRepo(tx).CreateMany(ctx, companies)
		return err
	})
	if err != nil {
		t.Fatalf("seed companies: %v", err)
	}

	jobs := []models.CreateJobParams{
		{Title: "j1", Salary: intPtr(100), Equity: floatPtr(0.1), CompanyHandle: "c1"},
		{Title: "j2", Salary: intPtr(200), Equity: floatPtr(0.2), CompanyHandle: "c1"},
		{Title: "j3", Salary: intPtr(300), Equity: floatPtr(0), CompanyHandle: "c2"},
	}
	err = db.BatchExec(d, ctx,
		`INSERT INTO jobs (title, salary, equity, company_handle) VALUES ($1, $2, $3, $4)`,
		jobs,
		func(j models.CreateJobParams) []any { return []any{j.Title, j.Salary, j.Equity, j.CompanyHandle} })
	if err != nil {
		t.Fatalf("seed jobs: %v", err)
	}

	hash, err := hasher.Hash(Password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := []models.User{
		{Username: "u1", FirstName: "U1F", LastName: "U1L", Email: "user1@user.com", IsAdmin: true},
		{Username: "u2", FirstName: "U2F", LastName: "U2L", Email: "user2@user.com"},
		{Username: "u3", FirstName: "U3F", LastName: "U3L", Email: "user3@user.com"},
	}
	err = db.BatchExec(d, ctx,
		`INSERT INTO users (username, password, first_name, last_name, email, is_admin) VALUES ($1, $2, $3, $4, $5, $6)`,
		users,
		func(u models.User) []any { return []any{u.Username, hash, u.FirstName, u.LastName, u.Email, u.IsAdmin} })
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}

	if err := repo.NewUserRepo(d, hasher).ApplyToJob(ctx, "u1", 1); err != nil {
		t.Fatalf("seed application: %v", err)
	}

	return Fixture{
		Companies: []string{"c1", "c2", "c3"},
		Users:     []string{"u1", "u2", "u3"},
		JobIDs:    []int64{1, 2, 3},
	}
}
