package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Skryldev/jobly/db"
)

// The pure-Go driver binds $n by ordinal, like lib/pq and pgx.
func TestPartialUpdate_ModerncSQLite(t *testing.T) {
	d, err := db.OpenWithDriver("sqlite", db.DriverOptions{
		Database: ":memory:",
		Extra:    map[string]string{"_pragma": "foreign_keys(1)"},
	}, db.Config{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()
	_, err = d.Exec(ctx, `CREATE TABLE users (
		username   TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE
	)`)
	require.NoError(t, err)
	_, err = d.Exec(ctx, `INSERT INTO users (username, first_name) VALUES ($1, $2)`, "u1", "Old")
	require.NoError(t, err)

	clause, err := db.PartialUpdate(db.Changes{
		db.Set("firstName", db.String("New")),
		db.Set("isAdmin", db.Bool(true)),
	}, db.ColumnMap{"firstName": "first_name", "isAdmin": "is_admin"})
	require.NoError(t, err)

	query, args := clause.Update("users", "username", "u1", "username, first_name, is_admin")
	var (
		username, first string
		admin           bool
	)
	require.NoError(t, d.QueryRow(ctx, query, args...).Scan(&username, &first, &admin))
	assert.Equal(t, "u1", username)
	assert.Equal(t, "New", first)
	assert.True(t, admin)

	query, args = clause.Update("users", "username", "nope", "username")
	err = d.QueryRow(ctx, query, args...).Scan(&username)
	assert.True(t, db.IsNotFound(err))

	_, err = d.Exec(ctx, `INSERT INTO users (username, first_name) VALUES ($1, $2)`, "u1", "Dup")
	assert.True(t, db.IsDuplicateKey(err), "got %v", err)
}
