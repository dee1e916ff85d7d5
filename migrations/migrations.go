// Package migrations embeds the schema for each supported SQL dialect and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dialect returns the migration directory for a database/sql driver name.
func Dialect(driverName string) (string, error) {
	switch driverName {
	case "postgres", "pgx":
		return "postgres", nil
	case "sqlite3", "sqlite":
		return "sqlite", nil
	}
	return "", fmt.Errorf("migrations: unsupported driver %q", driverName)
}

// Source returns the embedded migrations for dialect as a migrate source.
func Source(dialect string) (source.Driver, error) {
	return iofs.New(files, dialect)
}

// Up applies every pending migration to an open pool. ErrNoChange is not an
// error.
//
// The migrate instance is left open: closing it would close raw.
func Up(raw *sql.DB, driverName string) error {
	m, err := newWithInstance(raw, driverName)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

func newWithInstance(raw *sql.DB, driverName string) (*migrate.Migrate, error) {
	dialect, err := Dialect(driverName)
	if err != nil {
		return nil, err
	}
	src, err := Source(dialect)
	if err != nil {
		return nil, fmt.Errorf("migrations: source: %w", err)
	}

	var (
		drv     database.Driver
		drvName string
	)
	switch dialect {
	case "postgres":
		drv, err = postgres.WithInstance(raw, &postgres.Config{})
		drvName = "postgres"
	case "sqlite":
		drv, err = sqlite3.WithInstance(raw, &sqlite3.Config{})
		drvName = "sqlite3"
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: database: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, drvName, drv)
}
