// Command migrate applies jobly's embedded schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"

	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/migrations"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fatalf("config: %v", err)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	m, err := open(cfg.Database)
	if err != nil {
		fatalf("migration init failed: %v", err)
	}
	defer m.Close()

	m.Log = &migrateLogger{verbose: cfg.LogLevel == "debug"}

	command := args[0]
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf("up failed: %v", err)
		}
		slog.Info("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf("down failed: %v", err)
		}
		slog.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fatalf("version failed: %v", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			fatalf("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatalf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			fatalf("force failed: %v", err)
		}
		slog.Info("migrations: forced", "version", v)

	case "drop":
		if cfg.IsProduction() {
			fatalf("drop: refused in production")
		}
		fmt.Fprintln(os.Stderr, "WARNING: drop will destroy all tables. Type 'yes' to confirm:")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" {
			fmt.Println("aborted")
			os.Exit(0)
		}
		if err := m.Drop(); err != nil {
			fatalf("drop failed: %v", err)
		}
		slog.Info("migrations: all tables dropped")

	default:
		usage()
		os.Exit(1)
	}
}

// open pairs the embedded migrations for the configured driver with a
// golang-migrate database URL.
func open(db config.DatabaseConfig) (*migrate.Migrate, error) {
	dialect, err := migrations.Dialect(db.Driver)
	if err != nil {
		return nil, err
	}
	src, err := migrations.Source(dialect)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, databaseURL(dialect, db.URL))
}

// databaseURL adds the scheme golang-migrate dispatches on. SQLite DSNs are
// plain paths for database/sql but need sqlite3:// here.
func databaseURL(dialect, dsn string) string {
	if dialect == "sqlite" && !strings.HasPrefix(dsn, "sqlite3://") {
		return "sqlite3://" + dsn
	}
	return dsn
}

// ─────────────────────────────────────────────────────────────────────────────

type migrateLogger struct{ verbose bool }

func (l *migrateLogger) Printf(format string, v ...any) {
	slog.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
func (l *migrateLogger) Verbose() bool { return l.verbose }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Rollback N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)
  drop         Drop all tables (not in production)

Environment:
  DATABASE_URL   Database DSN (defaults per GO_ENV)
  DB_DRIVER      postgres, pgx, sqlite3 or sqlite (default: postgres)
  JOBLY_CONFIG   Optional TOML file`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
