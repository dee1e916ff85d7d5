package db

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates database-specific behaviour: the database/sql driver
// name and how to build a DSN from structured options.
//
// Registering a Driver does not register the database/sql driver itself;
// the binary must still blank-import the driver package.
type Driver interface {
	// Name returns the name passed to sql.Register, e.g. "postgres".
	Name() string

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)
}

// DriverOptions carries common connection parameters in a driver-agnostic
// form.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-full", ...
	// Extra holds driver-specific parameters.
	Extra map[string]string
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds d to the registry, replacing any driver of that name.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("jobly/db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver opens a DB through a registered Driver and structured
// options instead of a hand-written DSN.
//
//	d, err := db.OpenWithDriver("pgx", db.DriverOptions{
//	    Host: "localhost", User: "jobly", Database: "jobly",
//	}, db.Config{MaxOpenConns: 25})
func OpenWithDriver(driverName string, opts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}
	dsn, err := drv.DSN(opts)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: DSN construction failed: %w", err)
	}
	cfg.DriverName = drv.Name()
	cfg.DSN = dsn
	return Open(cfg)
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq and pgx share the URL form)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver builds postgres:// URLs. name selects the database/sql
// driver: "postgres" for lib/pq, "pgx" for jackc/pgx/v5/stdlib.
type PostgresDriver struct{ name string }

func (p PostgresDriver) Name() string { return p.name }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("postgres driver: Database is required")
	}
	host := o.Host
	if host == "" {
		host = "localhost"
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + o.Database,
	}
	switch {
	case o.User != "" && o.Password != "":
		u.User = url.UserPassword(o.User, o.Password)
	case o.User != "":
		u.User = url.User(o.User)
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3 registers "sqlite3", modernc.org/sqlite "sqlite")
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver builds file DSNs with query-string pragmas.
type SQLiteDriver struct{ name string }

func (s SQLiteDriver) Name() string { return s.name }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+o.Extra[k])
	}
	return o.Database + "?" + strings.Join(pairs, "&"), nil
}

func init() {
	RegisterDriver(PostgresDriver{name: "postgres"})
	RegisterDriver(PostgresDriver{name: "pgx"})
	RegisterDriver(SQLiteDriver{name: "sqlite3"})
	RegisterDriver(SQLiteDriver{name: "sqlite"})
}
