package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("jobly/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("jobly/db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("jobly/db: foreign key violation")

	// ErrDeadlock is returned when the database detects a deadlock.
	ErrDeadlock = errors.New("jobly/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline.
	ErrTimeout = errors.New("jobly/db: query timeout")

	// ErrCheckViolation is returned when a CHECK constraint is violated.
	ErrCheckViolation = errors.New("jobly/db: check constraint violation")

	// ErrConnectionFailed is returned when the driver cannot reach the server.
	ErrConnectionFailed = errors.New("jobly/db: connection failed")

	// ErrEmptyUpdate is returned by PartialUpdate when there is nothing to
	// set. It is a client error: the request carried no data.
	ErrEmptyUpdate = errors.New("jobly/db: no data to update")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsDeadlock(err error) bool { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }
func IsCheckViolation(err error) bool { return errors.Is(err, ErrCheckViolation) }
func IsEmptyUpdate(err error) bool { return errors.Is(err, ErrEmptyUpdate) }

// IsTransient reports whether retrying the operation may succeed.
func IsTransient(err error) bool {
	return IsDeadlock(err) || IsTimeout(err) || errors.Is(err, ErrConnectionFailed)
}

// ─────────────────────────────────────────────────────────────────────────────
// DBError
// ─────────────────────────────────────────────────────────────────────────────

// DBError pairs a sentinel with the original driver error, so callers can use
// errors.Is(err, ErrDuplicateKey) or dig into Cause for driver detail.
type DBError struct {
	// Sentinel is one of the package-level Err* variables.
	Sentinel error
	// Cause is the original driver error.
	Cause error
	// Constraint names the violated constraint when the driver reports it.
	Constraint string
}

func (e *DBError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Sentinel, e.Constraint, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package sentinels.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles lib/pq, pgx and both SQLite drivers.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	if mapped := mapPQError(err); mapped != nil {
		return mapped
	}
	if mapped := mapPGXError(err); mapped != nil {
		return mapped
	}
	if mapped := mapSQLiteError(err); mapped != nil {
		return mapped
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL
// ─────────────────────────────────────────────────────────────────────────────

func mapPQError(err error) error {
	var pqe *pq.Error
	if !errors.As(err, &pqe) {
		return nil
	}
	return mapByPGCode(string(pqe.Code), pqe.Constraint, err)
}

func mapPGXError(err error) error {
	var pge *pgconn.PgError
	if !errors.As(err, &pge) {
		return nil
	}
	return mapByPGCode(pge.Code, pge.ConstraintName, err)
}

// SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code, constraint string, cause error) error {
	var sentinel error
	switch code {
	case "23505": // unique_violation
		sentinel = ErrDuplicateKey
	case "23503": // foreign_key_violation
		sentinel = ErrForeignKeyViolation
	case "23514": // check_violation
		sentinel = ErrCheckViolation
	case "40P01": // deadlock_detected
		sentinel = ErrDeadlock
	case "57014": // query_canceled
		sentinel = ErrTimeout
	case "08000", "08003", "08006", "08001", "08004", "08007", "08P01":
		sentinel = ErrConnectionFailed
	default:
		return nil
	}
	return &DBError{Sentinel: sentinel, Cause: cause, Constraint: constraint}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3 and modernc.org/sqlite share the message text)
// ─────────────────────────────────────────────────────────────────────────────

func mapSQLiteError(err error) error {
	s := err.Error()
	switch {
	case strings.Contains(s, "UNIQUE constraint failed"),
		strings.Contains(s, "PRIMARY KEY constraint failed"):
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case strings.Contains(s, "FOREIGN KEY constraint failed"):
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
	case strings.Contains(s, "CHECK constraint failed"):
		return &DBError{Sentinel: ErrCheckViolation, Cause: err}
	case strings.Contains(s, "database is locked"):
		return &DBError{Sentinel: ErrDeadlock, Cause: err}
	}
	return nil
}

// ChainMapper tries each mapper in order and returns the first result that
// differs from its input.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}
