package repo

import (
	"errors"
	"fmt"

	"github.com/Skryldev/jobly/db"
)

var (
	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username or a wrong password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid username/password")

	// ErrInvalidFilter is returned by FindAll for contradictory criteria.
	ErrInvalidFilter = errors.New("invalid filter")
)

// NotFoundError names the missing record. It matches db.ErrNotFound.
type NotFoundError struct {
	Entity string
	Key    any
	Cause  error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("no %s: %v", e.Entity, e.Key) }
func (e *NotFoundError) Is(target error) bool { return target == db.ErrNotFound }
func (e *NotFoundError) Unwrap() error { return e.Cause }

// DuplicateError names the conflicting key. It matches db.ErrDuplicateKey.
type DuplicateError struct {
	Entity string
	Key    any
	Cause  error
}

func (e *DuplicateError) Error() string { return fmt.Sprintf("duplicate %s: %v", e.Entity, e.Key) }
func (e *DuplicateError) Is(target error) bool { return target == db.ErrDuplicateKey }
func (e *DuplicateError) Unwrap() error { return e.Cause }

// wrap decorates mapped db errors with the entity they concern.
func wrap(err error, entity string, key any) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return &NotFoundError{Entity: entity, Key: key, Cause: err}
	case db.IsDuplicateKey(err):
		return &DuplicateError{Entity: entity, Key: key, Cause: err}
	}
	return fmt.Errorf("repo/%s: %w", entity, err)
}

// whereBuilder accumulates AND-ed conditions with $n placeholders numbered
// in order of appearance.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends cond, whose single %d verb receives the placeholder index.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	s := " WHERE " + w.conds[0]
	for _, c := range w.conds[1:] {
		s += " AND " + c
	}
	return s
}
