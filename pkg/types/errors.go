package types

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap these so callers can use errors.Is.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrDetached     = errors.New("no store attached")
	ErrInvalidLabel = errors.New("label must not be empty")
	ErrInvalidID    = errors.New("invalid entity ID")
	ErrNoSchema     = errors.New("store has no schema")

	ErrInvalidDatatype = errors.New("datatype must not be empty")
	ErrForeignID       = errors.New("id does not belong to the given parent")
)

// SchemaError reports that the schema setup or migration script failed.
type SchemaError struct {
	Script string // "schema" or "migrate", or the path of a custom script.
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.Script, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// StoreError reports that an individual statement against the engine failed:
// bad SQL, a constraint violation, or a missing row.
type StoreError struct {
	Op  string // Store operation, e.g. "add column".
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PersistenceError reports that exporting the database or reading/writing
// the blob on disk failed.
type PersistenceError struct {
	Op   string // "export", "read", or "write".
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError reports that a local precondition failed before anything
// reached the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError for op. It returns nil when err
// is nil and does not rewrap an existing StoreError.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is, or wraps, a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsPersistenceError reports whether err is, or wraps, a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
