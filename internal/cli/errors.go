package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1 // bad arguments, unknown ids, uninitialized vault
	exitSysError  = 2 // disk, schema, or engine failures
)

// ExitError carries the exit code a command failed with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func userError(format string, args ...any) *ExitError {
	return &ExitError{Code: exitUserError, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	switch {
	case types.IsValidationError(err),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidLabel),
		errors.Is(err, types.ErrNoSchema):
		return exitUserError
	case types.IsPersistenceError(err), types.IsStoreError(err):
		return exitSysError
	}
	var se *types.SchemaError
	if errors.As(err, &se) {
		return exitSysError
	}
	// Flag and argument errors from cobra.
	return exitUserError
}
