// Package clierr carries process exit codes through command errors.
package clierr

import (
	"errors"
	"fmt"
)

const (
	// ExitFailure is used for runtime failures (git, database, network).
	ExitFailure = 1
	// ExitUsage is used for invalid flags or input files.
	ExitUsage = 2
)

// ExitError is an error that knows which exit code the process should use.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// Usage creates an ExitError for invalid input.
func Usage(format string, args ...any) error {
	return &ExitError{code: ExitUsage, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if code <= 0 {
		code = ExitFailure
	}
	return &ExitError{code: code, msg: msg, cause: cause}
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return ExitFailure
}
