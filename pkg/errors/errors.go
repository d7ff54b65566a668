// Package errors provides structured error types for pinbump.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Process exit codes carried by the error itself
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - PATH_*: Target directory failures
//   - NETWORK_*: Registry and transport failures
//   - FILE_*: Reading or writing manifests
//
// # Exit Codes
//
// An [Error] may carry an explicit process exit code. [ExitCode] resolves
// the code for any error: 0 for nil, the carried code when set, and 1
// otherwise.
//
//	err := errors.New(errors.ErrCodePathEscape, "%s is outside %s", dir, cwd).
//	    WithExitCode(errors.ExitPathEscape)
//	os.Exit(errors.ExitCode(err)) // 10
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Target directory errors
	ErrCodePathEscape Code = "PATH_ESCAPE"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// File errors
	ErrCodeFileRead  Code = "FILE_READ"
	ErrCodeFileWrite Code = "FILE_WRITE"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitPathEscape = 10
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code     Code   // Machine-readable error code
	Message  string // Human-readable message
	Cause    error  // Underlying error (optional)
	ExitCode int    // Process exit code; 0 means ExitFailure
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithExitCode sets the process exit code reported by [ExitCode] and
// returns e for chaining.
func (e *Error) WithExitCode(code int) *Error {
	e.ExitCode = code
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitCode returns the process exit code for err.
// The outermost *Error carrying a non-zero exit code wins.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.ExitCode != 0 {
			return e.ExitCode
		}
	}
	return ExitFailure
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix,
// followed by the cause if there is one.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
