// Package errors provides coded errors for precondition and I/O failures.
//
// Extraction misses and validation failures are not errors in this module;
// they surface as empty values and validation issues. The codes here cover
// the cases where a caller handed over something unusable or a file could
// not be read or written.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents a standardized internal error code.
type ErrorCode string

const (
	ErrCodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	ErrCodeInvalidDialect    ErrorCode = "INVALID_DIALECT"
	ErrCodeFileReadFailed    ErrorCode = "FILE_READ_FAILED"
	ErrCodeOutputWriteFailed ErrorCode = "OUTPUT_WRITE_FAILED"
	ErrCodeSchemaViolation   ErrorCode = "SCHEMA_VIOLATION"
	ErrCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidArgumentError reports a precondition violation such as a nil input.
func NewInvalidArgumentError(details string) *StandardError {
	return newError(ErrCodeInvalidArgument, "invalid argument", details, nil)
}

// NewInvalidDialectError reports a dialect tag that no parser handles.
func NewInvalidDialectError(tag string) *StandardError {
	return newError(ErrCodeInvalidDialect, "unsupported dialect", fmt.Sprintf("dialect: %q", tag), nil)
}

// NewFileReadError wraps a failure to read an input document.
func NewFileReadError(path string, err error) *StandardError {
	return newError(ErrCodeFileReadFailed, "failed to read input", fmt.Sprintf("path: %s, error: %v", path, err), err)
}

// NewOutputWriteError wraps a failure to write an output artifact.
func NewOutputWriteError(path string, err error) *StandardError {
	return newError(ErrCodeOutputWriteFailed, "failed to write output", fmt.Sprintf("path: %s, error: %v", path, err), err)
}

// NewSchemaViolationError reports an output document that failed its JSON schema.
func NewSchemaViolationError(details string) *StandardError {
	return newError(ErrCodeSchemaViolation, "output does not match schema", details, nil)
}

// NewConfigInvalidError wraps a configuration problem.
func NewConfigInvalidError(details string, err error) *StandardError {
	return newError(ErrCodeConfigInvalid, "invalid configuration", details, err)
}

// NewValidationFailedError reports a document whose canonical fields failed validation.
func NewValidationFailedError(errorCount int) *StandardError {
	return newError(ErrCodeValidationFailed, "validation failed", fmt.Sprintf("%d error(s)", errorCount), nil)
}

// HasCode reports whether err, or any error it wraps, is a StandardError with code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// CodeOf returns the code of the first StandardError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}
