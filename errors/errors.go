// Package errors provides structured error types for spriteatlas.
//
// Every failure surfaced by the packer, the compositor and the collaborators
// around them carries a [Code], so callers can tell an infeasible packing
// apart from a broken config or an unreadable file without matching strings.
//
//	err := errors.New(errors.ErrCodePackingInfeasible, "%d sprites do not fit in %dx%d", n, w, h)
//	if errors.Is(err, errors.ErrCodePackingInfeasible) {
//	    // raise max_size or enable rotation
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeNoTemplate    Code = "NO_TEMPLATE"
	ErrCodeDuplicateName Code = "DUPLICATE_NAME"

	// Packing errors
	ErrCodePackingInfeasible Code = "PACKING_INFEASIBLE"
	ErrCodeGeometryViolation Code = "INTERNAL_GEOMETRY_VIOLATION"

	// I/O and (de)serialization errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeIO           Code = "IO"
	ErrCodeDecode       Code = "DECODE"
	ErrCodeEncode       Code = "ENCODE"

	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
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

// Fatal reports whether err signals a defect rather than bad input.
// The pipeline never tolerates these.
func Fatal(err error) bool {
	return Is(err, ErrCodeGeometryViolation)
}
