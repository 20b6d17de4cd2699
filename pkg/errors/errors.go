// Package errors provides structured error types for bomgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, pipeline, and server
//   - Machine-readable error codes for programmatic handling
//   - Aggregated errors that report every contributing cause of a
//     strict-mode failure in one value
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: input and configuration validation failures
//   - DATA_QUALITY / UNRESOLVED_NAME / AMBIGUOUS_NAME / STRUCTURAL_CYCLE:
//     the resolution and graph-construction taxonomy
//   - EMIT_* / INTERNAL_*: infrastructure failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "no parts file given")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeEmit, origErr, "emit to %s", target)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPolicy   Code = "INVALID_POLICY"
	ErrCodeInvalidEdgeFile Code = "INVALID_EDGE_FILE"
	ErrCodeInvalidPartFile Code = "INVALID_PART_FILE"

	// Resolution and graph-construction taxonomy
	ErrCodeDataQuality     Code = "DATA_QUALITY"
	ErrCodeUnresolvedName  Code = "UNRESOLVED_NAME"
	ErrCodeAmbiguousName   Code = "AMBIGUOUS_NAME"
	ErrCodeStructuralCycle Code = "STRUCTURAL_CYCLE"

	// Resource not found
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Infrastructure errors
	ErrCodeEmit     Code = "EMIT_FAILED"
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error or *Aggregate with a
// matching code.
func Is(err error, code Code) bool {
	// An aggregate outranks its causes; its code summarizes them.
	var a *Aggregate
	if errors.As(err, &a) {
		return a.Code == code
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var a *Aggregate
	if errors.As(err, &a) {
		return a.Code
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For coded errors, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Aggregate is a fatal error carrying every contributing cause, used where
// a run must fail with a complete itemized list (strict-mode resolution)
// rather than just the first problem encountered.
type Aggregate struct {
	Code    Code
	Message string
	Causes  []error
}

// NewAggregate creates an Aggregate, or returns nil if causes is empty.
func NewAggregate(code Code, message string, causes []error) *Aggregate {
	if len(causes) == 0 {
		return nil
	}
	return &Aggregate{Code: code, Message: message, Causes: causes}
}

// Error lists the message followed by every cause, one per line.
func (a *Aggregate) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%d issues)", a.Code, a.Message, len(a.Causes))
	for _, c := range a.Causes {
		b.WriteString("\n  - ")
		b.WriteString(c.Error())
	}
	return b.String()
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (a *Aggregate) Unwrap() []error { return a.Causes }
