// Package errs defines the error kinds shared by the options store, the
// palette and the key binding table.
package errs

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching.
var (
	// ErrParse indicates a malformed chord or color specification.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a request that is well formed but not acceptable,
	// such as an unknown function name or an empty chord set.
	ErrValidation = errors.New("validation failed")

	// ErrNoOp indicates a non-fatal condition worth reporting to the user.
	ErrNoOp = errors.New("no-op")
)

// ParseError describes a specification string that could not be parsed.
type ParseError struct {
	// Input is the full string being parsed.
	Input string
	// Segment is the offending part of Input, if known.
	Segment string
	// Message describes the problem.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// NewParseError creates a ParseError.
func NewParseError(input, segment, message string) *ParseError {
	return &ParseError{Input: input, Segment: segment, Message: message}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Segment != "" && e.Segment != e.Input {
		return fmt.Sprintf("parse %q: %s %q", e.Input, e.Message, e.Segment)
	}
	return fmt.Sprintf("parse %q: %s", e.Input, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse as a match.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ValidationError describes a rejected request field.
type ValidationError struct {
	// Field names the request field that failed.
	Field string
	// Message describes the validation failure.
	Message string
	// Value is the rejected value.
	Value any
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Warning is a non-fatal diagnostic. Operations that produce warnings still
// succeed; the warning is returned alongside the result.
type Warning struct {
	// Subject identifies what the warning is about, e.g. a chord.
	Subject string
	// Message describes the condition.
	Message string
}

// Error implements the error interface so warnings can be logged and joined
// like any other error.
func (w *Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Subject, w.Message)
}

// Is reports ErrNoOp as a match.
func (w *Warning) Is(target error) bool {
	return target == ErrNoOp
}
