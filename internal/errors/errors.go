// Package errors provides structured errors for the reflow engine.
//
// Every engine-raised error carries a stable code so hosts can match on it
// without string comparison, plus an optional suggestion for the developer.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups errors by the part of the engine that raised them.
type Category string

const (
	CategoryLedger    Category = "ledger"
	CategoryLifecycle Category = "lifecycle"
	CategoryConfig    Category = "config"
)

// Code is a stable error identifier (e.g. "R001").
type Code string

const (
	// CodeLedgerOrder is raised when the hook call sequence of an instance
	// diverges between renders. Non-recoverable.
	CodeLedgerOrder Code = "R001"

	// CodeSlotKind is raised when a slot is revisited as a different hook
	// kind (for example UseState where the previous render called UseMemo).
	// A special case of a ledger order violation.
	CodeSlotKind Code = "R002"

	// CodePhase is raised when a coordinator operation is invoked in the
	// wrong state (commit before render, deferred commit before the paint
	// barrier is released, re-entrant render).
	CodePhase Code = "R003"

	// CodeUnmounted is raised when an operation targets an instance that
	// has been torn down.
	CodeUnmounted Code = "R004"
)

// Error is a structured engine error.
type Error struct {
	// Code is the stable error identifier.
	Code Code

	// Category is the part of the engine that raised the error.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, if available.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches two engine errors by code, so sentinel instances created with
// the same code compare equal under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithDetail adds a longer explanation to the error.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// New creates a structured error.
func New(code Code, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message}
}

// Newf creates a structured error with a formatted message.
func Newf(code Code, category Category, format string, args ...any) *Error {
	return &Error{Code: code, Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a structured error wrapping an underlying cause.
func Wrap(err error, code Code, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message, Wrapped: err}
}

// CodeOf returns the code of err if it is (or wraps) an engine error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsCode reports whether err is (or wraps) an engine error with the code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
