package errors

import (
	"fmt"
)

// Category groups error codes by the subsystem that raises them.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryEnv     Category = "env"
	CategoryBuild   Category = "build"
	CategoryProcess Category = "process"
)

// ArkosError is a structured error with a stable code, a remediation
// suggestion, and an optional wrapped cause.
type ArkosError struct {
	// Code is a unique error identifier (e.g., "A110").
	Code string

	// Category is the subsystem the error belongs to.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ArkosError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ArkosError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *ArkosError) WithDetail(d string) *ArkosError {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ArkosError) WithSuggestion(s string) *ArkosError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *ArkosError) Wrap(err error) *ArkosError {
	e.Wrapped = err
	return e
}

// New creates an ArkosError from a registered error code.
func New(code string) *ArkosError {
	template, ok := registry[code]
	if !ok {
		return &ArkosError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ArkosError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ArkosError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ArkosError {
	return &ArkosError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an ArkosError.
func FromError(err error, code string) *ArkosError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*ArkosError); ok {
		return ae
	}
	return New(code).Wrap(err)
}
