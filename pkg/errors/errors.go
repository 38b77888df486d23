// Package errors provides typed error handling with rich context for skillet.
package errors

import (
	"encoding/json"
	"fmt"
)

// Code classifies skillet errors for monitoring and recovery.
type Code string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal Code = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure Code = "TOOL_FAILURE"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound Code = "NOT_FOUND"

	// CodeMemoryError indicates a vector store or conversation store error.
	CodeMemoryError Code = "MEMORY_ERROR"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError Code = "LLM_ERROR"

	// CodeIngestError indicates a document could not be loaded or split.
	CodeIngestError Code = "INGEST_ERROR"
)

// Error is a typed error with context attributes for observability.
// It implements the error interface and supports errors.As unwrapping.
type Error struct {
	Code        Code
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"code":        string(e.Code),
		"message":     e.Error(),
		"context":     e.Context,
		"recoverable": e.Recoverable,
	})
}

// New creates a new Error with the given code, message, and cause.
func New(code Code, msg string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	e.Recoverable = recoverable
	return e
}

// AsError converts err to an *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*Error); ok {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}
