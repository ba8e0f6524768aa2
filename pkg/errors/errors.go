package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode int

const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnknownParameter
	ErrStorage
)

// AppError is the error type the HTTP layer understands. Anything else
// renders as a plain 500.
type AppError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnknownParameter:
		return http.StatusBadRequest
	case ErrValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// NewValidation reports input that failed result-set validation. Details
// carries the aggregated report so callers can return it to the client.
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Details: details,
	}
}

// NewUnknownParameter reports a result keyed by a name absent from the catalog.
func NewUnknownParameter(name string) *AppError {
	return &AppError{
		Code:    ErrUnknownParameter,
		Message: fmt.Sprintf("unknown parameter: %s", name),
	}
}

// NewStorage wraps a persistence failure for the named operation.
func NewStorage(op string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: fmt.Sprintf("storage %s failed", op),
		Err:     err,
	}
}
