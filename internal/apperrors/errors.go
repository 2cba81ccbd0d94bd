package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks or
// violated a business rule. Always recoverable by the caller.
var ErrValidation = errors.New("validation error")

// ErrConfiguration indicates an internal precondition was violated by the
// caller's sequencing (e.g. a sync requested before the invoice number was
// assigned). It signals a caller bug rather than bad user input.
var ErrConfiguration = errors.New("configuration error")

// ErrConflict indicates a concurrent modification was detected, typically a
// version mismatch on an invoice header.
var ErrConflict = errors.New("conflicting modification detected")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the authenticated user may not perform the action.
var ErrForbidden = errors.New("action forbidden")

// AppError wraps an underlying error with an HTTP-ish status code and a
// message suitable for logging. Repositories use it for unexpected failures.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
