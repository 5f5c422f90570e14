package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an outcome in the service error taxonomy.
type ErrorCode int

const (
	ErrValidation ErrorCode = iota + 1000
	ErrInvalidCredentials
	ErrProfileMissing
	ErrNotFound
	ErrStoreUnavailable
	ErrUnauthorized
	ErrInternal
)

// AppError is the only error shape that crosses the service boundary.
// Raw provider and driver errors stay wrapped inside Err and are never
// shown to callers.
type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retriable bool      `json:"retriable,omitempty"`
	Err       error     `json:"-"`
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

// As unwraps err into an *AppError if there is one in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func InvalidCredentials(err error) *AppError {
	return &AppError{
		Code:    ErrInvalidCredentials,
		Message: "invalid email or password",
		Err:     err,
	}
}

func ProfileMissing(email string) *AppError {
	return &AppError{
		Code:    ErrProfileMissing,
		Message: fmt.Sprintf("no doctor profile exists for %s", email),
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func StoreUnavailable(err error) *AppError {
	return &AppError{
		Code:      ErrStoreUnavailable,
		Message:   "store unavailable",
		Retriable: true,
		Err:       err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
