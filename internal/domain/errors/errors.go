package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrValidation          = errors.New("validation error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrDocumentsIncomplete = errors.New("required documents are not approved")
	ErrInfrastructure      = errors.New("infrastructure failure")
)

// AppError represents application error with HTTP status
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

// Unwrap exposes the wrapped sentinel so errors.Is keeps working across layers.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrUnauthorized)
}

func Unauthenticated(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthenticated)
}

func InvalidTransition(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrInvalidTransition)
}

func DocumentsIncomplete(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrDocumentsIncomplete)
}

// Infrastructure wraps an I/O failure from the blob store, notifier or database.
func Infrastructure(message string, cause error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, errors.Join(ErrInfrastructure, cause))
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// StatusOf resolves the HTTP status for any error by walking its sentinel chain.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserInactive):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrDocumentsIncomplete):
		return http.StatusConflict
	case errors.Is(err, ErrInfrastructure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
