package response

import (
	"errors"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeAlreadyRegistered = "ALREADY_REGISTERED"
	ErrCodeEventFull         = "EVENT_FULL"
	ErrCodeEventEnded        = "EVENT_ENDED"
	ErrCodeCapacityTooLow    = "CAPACITY_TOO_LOW"
	ErrCodeInvalidSchedule   = "INVALID_SCHEDULE"
	ErrCodeInvalidCapacity   = "INVALID_CAPACITY"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeLockTimeout       = "LOCK_TIMEOUT"
	ErrCodeStorageDisabled   = "STORAGE_UNAVAILABLE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorKind groups error codes by how callers should react to them
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NotFound"
	KindConflict      ErrorKind = "Conflict"
	KindValidation    ErrorKind = "Validation"
	KindAuthorization ErrorKind = "Authorization"
	KindInternal      ErrorKind = "Internal"
)

// AppError is the error type returned by the service layer
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

var codeKinds = map[string]ErrorKind{
	ErrCodeNotFound:          KindNotFound,
	ErrCodeAlreadyExists:     KindConflict,
	ErrCodeAlreadyRegistered: KindConflict,
	ErrCodeEventFull:         KindConflict,
	ErrCodeEventEnded:        KindValidation,
	ErrCodeCapacityTooLow:    KindValidation,
	ErrCodeInvalidSchedule:   KindValidation,
	ErrCodeInvalidCapacity:   KindValidation,
	ErrCodeValidation:        KindValidation,
	ErrCodeUnauthorized:      KindAuthorization,
	ErrCodeForbidden:         KindAuthorization,
	ErrCodeLockTimeout:       KindInternal,
	ErrCodeStorageDisabled:   KindInternal,
	ErrCodeInternal:          KindInternal,
}

var codeStatuses = map[string]int{
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeAlreadyExists:     http.StatusConflict,
	ErrCodeAlreadyRegistered: http.StatusConflict,
	ErrCodeEventFull:         http.StatusConflict,
	ErrCodeEventEnded:        http.StatusUnprocessableEntity,
	ErrCodeCapacityTooLow:    http.StatusUnprocessableEntity,
	ErrCodeInvalidSchedule:   http.StatusUnprocessableEntity,
	ErrCodeInvalidCapacity:   http.StatusUnprocessableEntity,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeLockTimeout:       http.StatusServiceUnavailable,
	ErrCodeStorageDisabled:   http.StatusServiceUnavailable,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// NewAppError creates an AppError; the kind is derived from the code
func NewAppError(code, message, details string) *AppError {
	kind, ok := codeKinds[code]
	if !ok {
		kind = KindInternal
	}
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

func NewForbiddenError(message, details string) *AppError {
	return NewAppError(ErrCodeForbidden, message, details)
}

func NewConflictError(code, message string) *AppError {
	return NewAppError(code, message, "")
}

func NewInternalError(message, details string) *AppError {
	return NewAppError(ErrCodeInternal, message, details)
}

// HTTPStatus maps an error code to its HTTP status, defaulting to 500
func HTTPStatus(code string) int {
	if status, ok := codeStatuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err is an AppError carrying code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
