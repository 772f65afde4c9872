package respond

import (
	"errors"
	"net/http"

	"github.com/good-yellow-bee/netwatch/internal/access"
	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/thresholds"
)

// Error represents an API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeAlreadyResolved  = "ALREADY_RESOLVED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeAccountLocked    = "ACCOUNT_LOCKED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// Standard errors
var (
	ErrUnauthorized = &Error{
		Code:    ErrCodeUnauthorized,
		Message: "invalid credentials",
		Status:  http.StatusUnauthorized,
	}

	ErrInvalidToken = &Error{
		Code:    ErrCodeUnauthorized,
		Message: "invalid or expired token",
		Status:  http.StatusUnauthorized,
	}

	ErrInvalidAPIKey = &Error{
		Code:    ErrCodeUnauthorized,
		Message: "invalid or missing API key",
		Status:  http.StatusUnauthorized,
	}

	ErrForbidden = &Error{
		Code:    ErrCodeForbidden,
		Message: "access denied",
		Status:  http.StatusForbidden,
	}

	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "resource not found",
		Status:  http.StatusNotFound,
	}

	ErrInternalServer = &Error{
		Code:    ErrCodeInternalError,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
	}

	ErrRateLimited = &Error{
		Code:    ErrCodeRateLimited,
		Message: "too many requests",
		Status:  http.StatusTooManyRequests,
	}

	ErrAccountLocked = &Error{
		Code:    ErrCodeAccountLocked,
		Message: "account temporarily locked due to too many failed attempts",
		Status:  http.StatusTooManyRequests,
	}
)

// NewBadRequest creates a bad request error with custom message.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error with custom message.
func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error with custom message.
func NewNotFound(message string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// FromError maps a domain error to its API error.
// Unrecognized errors become ErrInternalServer.
func FromError(err error) *Error {
	var apiErr *Error
	var vErr *thresholds.ValidationError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &vErr):
		return NewValidationError(vErr.Error())
	case errors.Is(err, access.ErrDenied):
		return ErrForbidden
	case errors.Is(err, thresholds.ErrNotFound):
		return NewNotFound("threshold not found")
	case errors.Is(err, alerting.ErrAlertNotFound):
		return NewNotFound("alert not found")
	case errors.Is(err, alerting.ErrAlreadyResolved):
		return &Error{
			Code:    ErrCodeAlreadyResolved,
			Message: "alert already resolved",
			Status:  http.StatusConflict,
		}
	case errors.Is(err, alerting.ErrInvalidSeverity):
		return NewValidationError(err.Error())
	default:
		return ErrInternalServer
	}
}
