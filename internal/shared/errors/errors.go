// Package errors provides application-level error types shared by the
// application and interface layers. Every type maps to a stable code that
// clients can switch on and to an HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType is the stable, client-visible error code.
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation_error"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeConflict           ErrorType = "conflict"
	ErrorTypeUnauthorized       ErrorType = "unauthorized"
	ErrorTypeForbidden          ErrorType = "forbidden"
	ErrorTypeInternal           ErrorType = "internal_error"
	ErrorTypeRateLimited        ErrorType = "rate_limited"
	ErrorTypeAllowanceExhausted ErrorType = "allowance_exhausted"
	ErrorTypeSessionNotFound    ErrorType = "session_not_found"
	ErrorTypeAlreadyConverted   ErrorType = "already_converted"
	ErrorTypeDecryptionFailure  ErrorType = "decryption_failure"
	ErrorTypeConfiguration      ErrorType = "configuration_error"
	ErrorTypeServiceUnavailable ErrorType = "service_unavailable"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	e := &AppError{Type: t, Message: message, Code: code}
	if len(details) > 0 {
		e.Details = strings.Join(details, "; ")
	}
	return e
}

func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewRateLimitedError is used only where a deny must travel as an error;
// feature endpoints return a structured deny body instead.
func NewRateLimitedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, details)
}

func NewAllowanceExhaustedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAllowanceExhausted, http.StatusPaymentRequired, message, details)
}

func NewSessionNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeSessionNotFound, http.StatusNotFound, message, details)
}

func NewAlreadyConvertedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAlreadyConverted, http.StatusConflict, message, details)
}

// NewDecryptionFailureError signals corrupted ciphertext or a rotated key.
func NewDecryptionFailureError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeDecryptionFailure, http.StatusInternalServerError, message, details)
}

// NewConfigurationError is raised at startup and stops the process.
func NewConfigurationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConfiguration, http.StatusInternalServerError, message, details)
}

func NewServiceUnavailableError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeServiceUnavailable, http.StatusServiceUnavailable, message, details)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsConfigurationError(err error) bool {
	return IsType(err, ErrorTypeConfiguration)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Duplicate entry") ||
		strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "UNIQUE constraint failed")
}
