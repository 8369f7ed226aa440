package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates a failed sign-in attempt.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeNetworkOrTimeout indicates a transport failure or deadline hit
	// while talking to a collaborator.
	ErrCodeNetworkOrTimeout ErrorCode = "network_or_timeout"
	// ErrCodePermission indicates the data collaborator denied row access.
	ErrCodePermission ErrorCode = "policy_or_permission"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeUnknown indicates an unclassified failure.
	ErrCodeUnknown ErrorCode = "unknown"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is/As through Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field is the specific input field at fault, for validation errors.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// InvalidCredentials creates an invalid-credentials error.
func InvalidCredentials(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidCredentials, Message: message}
}

// NotFound creates a not-found error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a not-found error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Permission creates a policy-or-permission error.
func Permission(message string) *AppError {
	return &AppError{Code: ErrCodePermission, Message: message}
}

// Timeout creates a network-or-timeout error.
func Timeout(message string) *AppError {
	return &AppError{Code: ErrCodeNetworkOrTimeout, Message: message}
}

// Wrap wraps an existing error with a code and message, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a code and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks for an invalid-credentials error.
func IsInvalidCredentials(err error) bool { return isCode(err, ErrCodeInvalidCredentials) }

// IsNotFound checks for a not-found error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks for a conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks for a validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsPermission checks for a policy-or-permission error.
func IsPermission(err error) bool { return isCode(err, ErrCodePermission) }

// IsTimeout checks for a network-or-timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeNetworkOrTimeout) }

// GetCode returns the ErrorCode from an error, or ErrCodeUnknown for
// unclassified errors, or empty string for nil.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}

// GetField returns the Field from an error, or empty string.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// userMessages is the static code→message lookup for user-visible banners.
var userMessages = map[ErrorCode]string{
	ErrCodeInvalidCredentials: "Incorrect email or password.",
	ErrCodeNetworkOrTimeout:   "The server is taking too long to respond. Please try again.",
	ErrCodePermission:         "You do not have permission to do that.",
	ErrCodeNotFound:           "We could not find what you were looking for.",
	ErrCodeValidation:         "Please check your input and try again.",
	ErrCodeConflict:           "This value already exists. Please choose a different one.",
}

// UserMessage returns a best-effort human-readable message for an error.
// Unmapped codes fall back to a generic message carrying the raw code for
// diagnostics.
func UserMessage(err error) string {
	code := GetCode(err)
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	if code == "" {
		return ""
	}
	return fmt.Sprintf("Something went wrong (%s). Please try again.", code)
}
