// Package errors provides custom error types for the Expensedash API.
// All service-layer errors should use AppError so handlers can return
// consistent responses without leaking internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound          = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail        = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrNoPendingVerification = &AppError{Code: "NO_PENDING_VERIFICATION", Message: "No pending verification found", StatusCode: http.StatusNotFound}
	ErrInvalidCode           = &AppError{Code: "INVALID_CODE", Message: "Invalid verification code", StatusCode: http.StatusBadRequest}
	ErrCodeExpired           = &AppError{Code: "CODE_EXPIRED", Message: "Verification code expired", StatusCode: http.StatusBadRequest}
)

// Category graph errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrSubCategoryNotFound = &AppError{Code: "SUB_CATEGORY_NOT_FOUND", Message: "Sub-category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is referenced by existing records", StatusCode: http.StatusConflict}
)

// Expense record errors.
var (
	ErrRecordNotFound = &AppError{Code: "RECORD_NOT_FOUND", Message: "Expense record not found", StatusCode: http.StatusNotFound}
)

// Dashboard errors. Zero matching rows on the chart endpoints is a
// client-visible 404-style condition, not an empty success.
var (
	ErrNoData = &AppError{Code: "NO_DATA", Message: "No data for the requested window", StatusCode: http.StatusNotFound}
)

// Bulk import errors.
var (
	ErrFileRequired = &AppError{Code: "FILE_REQUIRED", Message: "CSV file is required", StatusCode: http.StatusBadRequest}
	ErrMalformedCSV = &AppError{Code: "MALFORMED_CSV", Message: "Failed to parse CSV file", StatusCode: http.StatusBadRequest}
)
