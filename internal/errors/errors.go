// Package errors provides the closed set of application errors returned by
// services. Every AppError carries its HTTP status, so the transport layer
// never has to guess a status from message text.
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

// Is matches two AppErrors by code so errors.Is works against the sentinels
// even after WithMessage or Wrap produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

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
	ErrTokenMissing       = &AppError{Code: "TOKEN_MISSING", Message: "Authorization header is required", StatusCode: http.StatusUnauthorized}
	ErrTokenInvalid       = &AppError{Code: "TOKEN_INVALID", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrTokenRevoked       = &AppError{Code: "TOKEN_REVOKED", Message: "Token has been revoked", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrEmailNotVerified   = &AppError{Code: "EMAIL_NOT_VERIFIED", Message: "Email address must be verified", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound        = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail      = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrGoogleAlreadyLinked = &AppError{Code: "GOOGLE_ALREADY_LINKED", Message: "This Google account is already linked to a user", StatusCode: http.StatusConflict}
	ErrGoogleNotLinked     = &AppError{Code: "GOOGLE_NOT_LINKED", Message: "No Google account is linked", StatusCode: http.StatusBadRequest}
	ErrPasswordRequired    = &AppError{Code: "PASSWORD_REQUIRED", Message: "Set a password before unlinking Google", StatusCode: http.StatusBadRequest}
	ErrOAuthUnavailable    = &AppError{Code: "OAUTH_UNAVAILABLE", Message: "Google sign-in is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrOAuthStateMismatch  = &AppError{Code: "OAUTH_STATE_MISMATCH", Message: "OAuth state does not match", StatusCode: http.StatusBadRequest}
)

// Space errors.
var (
	ErrSpaceNotFound = &AppError{Code: "SPACE_NOT_FOUND", Message: "Space not found", StatusCode: http.StatusNotFound}
	ErrAlreadyMember = &AppError{Code: "ALREADY_MEMBER", Message: "User is already a member of this space", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound      = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse         = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren   = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrDuplicateCategory     = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name and type already exists", StatusCode: http.StatusConflict}
	ErrSelfParentCategory    = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrInvalidParentCategory = &AppError{Code: "INVALID_PARENT_CATEGORY", Message: "Parent category must be a top-level category of the same type", StatusCode: http.StatusBadRequest}
)

// Payment method errors.
var (
	ErrPaymentMethodNotFound  = &AppError{Code: "PAYMENT_METHOD_NOT_FOUND", Message: "Payment method not found", StatusCode: http.StatusNotFound}
	ErrPaymentMethodInUse     = &AppError{Code: "PAYMENT_METHOD_IN_USE", Message: "Payment method is used by existing transactions", StatusCode: http.StatusConflict}
	ErrDuplicatePaymentMethod = &AppError{Code: "DUPLICATE_PAYMENT_METHOD", Message: "A payment method with this name already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
)

// Template errors.
var (
	ErrTemplateNotFound = &AppError{Code: "TEMPLATE_NOT_FOUND", Message: "Template not found", StatusCode: http.StatusNotFound}
	ErrTemplateInactive = &AppError{Code: "TEMPLATE_INACTIVE", Message: "Template is inactive", StatusCode: http.StatusBadRequest}
)
