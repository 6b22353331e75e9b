package errors

import (
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors (401xx)
	ErrInvalidCredentials ErrorCode = "40101"
	ErrTokenExpired       ErrorCode = "40102"

	// Authorization errors (403xx)
	ErrForbidden            ErrorCode = "40301"
	ErrSellerAccessRequired ErrorCode = "40302"
	ErrNotOwner             ErrorCode = "40303"

	// Resource errors (404xx)
	ErrPortfolioNotFound    ErrorCode = "40401"
	ErrUserNotFound         ErrorCode = "40402"
	ErrApplicationNotFound  ErrorCode = "40403"
	ErrPurchaseNotFound     ErrorCode = "40404"
	ErrNotificationNotFound ErrorCode = "40405"

	// Request errors (400xx)
	ErrInvalidRequest   ErrorCode = "40001"
	ErrValidationFailed ErrorCode = "40002"

	// Business-rule rejections (422xx), expected outcomes rather than faults
	ErrInsufficientFunds ErrorCode = "42201"
	ErrSelfPurchase      ErrorCode = "42202"
	ErrTransactionDenied ErrorCode = "42203"

	// Server errors (500xx)
	ErrInternalServer     ErrorCode = "50001"
	ErrLedgerUnavailable  ErrorCode = "50301"
	ErrStorageUnavailable ErrorCode = "50302"
)

// APIError represents a standardized API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse represents the error response format
type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id"`
}

// Common errors
var (
	ErrInvalidCredentialsError = &APIError{
		Code:       ErrInvalidCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpiredError = &APIError{
		Code:       ErrTokenExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbiddenError = &APIError{
		Code:       ErrForbidden,
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
	}

	ErrSellerAccessRequiredError = &APIError{
		Code:       ErrSellerAccessRequired,
		Message:    "Seller verification required",
		HTTPStatus: http.StatusForbidden,
	}

	ErrNotOwnerError = &APIError{
		Code:       ErrNotOwner,
		Message:    "Only the owner or an administrator may modify this resource",
		HTTPStatus: http.StatusForbidden,
	}

	ErrPortfolioNotFoundError = &APIError{
		Code:       ErrPortfolioNotFound,
		Message:    "Portfolio not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUserNotFoundError = &APIError{
		Code:       ErrUserNotFound,
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrApplicationNotFoundError = &APIError{
		Code:       ErrApplicationNotFound,
		Message:    "Verification application not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrPurchaseNotFoundError = &APIError{
		Code:       ErrPurchaseNotFound,
		Message:    "Purchase not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrNotificationNotFoundError = &APIError{
		Code:       ErrNotificationNotFound,
		Message:    "Notification not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrSelfPurchaseError = &APIError{
		Code:       ErrSelfPurchase,
		Message:    "You cannot purchase your own portfolio",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrInternalServerError = &APIError{
		Code:       ErrInternalServer,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrLedgerUnavailableError = &APIError{
		Code:       ErrLedgerUnavailable,
		Message:    "Balance service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	ErrStorageUnavailableError = &APIError{
		Code:       ErrStorageUnavailable,
		Message:    "File storage unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// NewValidationError creates a validation error with details
func NewValidationError(details any) *APIError {
	return &APIError{
		Code:       ErrValidationFailed,
		Message:    "Validation failed",
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:       ErrInvalidRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInsufficientFundsError creates the actionable insufficient-funds
// rejection. Details carry what the client needs to offer a top-up.
func NewInsufficientFundsError(required, current, shortfall string) *APIError {
	return &APIError{
		Code:    ErrInsufficientFunds,
		Message: "Insufficient balance",
		Details: map[string]string{
			"required_amount": required,
			"current_balance": current,
			"shortfall":       shortfall,
		},
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewTransactionDeniedError creates a generic ledger rejection error
func NewTransactionDeniedError(message string) *APIError {
	if message == "" {
		message = "Transaction was declined"
	}
	return &APIError{
		Code:       ErrTransactionDenied,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}
