// Package errors provides the AppError type returned by every service.
// Handlers translate AppErrors into JSON responses without leaking the
// wrapped internal error.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is a client-facing error code, message and HTTP status, with an
// optional internal cause kept for logging.
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

// Is matches any AppError carrying the same code, so a customised copy made
// by WithMessage still satisfies errors.Is against its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap copies a sentinel and attaches an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage copies a sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Withf is WithMessage with formatting.
func Withf(sentinel *AppError, format string, args ...any) *AppError {
	return WithMessage(sentinel, fmt.Sprintf(format, args...))
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrRateLimited        = &AppError{Code: "RATE_LIMITED", Message: "Too many requests", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrCategoryTooDeep     = &AppError{Code: "CATEGORY_TOO_DEEP", Message: "Categories can only be nested one level deep", StatusCode: http.StatusBadRequest}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryNotExpense  = &AppError{Code: "CATEGORY_NOT_EXPENSE", Message: "Budgets can only track expense categories", StatusCode: http.StatusBadRequest}
)

// Currency errors.
var (
	ErrCurrencyInactive = &AppError{Code: "CURRENCY_INACTIVE", Message: "Currency is unknown or inactive", StatusCode: http.StatusBadRequest}
	ErrRateNotAvailable = &AppError{Code: "RATE_NOT_AVAILABLE", Message: "No exchange rate available", StatusCode: http.StatusBadRequest}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound      = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetGroupNotFound = &AppError{Code: "BUDGET_GROUP_NOT_FOUND", Message: "Budget group not found", StatusCode: http.StatusNotFound}
	ErrInvalidPeriod       = &AppError{Code: "INVALID_PERIOD", Message: "End date must be after start date", StatusCode: http.StatusBadRequest}
	ErrInvalidThreshold    = &AppError{Code: "INVALID_THRESHOLD", Message: "Alert threshold must be greater than 0 and at most 100", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must not be negative", StatusCode: http.StatusBadRequest}
	ErrPeriodOverlap       = &AppError{Code: "PERIOD_OVERLAP", Message: "Period overlaps an existing record", StatusCode: http.StatusConflict}
	ErrPlanExists          = &AppError{Code: "PLAN_EXISTS", Message: "A budget plan already exists for this month", StatusCode: http.StatusConflict}
	ErrPlanNotFound        = &AppError{Code: "PLAN_NOT_FOUND", Message: "No budget plan found for this month", StatusCode: http.StatusNotFound}
)
