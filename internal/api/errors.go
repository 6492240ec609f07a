package api

import (
	"errors"
	"net/http"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/service"
	"github.com/daytask/daytask-api/internal/service/auth"
	"github.com/daytask/daytask-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrTaskNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Validation errors
	case errors.Is(err, service.ErrDateRequired),
		errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials."

	case errors.Is(err, service.ErrTaskNotOwned):
		return "You do not own this task."

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found."

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found."

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists."

	case errors.Is(err, service.ErrDateRequired):
		return "The task_date field is required when search is not present."

	case errors.Is(err, store.ErrInvalidEntity), isDomainValidationError(err):
		return "The given data was invalid."

	default:
		return "An unexpected error occurred"
	}
}

// isDomainValidationError reports whether the error is one of the domain
// entity validation sentinels.
func isDomainValidationError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPriority) ||
		errors.Is(err, domain.ErrEmptyStatement) ||
		errors.Is(err, domain.ErrStatementTooLong) ||
		errors.Is(err, domain.ErrEmptyTaskDate) ||
		errors.Is(err, domain.ErrPriorityOutOfRange) ||
		errors.Is(err, domain.ErrNegativeSortOrder)
}
