package api

import (
	"errors"
	"net/http"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/service/auth"
	"github.com/todoapp/notifier/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidChannel):
		return http.StatusBadRequest

	// Backing services down; callers may retry
	case errors.Is(err, domain.ErrCacheUnavailable),
		errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, store.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidChannel):
		return "Invalid request"
	case errors.Is(err, domain.ErrCacheUnavailable):
		return "Cache unavailable"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "Database unavailable"
	default:
		return "An unexpected error occurred"
	}
}
