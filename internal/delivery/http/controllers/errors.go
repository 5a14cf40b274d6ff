package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/delivery/http/middleware"
	"eventify/internal/domain"
)

// writeServiceError maps a service error to its HTTP status and error code.
// Unexpected errors are logged and reported as 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, inputMessage(err))
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidAdminCode), errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyRegistered, err.Error())
	case errors.Is(err, domain.ErrNoSlots):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeNoSlots, err.Error())
	case errors.Is(err, domain.ErrNotAttended):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeNotAttended, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

// inputMessage strips the trailing ": invalid input" from validation errors.
func inputMessage(err error) string {
	msg := err.Error()
	if trimmed := strings.TrimSuffix(msg, ": "+domain.ErrInvalidInput.Error()); trimmed != "" {
		return trimmed
	}
	return msg
}

// requirePrincipal writes a 401 when the request carries no principal.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}
