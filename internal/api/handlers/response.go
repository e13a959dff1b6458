package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"backoffice-service/internal/auth"
	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/sales"
)

type apiError struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, apiError{
		Error:   code,
		Message: message,
		Details: details,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}

	return true
}

// intParam reads a positive integer URL parameter.
func intParam(w http.ResponseWriter, r *http.Request, name, what string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+what+" id", nil)
		return 0, false
	}
	return id, true
}

// intQuery reads an optional non-negative integer query parameter.
func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid "+name, nil)
		return 0, false
	}
	return v, true
}

func currentUser(r *http.Request) *models.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}

// writeServiceError maps domain errors onto stable API codes. Anything
// unrecognised is logged and reported as internal_error with a generic
// message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, sales.ErrNotInCart):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, sales.ErrEmptyCart),
		errors.Is(err, sales.ErrInvalidQuantity),
		errors.Is(err, lifecycle.ErrGuardRejected):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error(), nil)
	case errors.Is(err, repository.ErrNotEnough), errors.Is(err, sales.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error(), nil)
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, sales.ErrPreOrderClosed), errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case errors.Is(err, repository.ErrInUse):
		writeError(w, http.StatusConflict, "in_use", err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, auth.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err.Error(), nil)
	default:
		observability.Logger(r.Context(), logger).Error("request failed",
			"action", action,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to "+action, nil)
	}
}
