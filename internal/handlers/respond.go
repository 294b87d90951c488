package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"scripture-journey/internal/contextutil"
	"scripture-journey/internal/service"
	"scripture-journey/internal/storage"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, ErrorResponse{Error: message})
}

// methodNotAllowed rejects any method other than want.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, want string) bool {
	if r.Method == want {
		return false
	}
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
	w.Header().Set("Allow", want)
	writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
	return true
}

// notFound names the missing resource, e.g. notFound("Insight") reads "Insight not found".
func notFound(what string) error {
	return fmt.Errorf("%s %w", what, service.ErrNotFound)
}

// invalidInput marks a parse failure as a client error.
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
}

// storageError renames storage.ErrNotFound after the resource that was missing.
func storageError(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(what)
	}
	return err
}

// writeRequestError maps validation, lookup and storage failures to responses.
func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "request validation failed", "field", validationErr.Field, "error", validationErr.Message)
		writeError(ctx, w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid request", "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, err.Error())
	default:
		logger.ErrorContext(ctx, "storage operation failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Storage operation failed")
	}
}
