package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent; an encode failure cannot be reported.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error logs err against ctx and writes an error body. Detail carries err's
// text for client errors only.
func Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	body := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	switch {
	case err == nil:
		ctxzap.Warn(ctx, message, zap.Int("status", status))
	case status >= http.StatusInternalServerError:
		ctxzap.Error(ctx, message, zap.Int("status", status), zap.Error(err))
	default:
		ctxzap.Warn(ctx, message, zap.Int("status", status), zap.Error(err))
		body.Detail = err.Error()
	}

	JSON(w, status, body)
}

// FromError maps domain errors to HTTP statuses.
func FromError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrObjectNotFound):
		Error(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat):
		Error(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrTotalSizeTooLarge):
		Error(ctx, w, http.StatusRequestEntityTooLarge, "upload too large", err)
	case errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrTooManyFiles),
		errors.Is(err, entity.ErrInvalidExtension):
		Error(ctx, w, http.StatusBadRequest, "invalid file", err)
	default:
		Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
