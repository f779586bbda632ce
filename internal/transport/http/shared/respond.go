// Package shared holds the JSON response helpers used by every handler.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/requestcontext"
)

// ErrorResponse is the error envelope of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the body of responses that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the
// client-safe message. Uncoded errors become a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(dErrors.CodeOf(err))
	msg := dErrors.MessageOf(err)
	if msg == "" {
		msg = "Internal server error"
	}
	WriteJSON(w, status, ErrorResponse{Message: msg})
}

// WriteServiceError logs err at a level matching its code and writes it.
// Internal errors log at error level with their cause; client errors at warn.
func WriteServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error, op string) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestID,
			"error", err,
		)
	} else {
		logger.WarnContext(ctx, "rejected "+op,
			"request_id", requestID,
			"error", err,
		)
	}
	WriteError(w, err)
}

// WriteUnauthorized writes the uniform unauthenticated response.
func WriteUnauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
}

// StatusFor translates a domain error code into an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into dst. An empty body is a bad request.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid request body")
	}
	return nil
}
