// Package shared holds response, request and context helpers used by
// every API handler.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sproutlab/sprout-api/internal/redact"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes data as a JSON response with the given status.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err, "path", r.URL.Path)
	}
}

// RespondWithError writes a JSON error body carrying the request's
// trace ID. message must already be safe to show to clients.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, ErrorResponse{
		Error:   message,
		TraceID: GetTraceID(r.Context()),
	})
}

// RespondWithErrorAndLog writes a sanitized error body and logs the
// full underlying error, redacted, with the trace ID for correlation.
// Server-side failures log at error level, client mistakes at debug.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	log := slog.With(
		"status_code", status,
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method,
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", redact.Error(err))
	} else {
		log.Debug("request rejected", "error", redact.Error(err))
	}

	RespondWithError(w, r, status, userMessage)
}
