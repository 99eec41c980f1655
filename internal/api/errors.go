package api

import (
	"errors"
	"net/http"

	"github.com/sproutlab/sprout-api/internal/service"
	"github.com/sproutlab/sprout-api/internal/store"
	"github.com/sproutlab/sprout-api/internal/task"
)

// statusForError maps service and store errors onto HTTP status codes.
// Unknown errors are treated as internal failures.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case store.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, task.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrDiaryTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// messageForStatus returns the client-safe message for a status code.
func messageForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusServiceUnavailable:
		return "Server is busy, try again later"
	case http.StatusGatewayTimeout:
		return "Generation exceeded its time budget"
	default:
		return "Internal server error"
	}
}
