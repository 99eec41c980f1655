package api

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sproutlab/sprout-api/internal/api/shared"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/service"
)

// DiaryEntryResponse is the persisted diary entry view.
type DiaryEntryResponse struct {
	Date      string    `json:"date"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	ImageRef  string    `json:"image_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DiaryHandler serves the diary endpoints: the single-shot progress
// stream, the authenticated auto-generation trigger, and entry reads.
type DiaryHandler struct {
	diary      *service.DiaryService
	triggerKey string
	logger     *slog.Logger
}

// NewDiaryHandler creates a DiaryHandler. triggerKey authenticates the
// auto-generation endpoint.
func NewDiaryHandler(diary *service.DiaryService, triggerKey string, logger *slog.Logger) *DiaryHandler {
	return &DiaryHandler{
		diary:      diary,
		triggerKey: triggerKey,
		logger:     logger.With("component", "diary_handler"),
	}
}

// GenerateManual handles GET /api/diary/generate-manual?date=YYYY-MM-DD.
// It streams progress as server-sent events: one event per pipeline
// stage, in order, the last one carrying the finished entry or an
// error. The stream is single-shot; a dropped connection is not
// resumable and the client must issue a fresh request.
func (h *DiaryHandler) GenerateManual(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	date := r.URL.Query().Get("date")
	subject := r.URL.Query().Get("subject")

	events, err := h.diary.StreamGenerate(r.Context(), date, subject)
	if err != nil {
		status := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, status, messageForStatus(status), err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("failed to encode progress event", "stage", event.Stage, "error", err)
			continue
		}
		if _, err := w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
			// Client is gone; the pipeline finishes without us. Keep
			// draining so the sender never blocks.
			continue
		}
		flusher.Flush()
	}
}

// AutoGenerate handles POST /api/diary/auto-generate?key=...&date=....
// It is meant for scheduled callers: synchronous, authenticated by the
// shared trigger key, 504 when the time budget is exhausted. The date
// defaults to today.
func (h *DiaryHandler) AutoGenerate(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.triggerKey)) != 1 {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid trigger key")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	subject := r.URL.Query().Get("subject")

	result, err := h.diary.AutoGenerate(r.Context(), date, subject)
	if err != nil {
		status := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, status, messageForStatus(status), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetEntry handles GET /api/diary/{date}.
func (h *DiaryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.diary.GetEntry(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		status := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, status, messageForStatus(status), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entryToResponse(entry))
}

func entryToResponse(entry *domain.DiaryEntry) DiaryEntryResponse {
	return DiaryEntryResponse{
		Date:      entry.Date,
		Subject:   entry.Subject,
		Content:   entry.Content,
		ImageRef:  entry.ImageRef,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
