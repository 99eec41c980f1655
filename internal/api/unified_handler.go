package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/api/shared"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/service"
)

// StartUnifiedRequest is the body for starting a unified job.
type StartUnifiedRequest struct {
	Image string `json:"image" validate:"required"`
}

// StartUnifiedResponse acknowledges an accepted unified job with the
// client-visible sub-job IDs.
type StartUnifiedResponse struct {
	JobID     uuid.UUID                       `json:"job_id"`
	SubJobIDs map[domain.SubJobRole]uuid.UUID `json:"sub_job_ids"`
}

// UnifiedStatusResponse is the aggregated unified job view.
type UnifiedStatusResponse struct {
	JobID           uuid.UUID                       `json:"job_id"`
	Status          domain.JobStatus                `json:"status"`
	Phase           domain.UnifiedPhase             `json:"phase"`
	CharacterStatus domain.JobStatus                `json:"character_status"`
	ResearchStatus  domain.JobStatus                `json:"research_status"`
	GuideStatus     domain.JobStatus                `json:"guide_status"`
	SubJobIDs       map[domain.SubJobRole]uuid.UUID `json:"sub_job_ids"`
}

// UnifiedHandler serves the unified fan-out endpoints.
type UnifiedHandler struct {
	unified   *service.UnifiedService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewUnifiedHandler creates a UnifiedHandler.
func NewUnifiedHandler(unified *service.UnifiedService, logger *slog.Logger) *UnifiedHandler {
	return &UnifiedHandler{
		unified:   unified,
		validator: validator.New(),
		logger:    logger.With("component", "unified_handler"),
	}
}

// Start handles POST /api/unified/start.
func (h *UnifiedHandler) Start(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAndValidate[StartUnifiedRequest](r, h.validator)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}
	imageData, err := decodeImage(req.Image)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}

	unified, err := h.unified.StartUnified(r.Context(), imageData)
	if err != nil {
		status := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, status, messageForStatus(status), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartUnifiedResponse{
		JobID:     unified.ID,
		SubJobIDs: unified.SubJobIDs(),
	})
}

// GetStatus handles GET /api/unified/jobs/{id}. The aggregate status is
// derived from the required sub-jobs on every read.
func (h *UnifiedHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid job ID", err)
		return
	}

	status, err := h.unified.GetUnifiedStatus(r.Context(), id)
	if err != nil {
		code := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, code, messageForStatus(code), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UnifiedStatusResponse{
		JobID:           status.ID,
		Status:          status.Status,
		Phase:           status.Phase,
		CharacterStatus: status.CharacterStatus,
		ResearchStatus:  status.ResearchStatus,
		GuideStatus:     status.GuideStatus,
		SubJobIDs:       status.SubJobIDs,
	})
}
