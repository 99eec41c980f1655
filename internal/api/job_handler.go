package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/api/shared"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/service"
)

// AnalysisJobRequest is the body for submitting an analysis job. Image
// carries the seed packet photo, base64 encoded.
type AnalysisJobRequest struct {
	Image string `json:"image" validate:"required"`
}

// PlantJobRequest is the body for guide, character and research jobs.
type PlantJobRequest struct {
	PlantName string `json:"plant_name" validate:"required,min=1,max=200"`
}

// DiaryJobRequest is the body for a queued diary job.
type DiaryJobRequest struct {
	Date    string `json:"date"    validate:"required"`
	Subject string `json:"subject" validate:"max=200"`
}

// SubmitJobResponse acknowledges an accepted job.
type SubmitJobResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

// JobResponse is the poll-based job view.
type JobResponse struct {
	ID        uuid.UUID         `json:"id"`
	Kind      domain.JobKind    `json:"kind"`
	Status    domain.JobStatus  `json:"status"`
	Message   string            `json:"message,omitempty"`
	Result    *domain.JobResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// JobHandler serves job submission and polling.
type JobHandler struct {
	jobs      *service.JobService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs *service.JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:      jobs,
		validator: validator.New(),
		logger:    logger.With("component", "job_handler"),
	}
}

// SubmitJob handles POST /api/jobs/{kind}. The response is 202: the job
// is admitted, not started.
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseJobKind(chi.URLParam(r, "kind"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Unknown job kind", err)
		return
	}

	var job *domain.Job
	switch kind {
	case domain.JobKindAnalysis:
		job, err = h.submitAnalysis(r)
	case domain.JobKindGuide:
		job, err = h.submitPlantJob(r, h.jobs.SubmitGuide)
	case domain.JobKindCharacter:
		job, err = h.submitPlantJob(r, h.jobs.SubmitCharacter)
	case domain.JobKindResearch:
		job, err = h.submitPlantJob(r, h.jobs.SubmitResearch)
	case domain.JobKindDiary:
		job, err = h.submitDiary(r)
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown job kind")
		return
	}
	if err != nil {
		status := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, status, messageForStatus(status), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitJobResponse{JobID: job.ID})
}

// GetJob handles GET /api/jobs/{id}. An unknown ID is 404; clients must
// treat 404 immediately after submission as "still initializing".
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid job ID", err)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		status := statusForError(err)
		shared.RespondWithErrorAndLog(w, r, status, messageForStatus(status), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}

func (h *JobHandler) submitAnalysis(r *http.Request) (*domain.Job, error) {
	req, err := decodeAndValidate[AnalysisJobRequest](r, h.validator)
	if err != nil {
		return nil, err
	}
	imageData, err := decodeImage(req.Image)
	if err != nil {
		return nil, err
	}
	return h.jobs.SubmitAnalysis(r.Context(), imageData)
}

func (h *JobHandler) submitPlantJob(
	r *http.Request,
	submit func(ctx context.Context, plantName string) (*domain.Job, error),
) (*domain.Job, error) {
	req, err := decodeAndValidate[PlantJobRequest](r, h.validator)
	if err != nil {
		return nil, err
	}
	return submit(r.Context(), req.PlantName)
}

func (h *JobHandler) submitDiary(r *http.Request) (*domain.Job, error) {
	req, err := decodeAndValidate[DiaryJobRequest](r, h.validator)
	if err != nil {
		return nil, err
	}
	return h.jobs.SubmitDiary(r.Context(), req.Date, req.Subject)
}

func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:        job.ID,
		Kind:      job.Kind,
		Status:    job.Status,
		Message:   job.Message,
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}
