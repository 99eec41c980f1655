package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/events"
	"github.com/sproutlab/sprout-api/internal/store"
)

// JobService submits single jobs and serves the poll-based read path.
// Submission creates the pending record synchronously, then hands the
// job to the execution layer through the event emitter; job failure
// after admission never surfaces here.
type JobService struct {
	jobs    store.JobStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(jobs store.JobStore, emitter events.EventEmitter, logger *slog.Logger) *JobService {
	return &JobService{
		jobs:    jobs,
		emitter: emitter,
		logger:  logger.With("component", "job_service"),
	}
}

// SubmitAnalysis creates and admits a seed-packet analysis job.
func (s *JobService) SubmitAnalysis(ctx context.Context, imageData []byte) (*domain.Job, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: seed packet image is required", ErrInvalidRequest)
	}
	return s.submit(ctx, domain.JobKindAnalysis, events.AnalysisPayload{ImageData: imageData})
}

// SubmitGuide creates and admits a growing-guide job.
func (s *JobService) SubmitGuide(ctx context.Context, plantName string) (*domain.Job, error) {
	return s.submitPlantJob(ctx, domain.JobKindGuide, plantName)
}

// SubmitCharacter creates and admits a character-art job.
func (s *JobService) SubmitCharacter(ctx context.Context, plantName string) (*domain.Job, error) {
	return s.submitPlantJob(ctx, domain.JobKindCharacter, plantName)
}

// SubmitResearch creates and admits a deep-research job.
func (s *JobService) SubmitResearch(ctx context.Context, plantName string) (*domain.Job, error) {
	return s.submitPlantJob(ctx, domain.JobKindResearch, plantName)
}

// SubmitDiary creates and admits a non-streaming diary job for the
// given date. Subject may be empty; the pipeline falls back to its
// configured default.
func (s *JobService) SubmitDiary(ctx context.Context, date, subject string) (*domain.Job, error) {
	if _, err := parseDiaryDate(date); err != nil {
		return nil, err
	}
	return s.submit(ctx, domain.JobKindDiary, events.DiaryPayload{Date: date, Subject: subject})
}

// GetJob is the poll-based read path: a pure read with no side effects.
// An unknown ID returns store.ErrJobNotFound, which callers must keep
// distinct from a pending job.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return s.jobs.GetJob(ctx, id)
}

func (s *JobService) submitPlantJob(ctx context.Context, kind domain.JobKind, plantName string) (*domain.Job, error) {
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name is required", ErrInvalidRequest)
	}
	return s.submit(ctx, kind, events.PlantPayload{PlantName: plantName})
}

func (s *JobService) submit(ctx context.Context, kind domain.JobKind, payload any) (*domain.Job, error) {
	job, err := domain.NewJob(kind)
	if err != nil {
		return nil, err
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	event, err := events.NewJobRequestEvent(job.ID, kind, payload)
	if err != nil {
		s.abandon(ctx, job, fmt.Sprintf("failed to encode job input: %v", err))
		return nil, fmt.Errorf("failed to encode job input: %w", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.abandon(ctx, job, fmt.Sprintf("job was not admitted: %v", err))
		return nil, fmt.Errorf("failed to admit job: %w", err)
	}

	s.logger.Info("job submitted", "job_id", job.ID, "job_kind", kind)
	return job, nil
}

// abandon marks a never-admitted job failed. Ownership has not yet
// passed to an executor, so the service is still the record's writer.
func (s *JobService) abandon(ctx context.Context, job *domain.Job, reason string) {
	if err := job.Fail(reason); err != nil {
		s.logger.Error("failed to mark unadmitted job as failed", "job_id", job.ID, "error", err)
		return
	}
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		s.logger.Error("failed to persist unadmitted job failure", "job_id", job.ID, "error", err)
	}
}
