package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/events"
	"github.com/sproutlab/sprout-api/internal/generation"
	"github.com/sproutlab/sprout-api/internal/retry"
	"github.com/sproutlab/sprout-api/internal/store"
)

// DiaryWorkFactory builds the unit of work for a diary job. The diary
// pipeline is assembled in the service layer; the factory keeps this
// package free of that dependency.
type DiaryWorkFactory func(date, subject string) WorkFunc

// JobRequestEventHandler implements events.EventHandler: it turns a job
// request event into the matching task and submits it to the runner.
type JobRequestEventHandler struct {
	jobs      store.JobStore
	executor  *Executor
	generator generation.Generator
	policy    retry.Policy
	runner    *Runner
	diaryWork DiaryWorkFactory
	logger    *slog.Logger
}

// NewJobRequestEventHandler creates a handler wiring events to the
// runner. diaryWork may be nil when diary jobs are not routed through
// events.
func NewJobRequestEventHandler(
	jobs store.JobStore,
	executor *Executor,
	generator generation.Generator,
	policy retry.Policy,
	runner *Runner,
	diaryWork DiaryWorkFactory,
	logger *slog.Logger,
) *JobRequestEventHandler {
	return &JobRequestEventHandler{
		jobs:      jobs,
		executor:  executor,
		generator: generator,
		policy:    policy,
		runner:    runner,
		diaryWork: diaryWork,
		logger:    logger.With("component", "job_request_event_handler"),
	}
}

// HandleEvent builds the task for the event's job and submits it.
// Returning an error means the job was never admitted; the emitting
// service still owns the record and reports the failure.
func (h *JobRequestEventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	job, err := h.jobs.GetJob(ctx, event.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job for event: %w", err)
	}

	t, err := h.buildTask(job, event)
	if err != nil {
		return fmt.Errorf("failed to build %s task: %w", event.Kind, err)
	}

	if err := h.runner.Submit(t); err != nil {
		return err
	}

	h.logger.Debug("job admitted",
		"event_id", event.ID,
		"job_id", event.JobID,
		"job_kind", event.Kind)
	return nil
}

func (h *JobRequestEventHandler) buildTask(job *domain.Job, event *events.JobRequestEvent) (Task, error) {
	switch event.Kind {
	case domain.JobKindAnalysis:
		var payload events.AnalysisPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, err
		}
		return NewAnalysisTask(h.executor, h.generator, h.policy, h.logger, job, payload.ImageData)

	case domain.JobKindGuide:
		var payload events.PlantPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, err
		}
		return NewGuideTask(h.executor, h.generator, h.policy, h.logger, job, payload.PlantName)

	case domain.JobKindCharacter:
		var payload events.PlantPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, err
		}
		return NewCharacterTask(h.executor, h.generator, h.policy, h.logger, job, payload.PlantName)

	case domain.JobKindResearch:
		var payload events.PlantPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, err
		}
		return NewResearchTask(h.executor, h.generator, h.policy, h.logger, job, payload.PlantName)

	case domain.JobKindDiary:
		if h.diaryWork == nil {
			return nil, fmt.Errorf("%w: no diary work factory configured", domain.ErrInvalidJobKind)
		}
		var payload events.DiaryPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, err
		}
		return NewWorkTask(h.executor, job, h.diaryWork(payload.Date, payload.Subject))

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidJobKind, event.Kind)
	}
}
