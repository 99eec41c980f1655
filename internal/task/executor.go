package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/redact"
	"github.com/sproutlab/sprout-api/internal/store"
)

// ErrJobTimeout marks a job that exceeded its per-kind time ceiling.
// Distinct from provider errors so clients can tell the two apart.
var ErrJobTimeout = errors.New("job timed out")

// ProgressFunc reports a human-readable progress message. Each call is
// persisted individually, never batched.
type ProgressFunc func(message string)

// WorkFunc is one job's unit of work. It returns the typed result on
// success. It must respect ctx, which carries the per-kind timeout.
type WorkFunc func(ctx context.Context, progress ProgressFunc) (*domain.JobResult, error)

// ExecutorConfig sets per-kind execution ceilings.
type ExecutorConfig struct {
	// DefaultTimeout applies to analysis, guide, character and research
	// jobs.
	DefaultTimeout time.Duration

	// DiaryTimeout applies to diary jobs, which run much longer.
	DiaryTimeout time.Duration
}

// DefaultExecutorConfig returns an ExecutorConfig with the standard
// ceilings: five minutes for short jobs, thirty for diaries.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DefaultTimeout: 5 * time.Minute,
		DiaryTimeout:   30 * time.Minute,
	}
}

// Executor drives one job record from pending to a terminal state and
// is the record's exclusive writer for its whole lifetime. All work
// failures, panics included, are converted into a persisted failed
// record; nothing propagates to the submission path.
type Executor struct {
	jobs   store.JobStore
	config ExecutorConfig
	logger *slog.Logger
}

// NewExecutor creates an Executor writing through the given job store.
func NewExecutor(jobs store.JobStore, config ExecutorConfig, logger *slog.Logger) *Executor {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = DefaultExecutorConfig().DefaultTimeout
	}
	if config.DiaryTimeout <= 0 {
		config.DiaryTimeout = DefaultExecutorConfig().DiaryTimeout
	}
	return &Executor{
		jobs:   jobs,
		config: config,
		logger: logger,
	}
}

// TimeoutFor returns the execution ceiling for a job kind.
func (e *Executor) TimeoutFor(kind domain.JobKind) time.Duration {
	if kind == domain.JobKindDiary {
		return e.config.DiaryTimeout
	}
	return e.config.DefaultTimeout
}

// Run executes work against the given job record, persisting every
// transition: processing first, then zero or more message updates, then
// exactly one terminal write. The job must be pending. The returned
// error mirrors the persisted failure for observability; callers must
// not treat it as unpersisted.
func (e *Executor) Run(ctx context.Context, job *domain.Job, work WorkFunc) error {
	logger := e.logger.With("job_id", job.ID, "job_kind", job.Kind)

	if err := job.TransitionTo(domain.JobStatusProcessing); err != nil {
		// Attempting to restart a terminal job is a programming error.
		logger.Error("rejected illegal transition to processing", "status", job.Status, "error", err)
		return err
	}
	if err := e.jobs.UpdateJob(ctx, job); err != nil {
		logger.Error("failed to persist processing status", "error", err)
		failJob(ctx, e.jobs, logger, job, fmt.Sprintf("persistence failure: %v", err))
		return err
	}

	timeout := e.TimeoutFor(job.Kind)
	workCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	progress := func(message string) {
		if err := job.UpdateMessage(message); err != nil {
			logger.Error("rejected progress update", "error", err)
			return
		}
		if err := e.jobs.UpdateJob(ctx, job); err != nil {
			logger.Error("failed to persist progress message", "message", message, "error", err)
		}
	}

	result, err := e.runWork(workCtx, work, progress, logger)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && workCtx.Err() != nil {
			err = fmt.Errorf("%w after %s", ErrJobTimeout, timeout)
		}
		logger.Error("job failed", "error", err)
		failJob(ctx, e.jobs, logger, job, err.Error())
		return err
	}

	if result != nil {
		if verr := result.ValidateFor(job.Kind); verr != nil {
			logger.Error("job produced mismatched result", "error", verr)
			failJob(ctx, e.jobs, logger, job, verr.Error())
			return verr
		}
	}

	if err := job.Complete(result); err != nil {
		logger.Error("rejected illegal completion", "error", err)
		return err
	}
	if err := e.jobs.UpdateJob(ctx, job); err != nil {
		logger.Error("failed to persist completed status", "error", err)
		return err
	}

	logger.Info("job completed")
	return nil
}

// runWork invokes work with panic recovery so a panicking generator can
// never take down a worker.
func (e *Executor) runWork(
	ctx context.Context,
	work WorkFunc,
	progress ProgressFunc,
	logger *slog.Logger,
) (result *domain.JobResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job work panicked", "panic", r)
			result = nil
			err = fmt.Errorf("job work panicked: %v", r)
		}
	}()

	return work(ctx, progress)
}

func failJob(ctx context.Context, jobs store.JobStore, logger *slog.Logger, job *domain.Job, errMsg string) {
	// The error field is client-visible through the status endpoints;
	// provider errors can carry keys and connection strings.
	if err := job.Fail(redact.String(errMsg)); err != nil {
		logger.Error("rejected illegal transition to failed", "error", err)
		return
	}
	// Persist on a background context so a cancelled request context
	// cannot lose the terminal write.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := jobs.UpdateJob(persistCtx, job); err != nil {
		logger.Error("failed to persist failed status", "error", err)
	}
}
