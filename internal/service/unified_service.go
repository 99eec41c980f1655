package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/generation"
	"github.com/sproutlab/sprout-api/internal/retry"
	"github.com/sproutlab/sprout-api/internal/store"
	"github.com/sproutlab/sprout-api/internal/task"
)

// UnifiedStatus is the read-model for a unified job. Status is derived
// on every read, never stored.
type UnifiedStatus struct {
	ID              uuid.UUID
	Phase           domain.UnifiedPhase
	Status          domain.JobStatus
	CharacterStatus domain.JobStatus
	ResearchStatus  domain.JobStatus
	GuideStatus     domain.JobStatus
	SubJobIDs       map[domain.SubJobRole]uuid.UUID
}

// UnifiedService executes one client request as independently-failing
// sub-jobs behind a single aggregate. Phase 1 (character art and basic
// analysis) runs to a hard barrier; phases 2 and 3 (research, guide)
// then launch concurrently using the analysis result as input,
// degrading to a default subject when the analysis failed.
type UnifiedService struct {
	jobs           store.JobStore
	unified        store.UnifiedJobStore
	runner         *task.Runner
	executor       *task.Executor
	generator      generation.Generator
	policy         retry.Policy
	defaultSubject string
	logger         *slog.Logger

	// wg tracks in-flight supervision goroutines for clean shutdown.
	wg sync.WaitGroup
}

// NewUnifiedService creates a UnifiedService.
func NewUnifiedService(
	jobs store.JobStore,
	unified store.UnifiedJobStore,
	runner *task.Runner,
	executor *task.Executor,
	generator generation.Generator,
	policy retry.Policy,
	defaultSubject string,
	logger *slog.Logger,
) *UnifiedService {
	if defaultSubject == "" {
		defaultSubject = "the garden"
	}
	return &UnifiedService{
		jobs:           jobs,
		unified:        unified,
		runner:         runner,
		executor:       executor,
		generator:      generator,
		policy:         policy,
		defaultSubject: defaultSubject,
		logger:         logger.With("component", "unified_service"),
	}
}

// StartUnified atomically creates the unified record and all four
// sub-job records (all pending), returns immediately, and supervises
// execution in the background. Completion is observed purely by polling.
func (s *UnifiedService) StartUnified(ctx context.Context, imageData []byte) (*domain.UnifiedJob, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: seed packet image is required", ErrInvalidRequest)
	}

	character, err := domain.NewJob(domain.JobKindCharacter)
	if err != nil {
		return nil, err
	}
	research, err := domain.NewJob(domain.JobKindResearch)
	if err != nil {
		return nil, err
	}
	guide, err := domain.NewJob(domain.JobKindGuide)
	if err != nil {
		return nil, err
	}
	analysis, err := domain.NewJob(domain.JobKindAnalysis)
	if err != nil {
		return nil, err
	}

	unified, err := domain.NewUnifiedJob(character.ID, research.ID, guide.ID, analysis.ID)
	if err != nil {
		return nil, err
	}

	subJobs := []*domain.Job{character, research, guide, analysis}
	if err := s.unified.CreateWithSubJobs(ctx, unified, subJobs); err != nil {
		return nil, fmt.Errorf("failed to create unified job: %w", err)
	}

	s.wg.Add(1)
	go s.supervise(unified.Clone(), character, research, guide, analysis, imageData)

	s.logger.Info("unified job started", "unified_id", unified.ID)
	return unified, nil
}

// GetUnifiedStatus reads the unified record and its required sub-jobs
// and recomputes the aggregate status.
func (s *UnifiedService) GetUnifiedStatus(ctx context.Context, id uuid.UUID) (*UnifiedStatus, error) {
	unified, err := s.unified.GetUnifiedJob(ctx, id)
	if err != nil {
		return nil, err
	}

	var character, research, guide *domain.Job
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if character, err = s.jobs.GetJob(gctx, unified.CharacterJobID); err != nil {
			return fmt.Errorf("failed to read character sub-job: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if research, err = s.jobs.GetJob(gctx, unified.ResearchJobID); err != nil {
			return fmt.Errorf("failed to read research sub-job: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if guide, err = s.jobs.GetJob(gctx, unified.GuideJobID); err != nil {
			return fmt.Errorf("failed to read guide sub-job: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &UnifiedStatus{
		ID:              unified.ID,
		Phase:           unified.Phase,
		Status:          domain.AggregateStatus(character.Status, research.Status, guide.Status),
		CharacterStatus: character.Status,
		ResearchStatus:  research.Status,
		GuideStatus:     guide.Status,
		SubJobIDs:       unified.SubJobIDs(),
	}, nil
}

// Wait blocks until all supervision goroutines have finished. Used
// during shutdown and by tests.
func (s *UnifiedService) Wait() {
	s.wg.Wait()
}

// signalTask wraps a Task and closes done once execution finished, so
// the supervisor can impose phase barriers. The runner calls Dropped
// instead of Execute when it discards the task at shutdown; done must
// close on that path too or the supervisor blocks forever.
type signalTask struct {
	task.Task
	done chan struct{}
	drop func()
}

func (t *signalTask) Execute(ctx context.Context) error {
	defer close(t.done)
	return t.Task.Execute(ctx)
}

func (t *signalTask) Dropped() {
	defer close(t.done)
	t.drop()
}

// launch submits a barrier task for one sub-job. err threads a task
// constructor failure through so call sites stay flat. The returned
// channel closes when the sub-job's record is terminal, whether the
// task executed or was discarded at shutdown.
func (s *UnifiedService) launch(ctx context.Context, subJob *domain.Job, t task.Task, err error) (<-chan struct{}, error) {
	if err != nil {
		return nil, err
	}
	st := &signalTask{
		Task: t,
		done: make(chan struct{}),
		drop: func() {
			// The task never executed, so the record is still owned
			// here, not by the executor.
			s.abandonSubJobs(context.Background(), s.logger, task.ErrRunnerStopped, subJob)
		},
	}
	if err := s.runner.SubmitWait(ctx, st); err != nil {
		return nil, err
	}
	return st.done, nil
}

// supervise drives the phases. It runs detached from the submitting
// request; sub-job failures are recorded on their own records and a
// supervisor failure can only leave sub-jobs pending, which the
// aggregate reports as processing until their executors run.
func (s *UnifiedService) supervise(
	unified *domain.UnifiedJob,
	character, research, guide, analysis *domain.Job,
	imageData []byte,
) {
	defer s.wg.Done()

	ctx := context.Background()
	logger := s.logger.With("unified_id", unified.ID)

	// Phase 1: character art and basic analysis, in parallel, with a
	// hard barrier on both reaching a terminal state.
	characterTask, err := task.NewCharacterFromImageTask(
		s.executor, s.generator, s.policy, s.logger, character, imageData)
	characterDone, err := s.launch(ctx, character, characterTask, err)
	if err != nil {
		s.abandonSubJobs(ctx, logger, err, character, research, guide, analysis)
		return
	}

	analysisTask, err := task.NewAnalysisTask(
		s.executor, s.generator, s.policy, s.logger, analysis, imageData)
	analysisDone, err := s.launch(ctx, analysis, analysisTask, err)
	if err != nil {
		s.abandonSubJobs(ctx, logger, err, research, guide, analysis)
		<-characterDone
		return
	}

	<-characterDone
	<-analysisDone

	// The later phases need the analyzed plant name. A failed analysis
	// must never block them: degrade to the default subject instead.
	subject := s.defaultSubject
	if stored, err := s.jobs.GetJob(ctx, analysis.ID); err != nil {
		logger.Error("failed to read analysis result, using default subject", "error", err)
	} else if stored.Status == domain.JobStatusCompleted && stored.Result != nil && stored.Result.Analysis != nil {
		subject = stored.Result.Analysis.PlantName
	} else {
		logger.Warn("analysis did not complete, using default subject",
			"analysis_status", stored.Status, "subject", subject)
	}

	if err := unified.AdvancePhase(domain.UnifiedPhase2_3); err != nil {
		logger.Error("failed to advance phase", "error", err)
	} else if err := s.unified.UpdateUnifiedJob(ctx, unified); err != nil {
		logger.Error("failed to persist phase advance", "error", err)
	}

	// Phases 2 and 3: research and guide, in parallel, no barrier.
	researchTask, err := task.NewResearchTask(
		s.executor, s.generator, s.policy, s.logger, research, subject)
	researchDone, err := s.launch(ctx, research, researchTask, err)
	if err != nil {
		s.abandonSubJobs(ctx, logger, err, research)
		researchDone = closedChan()
	}

	guideTask, err := task.NewGuideTask(
		s.executor, s.generator, s.policy, s.logger, guide, subject)
	guideDone, err := s.launch(ctx, guide, guideTask, err)
	if err != nil {
		s.abandonSubJobs(ctx, logger, err, guide)
		guideDone = closedChan()
	}

	<-researchDone
	<-guideDone

	if err := unified.AdvancePhase(domain.UnifiedPhaseDone); err != nil {
		logger.Error("failed to advance phase", "error", err)
	} else if err := s.unified.UpdateUnifiedJob(ctx, unified); err != nil {
		logger.Error("failed to persist phase advance", "error", err)
	}

	logger.Info("unified job supervision finished")
}

// abandonSubJobs fails sub-jobs that could not be launched. Ownership
// never reached an executor, so the supervisor is still their writer.
func (s *UnifiedService) abandonSubJobs(
	ctx context.Context,
	logger *slog.Logger,
	cause error,
	jobs ...*domain.Job,
) {
	logger.Error("failed to launch sub-jobs", "error", cause)
	for _, job := range jobs {
		if job.Status.IsTerminal() {
			continue
		}
		if err := job.Fail(fmt.Sprintf("sub-job was not launched: %v", cause)); err != nil {
			logger.Error("failed to mark sub-job failed", "job_id", job.ID, "error", err)
			continue
		}
		if err := s.jobs.UpdateJob(ctx, job); err != nil {
			logger.Error("failed to persist sub-job failure", "job_id", job.ID, "error", err)
		}
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
