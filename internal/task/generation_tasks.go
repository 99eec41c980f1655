package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/generation"
	"github.com/sproutlab/sprout-api/internal/retry"
)

// Common errors for task construction
var (
	ErrNilExecutor  = errors.New("executor cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilJob       = errors.New("job cannot be nil")
	ErrKindMismatch = errors.New("job kind does not match task type")
	ErrEmptyInput   = errors.New("task input cannot be empty")
)

// jobTask binds a job record to its unit of work. Execute hands both to
// the Executor, which owns all persistence.
type jobTask struct {
	job      *domain.Job
	executor *Executor
	work     WorkFunc
}

func (t *jobTask) ID() uuid.UUID        { return t.job.ID }
func (t *jobTask) Kind() domain.JobKind { return t.job.Kind }
func (t *jobTask) Execute(ctx context.Context) error {
	return t.executor.Run(ctx, t.job, t.work)
}

func newJobTask(executor *Executor, job *domain.Job, kind domain.JobKind, work WorkFunc) (Task, error) {
	if executor == nil {
		return nil, ErrNilExecutor
	}
	if job == nil {
		return nil, ErrNilJob
	}
	if job.Kind != kind {
		return nil, fmt.Errorf("%w: job is %s, task is %s", ErrKindMismatch, job.Kind, kind)
	}
	return &jobTask{job: job, executor: executor, work: work}, nil
}

// NewAnalysisTask creates a task that analyzes a seed-packet photo.
func NewAnalysisTask(
	executor *Executor,
	generator generation.Generator,
	policy retry.Policy,
	logger *slog.Logger,
	job *domain.Job,
	imageData []byte,
) (Task, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: seed packet image", ErrEmptyInput)
	}

	work := func(ctx context.Context, progress ProgressFunc) (*domain.JobResult, error) {
		progress("analyzing seed packet")

		result, err := retry.Do(ctx, logger, policy, func(ctx context.Context) (*domain.AnalysisResult, error) {
			return generator.AnalyzeSeedPacket(ctx, imageData)
		})
		if err != nil {
			return nil, err
		}

		progress(fmt.Sprintf("identified %s", result.PlantName))
		return domain.NewAnalysisJobResult(*result), nil
	}

	return newJobTask(executor, job, domain.JobKindAnalysis, work)
}

// NewGuideTask creates a task that generates a growing guide.
func NewGuideTask(
	executor *Executor,
	generator generation.Generator,
	policy retry.Policy,
	logger *slog.Logger,
	job *domain.Job,
	plantName string,
) (Task, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name", ErrEmptyInput)
	}

	work := func(ctx context.Context, progress ProgressFunc) (*domain.JobResult, error) {
		progress(fmt.Sprintf("writing growing guide for %s", plantName))

		result, err := retry.Do(ctx, logger, policy, func(ctx context.Context) (*domain.GuideResult, error) {
			return generator.GenerateGuide(ctx, plantName)
		})
		if err != nil {
			return nil, err
		}

		progress(fmt.Sprintf("guide ready with %d steps", len(result.Steps)))
		return domain.NewGuideJobResult(*result), nil
	}

	return newJobTask(executor, job, domain.JobKindGuide, work)
}

// NewCharacterTask creates a task that generates character art.
func NewCharacterTask(
	executor *Executor,
	generator generation.Generator,
	policy retry.Policy,
	logger *slog.Logger,
	job *domain.Job,
	plantName string,
) (Task, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name", ErrEmptyInput)
	}

	work := func(ctx context.Context, progress ProgressFunc) (*domain.JobResult, error) {
		progress(fmt.Sprintf("drawing a character for %s", plantName))

		result, err := retry.Do(ctx, logger, policy, func(ctx context.Context) (*domain.CharacterResult, error) {
			return generator.GenerateCharacter(ctx, plantName)
		})
		if err != nil {
			return nil, err
		}

		progress(fmt.Sprintf("character %s is ready", result.Name))
		return domain.NewCharacterJobResult(*result), nil
	}

	return newJobTask(executor, job, domain.JobKindCharacter, work)
}

// NewCharacterFromImageTask creates a task that generates character art
// straight from a seed packet photo, for flows where no plant name is
// known yet.
func NewCharacterFromImageTask(
	executor *Executor,
	generator generation.Generator,
	policy retry.Policy,
	logger *slog.Logger,
	job *domain.Job,
	imageData []byte,
) (Task, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: seed packet image", ErrEmptyInput)
	}

	work := func(ctx context.Context, progress ProgressFunc) (*domain.JobResult, error) {
		progress("drawing a character from the seed packet")

		result, err := retry.Do(ctx, logger, policy, func(ctx context.Context) (*domain.CharacterResult, error) {
			return generator.GenerateCharacterFromImage(ctx, imageData)
		})
		if err != nil {
			return nil, err
		}

		progress(fmt.Sprintf("character %s is ready", result.Name))
		return domain.NewCharacterJobResult(*result), nil
	}

	return newJobTask(executor, job, domain.JobKindCharacter, work)
}

// NewResearchTask creates a task that runs deep research on a plant.
func NewResearchTask(
	executor *Executor,
	generator generation.Generator,
	policy retry.Policy,
	logger *slog.Logger,
	job *domain.Job,
	plantName string,
) (Task, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name", ErrEmptyInput)
	}

	work := func(ctx context.Context, progress ProgressFunc) (*domain.JobResult, error) {
		progress(fmt.Sprintf("researching %s", plantName))

		result, err := retry.Do(ctx, logger, policy, func(ctx context.Context) (*domain.ResearchResult, error) {
			return generator.ResearchPlant(ctx, plantName)
		})
		if err != nil {
			return nil, err
		}

		progress("research complete")
		return domain.NewResearchJobResult(*result), nil
	}

	return newJobTask(executor, job, domain.JobKindResearch, work)
}

// NewWorkTask wraps an arbitrary WorkFunc for kinds whose work is
// assembled elsewhere (diary generation builds its pipeline in the
// service layer).
func NewWorkTask(executor *Executor, job *domain.Job, work WorkFunc) (Task, error) {
	if job == nil {
		return nil, ErrNilJob
	}
	return newJobTask(executor, job, job.Kind, work)
}
