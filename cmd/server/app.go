package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sproutlab/sprout-api/internal/config"
	"github.com/sproutlab/sprout-api/internal/events"
	"github.com/sproutlab/sprout-api/internal/generation"
	"github.com/sproutlab/sprout-api/internal/platform/gemini"
	"github.com/sproutlab/sprout-api/internal/platform/imagestore"
	"github.com/sproutlab/sprout-api/internal/retry"
	"github.com/sproutlab/sprout-api/internal/service"
	"github.com/sproutlab/sprout-api/internal/task"
)

// application holds the fully wired dependency graph. Everything is
// constructed once at startup and shared for the process lifetime.
type application struct {
	config *config.Config
	logger *slog.Logger
	stores *dataStores

	runner *task.Runner

	jobService     *service.JobService
	unifiedService *service.UnifiedService
	diaryService   *service.DiaryService
}

// newApplication builds the application from configuration: stores,
// the generation provider, and the service layer on top of them.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	stores, err := setupStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	images, err := imagestore.NewFilesystemStore(cfg.Storage.ImageDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	generator, err := gemini.NewGenerator(ctx, cfg.LLM, images, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	return newApplicationWithDeps(cfg, logger, stores, generator), nil
}

// newApplicationWithDeps wires the service layer over already
// constructed stores and generator. Split out so tests can inject an
// in-memory store and a mock generator.
func newApplicationWithDeps(
	cfg *config.Config,
	logger *slog.Logger,
	stores *dataStores,
	generator generation.Generator,
) *application {
	policy := retry.Policy{
		MaxRetries: cfg.LLM.MaxRetries,
		BaseDelay:  time.Duration(cfg.LLM.RetryDelaySeconds) * time.Second,
		MaxDelay:   time.Minute,
	}

	executor := task.NewExecutor(stores.jobs, task.ExecutorConfig{
		DefaultTimeout: cfg.Jobs.Timeout,
		DiaryTimeout:   cfg.Diary.Timeout,
	}, logger)

	runner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Jobs.WorkerCount,
		QueueSize:   cfg.Jobs.QueueSize,
	}, logger)

	diaryService := service.NewDiaryService(
		stores.diaries,
		generator,
		policy,
		cfg.Diary.Timeout,
		cfg.Diary.DefaultSubject,
		logger,
	)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewJobRequestEventHandler(
		stores.jobs,
		executor,
		generator,
		policy,
		runner,
		diaryService.DiaryWork,
		logger,
	))

	unifiedService := service.NewUnifiedService(
		stores.jobs,
		stores.unified,
		runner,
		executor,
		generator,
		policy,
		cfg.Diary.DefaultSubject,
		logger,
	)

	return &application{
		config:         cfg,
		logger:         logger,
		stores:         stores,
		runner:         runner,
		jobService:     service.NewJobService(stores.jobs, emitter, logger),
		unifiedService: unifiedService,
		diaryService:   diaryService,
	}
}

// run starts the worker pool and the HTTP server, then blocks until
// shutdown completes.
func (app *application) run(ctx context.Context) error {
	app.runner.Start()
	return app.serve(ctx)
}

// cleanup drains background work and releases resources, in dependency
// order: stop admitting tasks, wait for supervisors and detached diary
// pipelines, then close the database.
func (app *application) cleanup() {
	app.runner.Stop()
	app.unifiedService.Wait()
	app.diaryService.Wait()

	if app.stores.db != nil {
		if err := app.stores.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
