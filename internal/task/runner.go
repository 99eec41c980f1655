package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Submit when the admission queue is at
// capacity. Excess submissions are rejected rather than spawned
// unboundedly.
var ErrQueueFull = errors.New("task queue is full")

// ErrRunnerStopped is returned by Submit and SubmitWait once Stop has
// begun. No task is admitted after that point.
var ErrRunnerStopped = errors.New("task runner is shutting down")

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many tasks run concurrently.
	WorkerCount int

	// QueueSize determines the buffer size of the FIFO admission queue.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 4,
		QueueSize:   100,
	}
}

// Runner manages background task processing with a fixed worker pool.
// Admitted tasks are processed in FIFO order; concurrency never exceeds
// WorkerCount.
type Runner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger

	// stopMu gates enqueues against Stop: once stopped is set, no task
	// can land in taskChan, so Stop's drain observes every admitted
	// task that no worker picked up.
	stopMu  sync.RWMutex
	stopped bool
}

// NewRunner creates a new Runner.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
	}
}

// Submit adds a task to the admission queue. Returns ErrQueueFull when
// the queue is at capacity and ErrRunnerStopped after Stop.
func (r *Runner) Submit(task Task) error {
	err := r.trySubmit(task)
	if errors.Is(err, ErrQueueFull) {
		return fmt.Errorf("%w (capacity %d), try again later", ErrQueueFull, r.config.QueueSize)
	}
	return err
}

// SubmitWait adds a task to the admission queue, retrying while the
// queue is full until space frees up, ctx is cancelled, or the runner
// stops. Used by supervisors that must not drop sub-jobs under load.
func (r *Runner) SubmitWait(ctx context.Context, task Task) error {
	for {
		err := r.trySubmit(task)
		if err == nil || !errors.Is(err, ErrQueueFull) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.ctx.Done():
			return ErrRunnerStopped
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (r *Runner) trySubmit(task Task) error {
	r.stopMu.RLock()
	defer r.stopMu.RUnlock()

	if r.stopped {
		return ErrRunnerStopped
	}
	select {
	case r.taskChan <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started",
		"worker_count", r.config.WorkerCount,
		"queue_size", r.config.QueueSize)
}

// Stop signals workers to finish their current task and waits for them,
// then discards queued tasks that never started, notifying each one
// that implements DroppedTask. In-flight job records keep whatever
// state was last persisted.
func (r *Runner) Stop() {
	r.stopMu.Lock()
	r.stopped = true
	r.stopMu.Unlock()

	r.cancelFunc()
	r.wg.Wait()

	for {
		select {
		case task := <-r.taskChan:
			r.dropTask(task)
		default:
			return
		}
	}
}

func (r *Runner) dropTask(task Task) {
	r.logger.Warn("discarding queued task at shutdown",
		"job_id", task.ID(),
		"job_kind", task.Kind())

	if d, ok := task.(DroppedTask); ok {
		d.Dropped()
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.taskChan:
			if !ok {
				return
			}
			// A cancelled runner must not start new work; hand the
			// task back to the drop path instead.
			if r.ctx.Err() != nil {
				r.dropTask(task)
				continue
			}
			r.processTask(task, id)
		}
	}
}

func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"job_id", task.ID(),
		"job_kind", task.Kind(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	if err := task.Execute(r.ctx); err != nil {
		// The job record is already terminal; this is observability only.
		logger.Error("task finished with failure", "error", err)
		return
	}

	logger.Info("task completed")
}
