package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutlab/sprout-api/internal/domain"
)

// fakeTask is a minimal Task for runner tests.
type fakeTask struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
}

func (t *fakeTask) ID() uuid.UUID        { return t.id }
func (t *fakeTask) Kind() domain.JobKind { return domain.JobKindAnalysis }
func (t *fakeTask) Execute(ctx context.Context) error {
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func TestRunner_ProcessesSubmittedTasks(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 2, QueueSize: 10}, testLogger())
	runner.Start()
	defer runner.Stop()

	var wg sync.WaitGroup
	var executed atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := runner.Submit(&fakeTask{
			id: uuid.New(),
			execute: func(ctx context.Context) error {
				defer wg.Done()
				executed.Add(1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks were not processed in time")
	}
	assert.Equal(t, int32(5), executed.Load())
}

func TestRunner_QueueFull(t *testing.T) {
	t.Parallel()

	// No workers started: the queue holds exactly QueueSize tasks.
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 2}, testLogger())

	require.NoError(t, runner.Submit(&fakeTask{id: uuid.New()}))
	require.NoError(t, runner.Submit(&fakeTask{id: uuid.New()}))

	err := runner.Submit(&fakeTask{id: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	const workers = 2

	runner := NewRunner(RunnerConfig{WorkerCount: workers, QueueSize: 20}, testLogger())
	runner.Start()
	defer runner.Stop()

	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := runner.Submit(&fakeTask{
			id: uuid.New(),
			execute: func(ctx context.Context) error {
				defer wg.Done()

				mu.Lock()
				inFlight++
				if inFlight > peak {
					peak = inFlight
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			},
		})
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tasks did not drain in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, workers, "concurrency must never exceed the worker count")
	assert.Positive(t, peak)
}

func TestRunner_StopWaitsForInFlightTask(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 5}, testLogger())
	runner.Start()

	started := make(chan struct{})
	finished := make(chan struct{})
	require.NoError(t, runner.Submit(&fakeTask{
		id: uuid.New(),
		execute: func(ctx context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return nil
		},
	}))

	<-started
	runner.Stop()

	select {
	case <-finished:
	default:
		t.Fatal("Stop returned before the in-flight task finished")
	}
}

func TestNewRunner_AppliesDefaults(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{}, testLogger())
	assert.Equal(t, DefaultRunnerConfig().WorkerCount, runner.config.WorkerCount)
	assert.Equal(t, DefaultRunnerConfig().QueueSize, runner.config.QueueSize)
}

// droppableTask records the shutdown notification for queued tasks the
// runner discards.
type droppableTask struct {
	fakeTask
	dropped atomic.Bool
}

func (t *droppableTask) Dropped() { t.dropped.Store(true) }

func TestRunner_StopNotifiesDroppedQueuedTasks(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 5}, testLogger())
	runner.Start()

	// The in-flight task holds the only worker until Stop cancels the
	// runner context, so the queued tasks below cannot start.
	started := make(chan struct{})
	require.NoError(t, runner.Submit(&fakeTask{
		id: uuid.New(),
		execute: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return nil
		},
	}))
	<-started

	queued := []*droppableTask{
		{fakeTask: fakeTask{id: uuid.New()}},
		{fakeTask: fakeTask{id: uuid.New()}},
	}
	for _, task := range queued {
		require.NoError(t, runner.Submit(task))
	}

	stopDone := make(chan struct{})
	go func() {
		runner.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	for _, task := range queued {
		assert.True(t, task.dropped.Load(), "queued task %s was not notified", task.id)
	}
}

func TestRunner_SubmitAfterStop(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 5}, testLogger())
	runner.Start()
	runner.Stop()

	assert.ErrorIs(t, runner.Submit(&fakeTask{id: uuid.New()}), ErrRunnerStopped)

	err := runner.SubmitWait(context.Background(), &fakeTask{id: uuid.New()})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}
