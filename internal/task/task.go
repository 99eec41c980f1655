package task

import (
	"context"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
)

// Task represents a unit of background work to be processed by the
// Runner. Execute is called at most once.
type Task interface {
	// ID returns the ID of the job record this task drives.
	ID() uuid.UUID

	// Kind returns the job kind.
	Kind() domain.JobKind

	// Execute runs the task to completion. The returned error is for
	// observability only: by the time Execute returns, the job record
	// has already been driven to a terminal state by the Executor.
	Execute(ctx context.Context) error
}

// DroppedTask is implemented by tasks whose submitter blocks on a
// completion signal. The Runner calls Dropped for every admitted task
// it discards at shutdown without executing, so the submitter is never
// left waiting on a task that will not run.
type DroppedTask interface {
	Dropped()
}
