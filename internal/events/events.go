package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
)

// JobRequestEvent represents a request to start executing an
// already-created job record. It carries the kind-specific input without
// direct dependencies on the task package.
type JobRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// JobID is the pending job record the event refers to
	JobID uuid.UUID `json:"job_id"`

	// Kind is the job kind to execute
	Kind domain.JobKind `json:"kind"`

	// Payload contains the kind-specific input serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *JobRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobRequestEvent creates a new JobRequestEvent for the given job.
func NewJobRequestEvent(jobID uuid.UUID, kind domain.JobKind, payload any) (*JobRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &JobRequestEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		Kind:      kind,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler is implemented by components that process job request
// events (typically by building a task and handing it to the runner).
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter is implemented by components that publish job request
// events, letting services trigger execution without knowing about the
// task layer.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}
