package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobKind identifies the type of work a job performs.
type JobKind string

// Possible job kinds
const (
	JobKindAnalysis  JobKind = "analysis"
	JobKindGuide     JobKind = "guide"
	JobKindCharacter JobKind = "character"
	JobKindResearch  JobKind = "research"
	JobKindDiary     JobKind = "diary"
)

// JobStatus represents the lifecycle state of a job
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Common validation and lifecycle errors for Job
var (
	ErrEmptyJobID           = errors.New("job ID cannot be empty")
	ErrInvalidJobKind       = errors.New("invalid job kind")
	ErrInvalidJobStatus     = errors.New("invalid job status")
	ErrInvalidTransition    = errors.New("invalid job status transition")
	ErrResultWithoutSuccess = errors.New("job result is only valid on a completed job")
)

// Job is a unit of asynchronous, AI-backed work tracked through a
// lifecycle state machine: pending -> processing -> completed|failed.
// Once a terminal status is recorded the record never changes again.
type Job struct {
	ID        uuid.UUID  `json:"id"`
	Kind      JobKind    `json:"kind"`
	Status    JobStatus  `json:"status"`
	Message   string     `json:"message,omitempty"`
	Result    *JobResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewJob creates a new pending Job of the given kind with a fresh ID.
func NewJob(kind JobKind) (*Job, error) {
	job := &Job{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}
	if !isValidJobKind(j.Kind) {
		return fmt.Errorf("%w: %q", ErrInvalidJobKind, j.Kind)
	}
	if !isValidJobStatus(j.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidJobStatus, j.Status)
	}
	if j.Result != nil && j.Status != JobStatusCompleted {
		return ErrResultWithoutSuccess
	}
	return nil
}

// IsTerminal reports whether the status is completed or failed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition. Terminal states accept no further transitions,
// and no transition skips pending.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing || next.IsTerminal()
	case JobStatusProcessing:
		return next == JobStatusProcessing || next.IsTerminal()
	default:
		return false
	}
}

// TransitionTo moves the job to the given status, advancing UpdatedAt.
// An illegal transition (anything out of a terminal state, or an unknown
// status) is rejected with ErrInvalidTransition; the record is untouched.
func (j *Job) TransitionTo(status JobStatus) error {
	if !isValidJobStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidJobStatus, status)
	}
	if !j.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}

	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateMessage replaces the progress message on a non-terminal job.
func (j *Job) UpdateMessage(message string) error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot update message in %s", ErrInvalidTransition, j.Status)
	}
	j.Message = message
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the job to completed, attaching its result.
func (j *Job) Complete(result *JobResult) error {
	if err := j.TransitionTo(JobStatusCompleted); err != nil {
		return err
	}
	j.Result = result
	j.Error = ""
	return nil
}

// Fail transitions the job to failed, recording the error description.
func (j *Job) Fail(errMsg string) error {
	if err := j.TransitionTo(JobStatusFailed); err != nil {
		return err
	}
	j.Error = errMsg
	j.Result = nil
	return nil
}

// Clone returns a deep-enough copy of the job for handing to readers.
// Result payloads are value structs, so a shallow copy of the pointer
// target is sufficient.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}

func isValidJobKind(kind JobKind) bool {
	switch kind {
	case JobKindAnalysis, JobKindGuide, JobKindCharacter, JobKindResearch, JobKindDiary:
		return true
	default:
		return false
	}
}

func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// ParseJobKind converts a string (e.g. a URL path segment) into a JobKind.
func ParseJobKind(s string) (JobKind, error) {
	kind := JobKind(s)
	if !isValidJobKind(kind) {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobKind, s)
	}
	return kind, nil
}
