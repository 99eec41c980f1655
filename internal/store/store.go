package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
)

// JobStore persists job records keyed by ID. Each record has exactly one
// writer (the executor that owns the job) for its whole lifetime; readers
// always observe the latest fully-written record.
type JobStore interface {
	// CreateJob persists a new job record. Returns ErrDuplicate if a
	// record with the same ID already exists.
	CreateJob(ctx context.Context, job *domain.Job) error

	// UpdateJob replaces the full job record (last-writer-wins).
	// Returns ErrJobNotFound if no record with the job's ID exists.
	UpdateJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a job by ID. Returns ErrJobNotFound if absent.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

// UnifiedJobStore persists unified-job records and their sub-job records.
type UnifiedJobStore interface {
	// CreateWithSubJobs persists the unified record and all of its
	// sub-job records atomically, so a reader can never observe the
	// unified record without its sub-jobs.
	CreateWithSubJobs(ctx context.Context, unified *domain.UnifiedJob, subJobs []*domain.Job) error

	// UpdateUnifiedJob replaces the full unified record. Returns
	// ErrUnifiedJobNotFound if absent.
	UpdateUnifiedJob(ctx context.Context, unified *domain.UnifiedJob) error

	// GetUnifiedJob retrieves a unified job by ID. Returns
	// ErrUnifiedJobNotFound if absent.
	GetUnifiedJob(ctx context.Context, id uuid.UUID) (*domain.UnifiedJob, error)
}

// DiaryStore persists diary entries, one per date.
type DiaryStore interface {
	// SaveEntry creates or replaces the entry for its date.
	SaveEntry(ctx context.Context, entry *domain.DiaryEntry) error

	// GetEntryByDate retrieves the entry for the given YYYY-MM-DD date.
	// Returns ErrDiaryNotFound if absent.
	GetEntryByDate(ctx context.Context, date string) (*domain.DiaryEntry, error)
}
