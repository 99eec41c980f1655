// Package memory provides a fully in-memory implementation of the store
// interfaces. Safe for concurrent access. Used by tests and when the
// server runs without a configured database.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/store"
)

// Compile-time interface checks.
var (
	_ store.JobStore        = (*Store)(nil)
	_ store.UnifiedJobStore = (*Store)(nil)
	_ store.DiaryStore      = (*Store)(nil)
)

// Store holds all records in process memory. Records are copied on both
// write and read so a caller can never mutate stored state in place;
// readers always observe a fully-written record.
type Store struct {
	mu sync.RWMutex

	jobs    map[uuid.UUID]*domain.Job
	unified map[uuid.UUID]*domain.UnifiedJob
	diaries map[string]*domain.DiaryEntry // key: YYYY-MM-DD date
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		jobs:    make(map[uuid.UUID]*domain.Job),
		unified: make(map[uuid.UUID]*domain.UnifiedJob),
		diaries: make(map[string]*domain.DiaryEntry),
	}
}

// CreateJob persists a new job record.
func (m *Store) CreateJob(_ context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return store.ErrDuplicate
	}
	m.jobs[job.ID] = job.Clone()
	return nil
}

// UpdateJob replaces the full job record.
func (m *Store) UpdateJob(_ context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; !exists {
		return store.ErrJobNotFound
	}
	m.jobs[job.ID] = job.Clone()
	return nil
}

// GetJob retrieves a job by ID.
func (m *Store) GetJob(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return job.Clone(), nil
}

// CreateWithSubJobs persists the unified record and all sub-jobs under
// one lock acquisition, so no reader observes a partial aggregate.
func (m *Store) CreateWithSubJobs(
	_ context.Context,
	unified *domain.UnifiedJob,
	subJobs []*domain.Job,
) error {
	if err := unified.Validate(); err != nil {
		return err
	}
	for _, job := range subJobs {
		if err := job.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.unified[unified.ID]; exists {
		return store.ErrDuplicate
	}
	for _, job := range subJobs {
		if _, exists := m.jobs[job.ID]; exists {
			return store.ErrDuplicate
		}
	}

	m.unified[unified.ID] = unified.Clone()
	for _, job := range subJobs {
		m.jobs[job.ID] = job.Clone()
	}
	return nil
}

// UpdateUnifiedJob replaces the full unified record.
func (m *Store) UpdateUnifiedJob(_ context.Context, unified *domain.UnifiedJob) error {
	if err := unified.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.unified[unified.ID]; !exists {
		return store.ErrUnifiedJobNotFound
	}
	m.unified[unified.ID] = unified.Clone()
	return nil
}

// GetUnifiedJob retrieves a unified job by ID.
func (m *Store) GetUnifiedJob(_ context.Context, id uuid.UUID) (*domain.UnifiedJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	unified, ok := m.unified[id]
	if !ok {
		return nil, store.ErrUnifiedJobNotFound
	}
	return unified.Clone(), nil
}

// SaveEntry creates or replaces the diary entry for its date.
func (m *Store) SaveEntry(_ context.Context, entry *domain.DiaryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	m.diaries[entry.Date] = &cp
	return nil
}

// GetEntryByDate retrieves the diary entry for the given date.
func (m *Store) GetEntryByDate(_ context.Context, date string) (*domain.DiaryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.diaries[date]
	if !ok {
		return nil, store.ErrDiaryNotFound
	}
	cp := *entry
	return &cp, nil
}
