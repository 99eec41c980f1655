package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/platform/logger"
	"github.com/sproutlab/sprout-api/internal/store"
)

// UnifiedJobStore implements store.UnifiedJobStore against PostgreSQL.
// Atomic creation of the unified record with its sub-jobs needs a real
// *sql.DB to open a transaction; single-record operations run over the
// embedded DBTX.
type UnifiedJobStore struct {
	db     *sql.DB
	dbtx   store.DBTX
	jobs   *JobStore
	logger *slog.Logger
}

// NewUnifiedJobStore creates a UnifiedJobStore. jobs persists the
// sub-job records inside the same transaction as the unified record.
func NewUnifiedJobStore(db *sql.DB, jobs *JobStore, log *slog.Logger) *UnifiedJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if jobs == nil {
		panic("jobs cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UnifiedJobStore{
		db:     db,
		dbtx:   db,
		jobs:   jobs,
		logger: log.With("component", "unified_job_store"),
	}
}

var _ store.UnifiedJobStore = (*UnifiedJobStore)(nil)

// CreateWithSubJobs implements store.UnifiedJobStore. The unified record
// and every sub-job record commit together or not at all.
func (s *UnifiedJobStore) CreateWithSubJobs(
	ctx context.Context,
	unified *domain.UnifiedJob,
	subJobs []*domain.Job,
) error {
	if err := unified.Validate(); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		jobs := s.jobs.WithTx(tx)
		for _, job := range subJobs {
			if err := jobs.CreateJob(ctx, job); err != nil {
				return fmt.Errorf("failed to create sub-job %s: %w", job.ID, err)
			}
		}
		return insertUnified(ctx, tx, unified)
	})
}

// UpdateUnifiedJob implements store.UnifiedJobStore.
func (s *UnifiedJobStore) UpdateUnifiedJob(ctx context.Context, unified *domain.UnifiedJob) error {
	log := logger.FromContext(ctx)

	if err := unified.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE unified_jobs
		SET phase = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := s.dbtx.ExecContext(ctx, query, unified.ID, unified.Phase, unified.UpdatedAt)
	if err != nil {
		log.Error("failed to update unified job", "unified_id", unified.ID, "error", err)
		return MapError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", store.ErrUnifiedJobNotFound, unified.ID)
	}
	return nil
}

// GetUnifiedJob implements store.UnifiedJobStore.
func (s *UnifiedJobStore) GetUnifiedJob(ctx context.Context, id uuid.UUID) (*domain.UnifiedJob, error) {
	query := `
		SELECT id, character_job_id, research_job_id, guide_job_id, analysis_job_id,
		       phase, created_at, updated_at
		FROM unified_jobs
		WHERE id = $1
	`
	var unified domain.UnifiedJob
	err := s.dbtx.QueryRowContext(ctx, query, id).Scan(
		&unified.ID,
		&unified.CharacterJobID,
		&unified.ResearchJobID,
		&unified.GuideJobID,
		&unified.AnalysisJobID,
		&unified.Phase,
		&unified.CreatedAt,
		&unified.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUnifiedJobNotFound, id)
		}
		return nil, MapError(err)
	}
	return &unified, nil
}

func insertUnified(ctx context.Context, tx *sql.Tx, unified *domain.UnifiedJob) error {
	query := `
		INSERT INTO unified_jobs (id, character_job_id, research_job_id, guide_job_id,
			analysis_job_id, phase, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, query,
		unified.ID,
		unified.CharacterJobID,
		unified.ResearchJobID,
		unified.GuideJobID,
		unified.AnalysisJobID,
		unified.Phase,
		unified.CreatedAt,
		unified.UpdatedAt,
	); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: unified job %s already exists", store.ErrDuplicate, unified.ID)
		}
		return MapError(err)
	}
	return nil
}
