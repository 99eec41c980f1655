package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/platform/logger"
	"github.com/sproutlab/sprout-api/internal/store"
)

// JobStore implements store.JobStore against PostgreSQL. The result
// payload is stored as JSONB alongside the flat lifecycle columns.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewJobStore creates a JobStore over the given connection or
// transaction.
func NewJobStore(db store.DBTX, log *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &JobStore{db: db, logger: log.With("component", "job_store")}
}

var _ store.JobStore = (*JobStore)(nil)

// WithTx returns a JobStore bound to the given transaction.
func (s *JobStore) WithTx(tx *sql.Tx) *JobStore {
	return &JobStore{db: tx, logger: s.logger}
}

// CreateJob implements store.JobStore.
func (s *JobStore) CreateJob(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	if err := job.Validate(); err != nil {
		return err
	}

	result, err := encodeResult(job.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO jobs (id, kind, status, message, error, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := s.db.ExecContext(ctx, query,
		job.ID, job.Kind, job.Status, job.Message, job.Error, result,
		job.CreatedAt, job.UpdatedAt,
	); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: job %s already exists", store.ErrDuplicate, job.ID)
		}
		log.Error("failed to create job", "job_id", job.ID, "error", err)
		return MapError(err)
	}
	return nil
}

// UpdateJob implements store.JobStore. The whole record is replaced in
// one statement (last-writer-wins).
func (s *JobStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	if err := job.Validate(); err != nil {
		return err
	}

	result, err := encodeResult(job.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET kind = $2, status = $3, message = $4, error = $5, result = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		job.ID, job.Kind, job.Status, job.Message, job.Error, result, job.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update job", "job_id", job.ID, "error", err)
		return MapError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", store.ErrJobNotFound, job.ID)
	}
	return nil
}

// GetJob implements store.JobStore.
func (s *JobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, kind, status, message, error, result, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrJobNotFound, id)
		}
		return nil, MapError(err)
	}
	return job, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job    domain.Job
		result []byte
	)
	if err := row.Scan(
		&job.ID, &job.Kind, &job.Status, &job.Message, &job.Error, &result,
		&job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		job.Result = &domain.JobResult{}
		if err := json.Unmarshal(result, job.Result); err != nil {
			return nil, fmt.Errorf("%w: malformed result payload: %v", store.ErrInvalidRecord, err)
		}
	}
	return &job, nil
}

func encodeResult(result *domain.JobResult) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job result: %w", err)
	}
	return data, nil
}
