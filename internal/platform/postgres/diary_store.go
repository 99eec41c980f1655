package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/platform/logger"
	"github.com/sproutlab/sprout-api/internal/store"
)

// DiaryStore implements store.DiaryStore against PostgreSQL. Entries are
// addressed by date; saving the same date again replaces the entry.
type DiaryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDiaryStore creates a DiaryStore over the given connection or
// transaction.
func NewDiaryStore(db store.DBTX, log *slog.Logger) *DiaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &DiaryStore{db: db, logger: log.With("component", "diary_store")}
}

var _ store.DiaryStore = (*DiaryStore)(nil)

// SaveEntry implements store.DiaryStore as an upsert on the date key.
func (s *DiaryStore) SaveEntry(ctx context.Context, entry *domain.DiaryEntry) error {
	log := logger.FromContext(ctx)

	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO diary_entries (id, date, subject, content, image_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE
		SET subject = EXCLUDED.subject,
		    content = EXCLUDED.content,
		    image_ref = EXCLUDED.image_ref,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.Date, entry.Subject, entry.Content, entry.ImageRef,
		entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		log.Error("failed to save diary entry", "date", entry.Date, "error", err)
		return MapError(err)
	}
	return nil
}

// GetEntryByDate implements store.DiaryStore.
func (s *DiaryStore) GetEntryByDate(ctx context.Context, date string) (*domain.DiaryEntry, error) {
	query := `
		SELECT id, date, subject, content, image_ref, created_at, updated_at
		FROM diary_entries
		WHERE date = $1
	`
	var entry domain.DiaryEntry
	err := s.db.QueryRowContext(ctx, query, date).Scan(
		&entry.ID, &entry.Date, &entry.Subject, &entry.Content, &entry.ImageRef,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrDiaryNotFound, date)
		}
		return nil, MapError(err)
	}
	return &entry, nil
}
