package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for DiaryEntry
var (
	ErrEmptyDiaryID      = errors.New("diary entry ID cannot be empty")
	ErrEmptyDiaryDate    = errors.New("diary entry date cannot be empty")
	ErrInvalidDiaryDate  = errors.New("diary entry date must be YYYY-MM-DD")
	ErrEmptyDiaryContent = errors.New("diary entry content cannot be empty")
)

// DiaryEntry is the persisted output of one diary generation, addressed
// by its date (one entry per day).
type DiaryEntry struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	ImageRef  string    `json:"image_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDiaryEntry creates a diary entry for the given date.
func NewDiaryEntry(date, subject, content, imageRef string) (*DiaryEntry, error) {
	entry := &DiaryEntry{
		ID:        uuid.New(),
		Date:      date,
		Subject:   subject,
		Content:   content,
		ImageRef:  imageRef,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the DiaryEntry has valid data.
func (d *DiaryEntry) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDiaryID
	}
	if d.Date == "" {
		return ErrEmptyDiaryDate
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return ErrInvalidDiaryDate
	}
	if d.Content == "" {
		return ErrEmptyDiaryContent
	}
	return nil
}
