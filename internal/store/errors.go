package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	// Callers must treat it as a distinct condition, never as pending.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique record (e.g. a second diary entry for the same date).
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidRecord is returned when a record fails validation before
	// being stored. Check the wrapped error for details.
	ErrInvalidRecord = errors.New("invalid record")

	// Entity-specific "not found" errors

	// ErrJobNotFound indicates that the requested job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)

	// ErrUnifiedJobNotFound indicates that the requested unified job does not exist.
	ErrUnifiedJobNotFound = fmt.Errorf("%w: unified job", ErrNotFound)

	// ErrDiaryNotFound indicates that no diary entry exists for the requested date.
	ErrDiaryNotFound = fmt.Errorf("%w: diary entry", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
