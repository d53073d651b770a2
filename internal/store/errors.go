package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrFeedNotFound, ErrEntryNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a feed with the same URL).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrFeedNotFound indicates that the requested feed does not exist in the store.
	ErrFeedNotFound = fmt.Errorf("%w: feed", ErrNotFound)

	// ErrEntryNotFound indicates that the requested entry does not exist in the store.
	ErrEntryNotFound = fmt.Errorf("%w: entry", ErrNotFound)

	// ErrDigestNotFound indicates that the requested digest does not exist in the store.
	ErrDigestNotFound = fmt.Errorf("%w: digest", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrFeedURLExists indicates that a feed with the given URL already exists.
	ErrFeedURLExists = fmt.Errorf("%w: feed URL", ErrDuplicate)

	// ErrEntryGUIDExists indicates that an entry with the given GUID already
	// exists for the feed.
	ErrEntryGUIDExists = fmt.Errorf("%w: entry GUID", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
