package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/google/uuid"
)

// EntryStore defines the interface for entry data persistence.
type EntryStore interface {
	// Create saves a new entry to the store.
	// Returns ErrEntryGUIDExists if the feed already has an entry with the
	// same GUID.
	Create(ctx context.Context, entry *domain.Entry) error

	// GetByID retrieves an entry by its unique ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)

	// FindByFeed retrieves the entries of a feed, newest first.
	FindByFeed(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error)

	// ExistingGUIDs returns the set of GUIDs the feed already stores, so a
	// refresh can skip known items without loading whole entries.
	ExistingGUIDs(ctx context.Context, feedID uuid.UUID) (map[string]struct{}, error)

	// FindUntranslated retrieves entries of a feed that have no translation
	// yet, oldest first, so translation tasks work through a backlog in order.
	FindUntranslated(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error)

	// FindByDay retrieves all entries published within the given UTC day,
	// across feeds, for digest generation.
	FindByDay(ctx context.Context, day time.Time) ([]*domain.Entry, error)

	// Update saves changes to an existing entry.
	// Returns ErrEntryNotFound if the entry does not exist.
	Update(ctx context.Context, entry *domain.Entry) error

	// DeleteOlderThan removes entries created before the cutoff, returning
	// how many were removed. Feed refreshes use it to enforce per-feed caps.
	DeleteOlderThan(ctx context.Context, feedID uuid.UUID, cutoff time.Time) (int64, error)

	// WithTx returns a new EntryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EntryStore
}
