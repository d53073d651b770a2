package store

import (
	"context"
	"database/sql"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/google/uuid"
)

// FeedStore defines the interface for feed data persistence.
type FeedStore interface {
	// Create saves a new feed to the store.
	// It handles domain validation internally.
	// Returns ErrFeedURLExists if a feed with the same URL already exists.
	Create(ctx context.Context, feed *domain.Feed) error

	// GetByID retrieves a feed by its unique ID.
	// Returns ErrFeedNotFound if the feed does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error)

	// List retrieves all feeds ordered by creation time.
	List(ctx context.Context) ([]*domain.Feed, error)

	// Update saves changes to an existing feed.
	// Returns ErrFeedNotFound if the feed does not exist.
	// Returns validation errors if the feed data is invalid.
	Update(ctx context.Context, feed *domain.Feed) error

	// Delete removes a feed and, through the schema's cascade, its entries.
	// Returns ErrFeedNotFound if the feed does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new FeedStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) FeedStore
}
