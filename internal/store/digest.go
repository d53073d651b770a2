package store

import (
	"context"
	"time"

	"github.com/feedscribe/feedscribe/internal/domain"
)

// DigestStore defines the interface for digest data persistence.
type DigestStore interface {
	// Create saves a new digest to the store.
	Create(ctx context.Context, digest *domain.Digest) error

	// GetByDay retrieves the digest covering the given UTC day.
	// Returns ErrDigestNotFound if no digest exists for that day.
	GetByDay(ctx context.Context, day time.Time) (*domain.Digest, error)

	// List retrieves digests, newest first.
	List(ctx context.Context, limit int) ([]*domain.Digest, error)
}
