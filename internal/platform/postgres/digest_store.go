package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/store"
)

// PostgresDigestStore implements the store.DigestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDigestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDigestStore creates a new PostgreSQL implementation of the
// DigestStore interface. If logger is nil, a default logger will be used.
func NewPostgresDigestStore(db store.DBTX, logger *slog.Logger) *PostgresDigestStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDigestStore{
		db:     db,
		logger: logger.With(slog.String("component", "digest_store")),
	}
}

// Ensure PostgresDigestStore implements store.DigestStore interface
var _ store.DigestStore = (*PostgresDigestStore)(nil)

// Create implements store.DigestStore.Create
func (s *PostgresDigestStore) Create(ctx context.Context, digest *domain.Digest) error {
	if err := digest.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO digests (id, title, content, entry_count, day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		digest.ID,
		digest.Title,
		digest.Content,
		digest.EntryCount,
		digest.Day,
		digest.CreatedAt,
	)
	return MapError(err)
}

// GetByDay implements store.DigestStore.GetByDay
func (s *PostgresDigestStore) GetByDay(ctx context.Context, day time.Time) (*domain.Digest, error) {
	query := `
		SELECT id, title, content, entry_count, day, created_at
		FROM digests
		WHERE day = $1
	`

	var digest domain.Digest
	err := s.db.QueryRowContext(ctx, query, day.UTC().Truncate(24*time.Hour)).Scan(
		&digest.ID,
		&digest.Title,
		&digest.Content,
		&digest.EntryCount,
		&digest.Day,
		&digest.CreatedAt,
	)
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, fmt.Errorf("%w: %s", store.ErrDigestNotFound, day.Format("2006-01-02"))
		}
		return nil, MapError(err)
	}
	return &digest, nil
}

// List implements store.DigestStore.List
func (s *PostgresDigestStore) List(ctx context.Context, limit int) ([]*domain.Digest, error) {
	query := `
		SELECT id, title, content, entry_count, day, created_at
		FROM digests
		ORDER BY day DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	digests := make([]*domain.Digest, 0)
	for rows.Next() {
		var digest domain.Digest
		if err := rows.Scan(
			&digest.ID,
			&digest.Title,
			&digest.Content,
			&digest.EntryCount,
			&digest.Day,
			&digest.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		digests = append(digests, &digest)
	}
	return digests, MapError(rows.Err())
}
