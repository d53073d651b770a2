package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/platform/logger"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/google/uuid"
)

// PostgresFeedStore implements the store.FeedStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFeedStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFeedStore creates a new PostgreSQL implementation of the
// FeedStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresFeedStore(db store.DBTX, logger *slog.Logger) *PostgresFeedStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFeedStore{
		db:     db,
		logger: logger.With(slog.String("component", "feed_store")),
	}
}

// Ensure PostgresFeedStore implements store.FeedStore interface
var _ store.FeedStore = (*PostgresFeedStore)(nil)

const feedColumns = `id, feed_url, name, subtitle, link, author, language,
	etag, max_posts, fetch_status, last_fetch, log,
	translate_title, translate_content, summarize, summary_detail,
	target_language, created_at, updated_at`

// Create implements store.FeedStore.Create
func (s *PostgresFeedStore) Create(ctx context.Context, feed *domain.Feed) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := feed.Validate(); err != nil {
		log.Warn("feed validation failed during create",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return err
	}

	query := `
		INSERT INTO feeds (` + feedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		feed.ID,
		feed.URL,
		feed.Name,
		feed.Subtitle,
		feed.Link,
		feed.Author,
		feed.Language,
		feed.ETag,
		feed.MaxPosts,
		feed.FetchStatus,
		feed.LastFetch,
		feed.Log,
		feed.TranslateTitle,
		feed.TranslateContent,
		feed.Summarize,
		feed.SummaryDetail,
		feed.TargetLanguage,
		feed.CreatedAt,
		feed.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate feed URL",
				slog.String("feed_url", feed.URL))
			return fmt.Errorf("%w: %s", store.ErrFeedURLExists, feed.URL)
		}
		return MapError(err)
	}

	log.Debug("feed created", slog.String("feed_id", feed.ID.String()))
	return nil
}

// GetByID implements store.FeedStore.GetByID
func (s *PostgresFeedStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds WHERE id = $1`

	feed, err := scanFeed(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, fmt.Errorf("%w: %s", store.ErrFeedNotFound, id)
		}
		return nil, MapError(err)
	}
	return feed, nil
}

// List implements store.FeedStore.List
func (s *PostgresFeedStore) List(ctx context.Context) ([]*domain.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*domain.Feed, 0)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, MapError(err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, MapError(rows.Err())
}

// Update implements store.FeedStore.Update
func (s *PostgresFeedStore) Update(ctx context.Context, feed *domain.Feed) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := feed.Validate(); err != nil {
		log.Warn("feed validation failed during update",
			slog.String("error", err.Error()),
			slog.String("feed_id", feed.ID.String()))
		return err
	}

	query := `
		UPDATE feeds
		SET feed_url = $2, name = $3, subtitle = $4, link = $5, author = $6,
			language = $7, etag = $8, max_posts = $9, fetch_status = $10,
			last_fetch = $11, log = $12, translate_title = $13,
			translate_content = $14, summarize = $15, summary_detail = $16,
			target_language = $17, updated_at = $18
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		feed.ID,
		feed.URL,
		feed.Name,
		feed.Subtitle,
		feed.Link,
		feed.Author,
		feed.Language,
		feed.ETag,
		feed.MaxPosts,
		feed.FetchStatus,
		feed.LastFetch,
		feed.Log,
		feed.TranslateTitle,
		feed.TranslateContent,
		feed.Summarize,
		feed.SummaryDetail,
		feed.TargetLanguage,
		feed.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrFeedNotFound, feed.ID)
	}
	return nil
}

// Delete implements store.FeedStore.Delete
func (s *PostgresFeedStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrFeedNotFound, id)
	}

	s.logger.Debug("feed deleted", slog.String("feed_id", id.String()))
	return nil
}

// WithTx implements store.FeedStore.WithTx
func (s *PostgresFeedStore) WithTx(tx *sql.Tx) store.FeedStore {
	return &PostgresFeedStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*domain.Feed, error) {
	var feed domain.Feed
	err := row.Scan(
		&feed.ID,
		&feed.URL,
		&feed.Name,
		&feed.Subtitle,
		&feed.Link,
		&feed.Author,
		&feed.Language,
		&feed.ETag,
		&feed.MaxPosts,
		&feed.FetchStatus,
		&feed.LastFetch,
		&feed.Log,
		&feed.TranslateTitle,
		&feed.TranslateContent,
		&feed.Summarize,
		&feed.SummaryDetail,
		&feed.TargetLanguage,
		&feed.CreatedAt,
		&feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}
