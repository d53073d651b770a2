package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/platform/logger"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/google/uuid"
)

// PostgresEntryStore implements the store.EntryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEntryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEntryStore creates a new PostgreSQL implementation of the
// EntryStore interface. If logger is nil, a default logger will be used.
func NewPostgresEntryStore(db store.DBTX, logger *slog.Logger) *PostgresEntryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEntryStore{
		db:     db,
		logger: logger.With(slog.String("component", "entry_store")),
	}
}

// Ensure PostgresEntryStore implements store.EntryStore interface
var _ store.EntryStore = (*PostgresEntryStore)(nil)

const entryColumns = `id, feed_id, guid, link, author, pubdate, updated,
	original_title, original_content, original_summary,
	translated_title, translated_content, generated_summary,
	created_at, updated_at`

// Create implements store.EntryStore.Create
func (s *PostgresEntryStore) Create(ctx context.Context, entry *domain.Entry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("entry validation failed during create",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.FeedID,
		entry.GUID,
		entry.Link,
		entry.Author,
		entry.PubDate,
		entry.Updated,
		entry.OriginalTitle,
		entry.OriginalContent,
		entry.OriginalSummary,
		entry.TranslatedTitle,
		entry.TranslatedContent,
		entry.GeneratedSummary,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrEntryGUIDExists, entry.GUID)
		}
		return MapError(err)
	}
	return nil
}

// GetByID implements store.EntryStore.GetByID
func (s *PostgresEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, fmt.Errorf("%w: %s", store.ErrEntryNotFound, id)
		}
		return nil, MapError(err)
	}
	return entry, nil
}

// FindByFeed implements store.EntryStore.FindByFeed
func (s *PostgresEntryStore) FindByFeed(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE feed_id = $1
		ORDER BY pubdate DESC NULLS LAST, created_at DESC
		LIMIT $2
	`
	return s.queryEntries(ctx, query, feedID, limit)
}

// ExistingGUIDs implements store.EntryStore.ExistingGUIDs
func (s *PostgresEntryStore) ExistingGUIDs(ctx context.Context, feedID uuid.UUID) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT guid FROM entries WHERE feed_id = $1`, feedID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	guids := make(map[string]struct{})
	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return nil, MapError(err)
		}
		guids[guid] = struct{}{}
	}
	return guids, MapError(rows.Err())
}

// FindUntranslated implements store.EntryStore.FindUntranslated
func (s *PostgresEntryStore) FindUntranslated(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE feed_id = $1 AND translated_title = '' AND translated_content = ''
		ORDER BY pubdate ASC NULLS LAST, created_at ASC
		LIMIT $2
	`
	return s.queryEntries(ctx, query, feedID, limit)
}

// FindByDay implements store.EntryStore.FindByDay
func (s *PostgresEntryStore) FindByDay(ctx context.Context, day time.Time) ([]*domain.Entry, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE pubdate >= $1 AND pubdate < $2
		ORDER BY pubdate ASC
	`
	return s.queryEntries(ctx, query, start, end)
}

// Update implements store.EntryStore.Update
func (s *PostgresEntryStore) Update(ctx context.Context, entry *domain.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE entries
		SET link = $2, author = $3, pubdate = $4, updated = $5,
			original_title = $6, original_content = $7, original_summary = $8,
			translated_title = $9, translated_content = $10,
			generated_summary = $11, updated_at = $12
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Link,
		entry.Author,
		entry.PubDate,
		entry.Updated,
		entry.OriginalTitle,
		entry.OriginalContent,
		entry.OriginalSummary,
		entry.TranslatedTitle,
		entry.TranslatedContent,
		entry.GeneratedSummary,
		entry.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrEntryNotFound, entry.ID)
	}
	return nil
}

// DeleteOlderThan implements store.EntryStore.DeleteOlderThan
func (s *PostgresEntryStore) DeleteOlderThan(ctx context.Context, feedID uuid.UUID, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM entries WHERE feed_id = $1 AND created_at < $2`,
		feedID,
		cutoff,
	)
	if err != nil {
		return 0, MapError(err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	if removed > 0 {
		s.logger.Debug("pruned old entries",
			slog.String("feed_id", feedID.String()),
			slog.Int64("removed", removed))
	}
	return removed, nil
}

// WithTx implements store.EntryStore.WithTx
func (s *PostgresEntryStore) WithTx(tx *sql.Tx) store.EntryStore {
	return &PostgresEntryStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresEntryStore) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, entry)
	}
	return entries, MapError(rows.Err())
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	err := row.Scan(
		&entry.ID,
		&entry.FeedID,
		&entry.GUID,
		&entry.Link,
		&entry.Author,
		&entry.PubDate,
		&entry.Updated,
		&entry.OriginalTitle,
		&entry.OriginalContent,
		&entry.OriginalSummary,
		&entry.TranslatedTitle,
		&entry.TranslatedContent,
		&entry.GeneratedSummary,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
