package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/fetch"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
	"github.com/feedscribe/feedscribe/internal/translation"
)

// RefreshTaskName returns the task name used for refreshing a single feed.
// Re-submitting the same feed while its refresh is live returns the existing
// task handle.
func RefreshTaskName(feedID uuid.UUID) string {
	return fmt.Sprintf("update_feed_%s", feedID)
}

// RefreshAllTaskName is the task name used for refreshing every feed.
const RefreshAllTaskName = "update_feeds_all"

// RefreshResult is the task result of a feed refresh.
type RefreshResult struct {
	FeedID     uuid.UUID `json:"feed_id"`
	Skipped    bool      `json:"skipped"`
	NewEntries int       `json:"new_entries"`
	Translated int       `json:"translated"`
	Tokens     int       `json:"tokens"`
}

// RefreshAllResult is the task result of a bulk refresh.
type RefreshAllResult struct {
	Feeds      int `json:"feeds"`
	Failed     int `json:"failed"`
	NewEntries int `json:"new_entries"`
	Translated int `json:"translated"`
	Tokens     int `json:"tokens"`
}

// FeedService provides feed management and refresh operations.
type FeedService interface {
	// CreateFeed registers a new feed for tracking.
	CreateFeed(ctx context.Context, feed *domain.Feed) error

	// GetFeed retrieves a feed by its ID.
	GetFeed(ctx context.Context, id uuid.UUID) (*domain.Feed, error)

	// ListFeeds returns all registered feeds.
	ListFeeds(ctx context.Context) ([]*domain.Feed, error)

	// UpdateFeed saves changes to an existing feed.
	UpdateFeed(ctx context.Context, feed *domain.Feed) error

	// DeleteFeed removes a feed and its entries.
	DeleteFeed(ctx context.Context, id uuid.UUID) error

	// ListEntries returns the most recent entries of a feed.
	ListEntries(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error)

	// RefreshFeed submits a background task that fetches and translates the
	// feed. The returned handle resolves to a *RefreshResult.
	RefreshFeed(ctx context.Context, feedID uuid.UUID) (*taskmanager.Handle, error)

	// RefreshAllFeeds submits a background task that refreshes every feed in
	// turn. The returned handle resolves to a *RefreshAllResult.
	RefreshAllFeeds(ctx context.Context) (*taskmanager.Handle, error)
}

// feedServiceImpl implements the FeedService interface.
type feedServiceImpl struct {
	feeds      store.FeedStore
	entries    store.EntryStore
	fetcher    *fetch.Fetcher
	translator translation.Translator
	tasks      *taskmanager.Manager
	txRunner   TxRunner
	logger     *slog.Logger
}

// NewFeedService creates a new FeedService.
// It returns an error if any of the required dependencies are nil.
func NewFeedService(
	feeds store.FeedStore,
	entries store.EntryStore,
	fetcher *fetch.Fetcher,
	translator translation.Translator,
	tasks *taskmanager.Manager,
	txRunner TxRunner,
	logger *slog.Logger,
) (FeedService, error) {
	if feeds == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "feeds store cannot be nil"}
	}
	if entries == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "entries store cannot be nil"}
	}
	if fetcher == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "fetcher cannot be nil"}
	}
	if translator == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "translator cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "task manager cannot be nil"}
	}
	if txRunner == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "txRunner cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &feedServiceImpl{
		feeds:      feeds,
		entries:    entries,
		fetcher:    fetcher,
		translator: translator,
		tasks:      tasks,
		txRunner:   txRunner,
		logger:     logger.With(slog.String("component", "feed_service")),
	}, nil
}

func (s *feedServiceImpl) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	if err := feed.Validate(); err != nil {
		return NewServiceError("create_feed", "invalid feed", err)
	}
	if err := s.feeds.Create(ctx, feed); err != nil {
		s.logger.Error("failed to create feed",
			slog.String("error", err.Error()),
			slog.String("feed_url", feed.URL))
		return NewServiceError("create_feed", "failed to save feed", err)
	}
	return nil
}

func (s *feedServiceImpl) GetFeed(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_feed", "failed to load feed", err)
	}
	return feed, nil
}

func (s *feedServiceImpl) ListFeeds(ctx context.Context) ([]*domain.Feed, error) {
	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return nil, NewServiceError("list_feeds", "failed to list feeds", err)
	}
	return feeds, nil
}

func (s *feedServiceImpl) UpdateFeed(ctx context.Context, feed *domain.Feed) error {
	if err := feed.Validate(); err != nil {
		return NewServiceError("update_feed", "invalid feed", err)
	}
	if err := s.feeds.Update(ctx, feed); err != nil {
		return NewServiceError("update_feed", "failed to save feed", err)
	}
	return nil
}

func (s *feedServiceImpl) DeleteFeed(ctx context.Context, id uuid.UUID) error {
	if err := s.feeds.Delete(ctx, id); err != nil {
		return NewServiceError("delete_feed", "failed to delete feed", err)
	}
	return nil
}

func (s *feedServiceImpl) ListEntries(
	ctx context.Context,
	feedID uuid.UUID,
	limit int,
) ([]*domain.Entry, error) {
	if _, err := s.feeds.GetByID(ctx, feedID); err != nil {
		return nil, NewServiceError("list_entries", "failed to load feed", err)
	}
	entries, err := s.entries.FindByFeed(ctx, feedID, limit)
	if err != nil {
		return nil, NewServiceError("list_entries", "failed to list entries", err)
	}
	return entries, nil
}

func (s *feedServiceImpl) RefreshFeed(ctx context.Context, feedID uuid.UUID) (*taskmanager.Handle, error) {
	// Fail fast on unknown feeds instead of inside the task.
	if _, err := s.feeds.GetByID(ctx, feedID); err != nil {
		return nil, NewServiceError("refresh_feed", "failed to load feed", err)
	}

	handle, err := s.tasks.Submit(RefreshTaskName(feedID), s.refreshFeedTask, feedID)
	if err != nil {
		return nil, NewServiceError("refresh_feed", "failed to submit refresh task", err)
	}
	return handle, nil
}

func (s *feedServiceImpl) RefreshAllFeeds(ctx context.Context) (*taskmanager.Handle, error) {
	handle, err := s.tasks.Submit(RefreshAllTaskName, s.refreshAllTask)
	if err != nil {
		return nil, NewServiceError("refresh_all_feeds", "failed to submit refresh task", err)
	}
	return handle, nil
}

// refreshFeedTask is the task function behind RefreshFeed.
func (s *feedServiceImpl) refreshFeedTask(ctx context.Context, args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("refresh task expects a feed ID argument, got %d args", len(args))
	}
	feedID, ok := args[0].(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("refresh task expects a uuid.UUID argument, got %T", args[0])
	}

	result, err := s.refreshOne(ctx, RefreshTaskName(feedID), feedID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// refreshAllTask is the task function behind RefreshAllFeeds. Feeds are
// refreshed sequentially; a failing feed is recorded and does not stop the
// rest.
func (s *feedServiceImpl) refreshAllTask(ctx context.Context, _ ...any) (any, error) {
	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	total := &RefreshAllResult{Feeds: len(feeds)}
	for i, feed := range feeds {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		result, err := s.refreshOne(ctx, RefreshAllTaskName, feed.ID)
		if err != nil {
			total.Failed++
			s.logger.Error("feed refresh failed during bulk update",
				slog.String("feed_id", feed.ID.String()),
				slog.String("error", err.Error()))
		} else {
			total.NewEntries += result.NewEntries
			total.Translated += result.Translated
			total.Tokens += result.Tokens
		}

		s.tasks.UpdateProgress(RefreshAllTaskName, (i+1)*100/len(feeds))
	}

	return total, nil
}

// refreshOne fetches a single feed, stores new entries, and translates
// anything untranslated. Progress is reported against taskName.
func (s *feedServiceImpl) refreshOne(
	ctx context.Context,
	taskName string,
	feedID uuid.UUID,
) (result *RefreshResult, err error) {
	feed, err := s.feeds.GetByID(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed %s: %w", feedID, err)
	}

	// Record the outcome on the feed even when the refresh fails partway.
	defer func() {
		now := time.Now().UTC()
		if err != nil {
			feed.MarkFetched(false, now)
			feed.Log = fmt.Sprintf("%s refresh failed: %v", now.Format(time.RFC3339), err)
		} else {
			feed.MarkFetched(true, now)
		}
		if updateErr := s.feeds.Update(context.WithoutCancel(ctx), feed); updateErr != nil {
			s.logger.Error("failed to record refresh outcome",
				slog.String("feed_id", feedID.String()),
				slog.String("error", updateErr.Error()))
		}
	}()

	s.tasks.UpdateProgress(taskName, 10)

	// Only send the stored ETag once the feed has filled its entry window;
	// before that a 304 would leave us with fewer entries than requested.
	etag := ""
	existing, err := s.entries.FindByFeed(ctx, feedID, feed.MaxPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to count existing entries: %w", err)
	}
	if len(existing) >= feed.MaxPosts {
		etag = feed.ETag
	}

	fetched, err := s.fetcher.Fetch(ctx, feed.URL, etag)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	s.tasks.UpdateProgress(taskName, 25)

	if fetched.NotModified {
		now := time.Now().UTC()
		feed.Log = fmt.Sprintf("%s feed is up to date, skipped", now.Format(time.RFC3339))
		s.tasks.UpdateProgress(taskName, 100)
		return &RefreshResult{FeedID: feedID, Skipped: true}, nil
	}

	s.applyFeedMeta(feed, fetched)

	created, err := s.storeNewEntries(ctx, feed, fetched)
	if err != nil {
		return nil, err
	}
	s.tasks.UpdateProgress(taskName, 50)

	translated, tokens, err := s.translateEntries(ctx, feed)
	if err != nil {
		return nil, err
	}
	s.tasks.UpdateProgress(taskName, 75)

	now := time.Now().UTC()
	feed.Log = fmt.Sprintf("%s refresh completed: %d new, %d translated",
		now.Format(time.RFC3339), created, translated)
	s.tasks.UpdateProgress(taskName, 100)

	return &RefreshResult{
		FeedID:     feedID,
		NewEntries: created,
		Translated: translated,
		Tokens:     tokens,
	}, nil
}

// applyFeedMeta copies feed-level metadata from a fetch onto the stored feed.
// A manually renamed feed keeps its name.
func (s *feedServiceImpl) applyFeedMeta(feed *domain.Feed, fetched *fetch.Result) {
	if feed.Name == "" || feed.Name == feed.URL {
		feed.Name = fetched.Feed.Title
	}
	feed.Subtitle = fetched.Feed.Description
	feed.Language = fetched.Feed.Language
	feed.Author = fetch.FeedAuthor(fetched.Feed)
	if fetched.Feed.Link != "" {
		feed.Link = fetched.Feed.Link
	} else {
		feed.Link = feed.URL
	}
	feed.ETag = fetched.ETag
}

// storeNewEntries inserts entries from the fetch that are not yet stored,
// newest first, bounded by the feed's MaxPosts window. The batch is inserted
// in one transaction.
func (s *feedServiceImpl) storeNewEntries(
	ctx context.Context,
	feed *domain.Feed,
	fetched *fetch.Result,
) (int, error) {
	items := fetched.Feed.Items
	fetch.SortItemsNewestFirst(items)
	if len(items) > feed.MaxPosts {
		items = items[:feed.MaxPosts]
	}

	existing, err := s.entries.ExistingGUIDs(ctx, feed.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load existing entry GUIDs: %w", err)
	}

	var toCreate []*domain.Entry
	for _, item := range items {
		guid := fetch.ItemGUID(item)
		if guid == "" {
			continue
		}
		if _, ok := existing[guid]; ok {
			continue
		}

		title := item.Title
		if title == "" {
			title = "No title"
		}

		entry, err := domain.NewEntry(feed.ID, guid, title)
		if err != nil {
			s.logger.Warn("skipping invalid feed item",
				slog.String("feed_id", feed.ID.String()),
				slog.String("guid", guid),
				slog.String("error", err.Error()))
			continue
		}
		entry.Link = item.Link
		entry.Author = fetch.ItemAuthor(item, feed.Author)
		entry.PubDate = item.PublishedParsed
		entry.Updated = item.UpdatedParsed
		entry.OriginalContent = fetch.ItemContent(item)
		entry.OriginalSummary = item.Description

		toCreate = append(toCreate, entry)
	}

	if len(toCreate) == 0 {
		return 0, nil
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txEntries := s.entries.WithTx(tx)
		for _, entry := range toCreate {
			if err := txEntries.Create(ctx, entry); err != nil {
				// Another refresh may have stored the entry in between.
				if errors.Is(err, store.ErrEntryGUIDExists) {
					continue
				}
				return fmt.Errorf("failed to store entry %s: %w", entry.GUID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(toCreate), nil
}

// translateEntries translates and summarizes stored entries that still lack
// translated fields, honoring the feed's translation switches.
func (s *feedServiceImpl) translateEntries(
	ctx context.Context,
	feed *domain.Feed,
) (int, int, error) {
	if !feed.TranslateTitle && !feed.TranslateContent && !feed.Summarize {
		return 0, 0, nil
	}

	pending, err := s.entries.FindUntranslated(ctx, feed.ID, feed.MaxPosts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to find untranslated entries: %w", err)
	}

	translated := 0
	tokens := 0
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			return translated, tokens, err
		}

		changed := false

		if feed.TranslateTitle && entry.TranslatedTitle == "" && entry.OriginalTitle != "" {
			result, err := s.translator.Translate(
				ctx, entry.OriginalTitle, feed.TargetLanguage, translation.KindTitle)
			if err != nil {
				return translated, tokens, fmt.Errorf(
					"failed to translate title of %s: %w", entry.GUID, err)
			}
			entry.TranslatedTitle = result.Text
			tokens += result.Tokens
			changed = true
		}

		if feed.TranslateContent && entry.TranslatedContent == "" && entry.OriginalContent != "" {
			result, err := s.translator.Translate(
				ctx, entry.OriginalContent, feed.TargetLanguage, translation.KindContent)
			if err != nil {
				return translated, tokens, fmt.Errorf(
					"failed to translate content of %s: %w", entry.GUID, err)
			}
			entry.TranslatedContent = result.Text
			tokens += result.Tokens
			changed = true
		}

		if feed.Summarize && entry.GeneratedSummary == "" && entry.OriginalContent != "" {
			result, err := s.translator.Summarize(ctx, entry.OriginalContent, feed.TargetLanguage)
			if err != nil {
				return translated, tokens, fmt.Errorf(
					"failed to summarize %s: %w", entry.GUID, err)
			}
			entry.GeneratedSummary = result.Text
			tokens += result.Tokens
			changed = true
		}

		if changed {
			if err := s.entries.Update(ctx, entry); err != nil {
				return translated, tokens, fmt.Errorf(
					"failed to save translated entry %s: %w", entry.GUID, err)
			}
			translated++
		}
	}

	return translated, tokens, nil
}
