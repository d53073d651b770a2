package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
	"github.com/feedscribe/feedscribe/internal/translation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestTaskManager(t *testing.T) *taskmanager.Manager {
	t.Helper()
	m, err := taskmanager.New(taskmanager.DefaultConfig(), testLogger())
	if err != nil {
		t.Fatalf("failed to create task manager: %v", err)
	}
	t.Cleanup(func() { m.Shutdown(true) })
	return m
}

// fakeTxRunner runs the function directly without a real transaction.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeFeedStore is an in-memory store.FeedStore.
type fakeFeedStore struct {
	mu    sync.Mutex
	feeds map[uuid.UUID]*domain.Feed
}

func newFakeFeedStore() *fakeFeedStore {
	return &fakeFeedStore{feeds: make(map[uuid.UUID]*domain.Feed)}
}

func (s *fakeFeedStore) Create(ctx context.Context, feed *domain.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.feeds {
		if f.URL == feed.URL {
			return store.ErrFeedURLExists
		}
	}
	copied := *feed
	s.feeds[feed.ID] = &copied
	return nil
}

func (s *fakeFeedStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[id]
	if !ok {
		return nil, store.ErrFeedNotFound
	}
	copied := *feed
	return &copied, nil
}

func (s *fakeFeedStore) List(ctx context.Context) ([]*domain.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feeds := make([]*domain.Feed, 0, len(s.feeds))
	for _, f := range s.feeds {
		copied := *f
		feeds = append(feeds, &copied)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].URL < feeds[j].URL })
	return feeds, nil
}

func (s *fakeFeedStore) Update(ctx context.Context, feed *domain.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feeds[feed.ID]; !ok {
		return store.ErrFeedNotFound
	}
	copied := *feed
	s.feeds[feed.ID] = &copied
	return nil
}

func (s *fakeFeedStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feeds[id]; !ok {
		return store.ErrFeedNotFound
	}
	delete(s.feeds, id)
	return nil
}

func (s *fakeFeedStore) WithTx(tx *sql.Tx) store.FeedStore { return s }

// fakeEntryStore is an in-memory store.EntryStore.
type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.Entry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[uuid.UUID]*domain.Entry)}
}

func (s *fakeEntryStore) Create(ctx context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.FeedID == entry.FeedID && e.GUID == entry.GUID {
			return store.ErrEntryGUIDExists
		}
	}
	copied := *entry
	s.entries[entry.ID] = &copied
	return nil
}

func (s *fakeEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, store.ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (s *fakeEntryStore) byFeed(feedID uuid.UUID) []*domain.Entry {
	var entries []*domain.Entry
	for _, e := range s.entries {
		if e.FeedID == feedID {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := time.Unix(0, 0), time.Unix(0, 0)
		if entries[i].PubDate != nil {
			ti = *entries[i].PubDate
		}
		if entries[j].PubDate != nil {
			tj = *entries[j].PubDate
		}
		return ti.After(tj)
	})
	return entries
}

func (s *fakeEntryStore) FindByFeed(
	ctx context.Context,
	feedID uuid.UUID,
	limit int,
) ([]*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.byFeed(feedID)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *fakeEntryStore) ExistingGUIDs(
	ctx context.Context,
	feedID uuid.UUID,
) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	guids := make(map[string]struct{})
	for _, e := range s.entries {
		if e.FeedID == feedID {
			guids[e.GUID] = struct{}{}
		}
	}
	return guids, nil
}

func (s *fakeEntryStore) FindUntranslated(
	ctx context.Context,
	feedID uuid.UUID,
	limit int,
) ([]*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []*domain.Entry
	for _, e := range s.byFeed(feedID) {
		if e.TranslatedTitle == "" && e.TranslatedContent == "" && e.GeneratedSummary == "" {
			pending = append(pending, e)
		}
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *fakeEntryStore) FindByDay(ctx context.Context, day time.Time) ([]*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := day.UTC().Truncate(24 * time.Hour)
	var entries []*domain.Entry
	for _, e := range s.entries {
		if e.PubDate == nil {
			continue
		}
		if e.PubDate.UTC().Truncate(24 * time.Hour).Equal(target) {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].GUID < entries[j].GUID })
	return entries, nil
}

func (s *fakeEntryStore) Update(ctx context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return store.ErrEntryNotFound
	}
	copied := *entry
	s.entries[entry.ID] = &copied
	return nil
}

func (s *fakeEntryStore) DeleteOlderThan(
	ctx context.Context,
	feedID uuid.UUID,
	cutoff time.Time,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, e := range s.entries {
		if e.FeedID == feedID && e.PubDate != nil && e.PubDate.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *fakeEntryStore) WithTx(tx *sql.Tx) store.EntryStore { return s }

// fakeDigestStore is an in-memory store.DigestStore.
type fakeDigestStore struct {
	mu      sync.Mutex
	digests map[string]*domain.Digest
}

func newFakeDigestStore() *fakeDigestStore {
	return &fakeDigestStore{digests: make(map[string]*domain.Digest)}
}

func digestKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

func (s *fakeDigestStore) Create(ctx context.Context, digest *domain.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := digestKey(digest.Day)
	if _, ok := s.digests[key]; ok {
		return store.ErrDuplicate
	}
	copied := *digest
	s.digests[key] = &copied
	return nil
}

func (s *fakeDigestStore) GetByDay(ctx context.Context, day time.Time) (*domain.Digest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	digest, ok := s.digests[digestKey(day)]
	if !ok {
		return nil, store.ErrDigestNotFound
	}
	copied := *digest
	return &copied, nil
}

func (s *fakeDigestStore) List(ctx context.Context, limit int) ([]*domain.Digest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	digests := make([]*domain.Digest, 0, len(s.digests))
	for _, d := range s.digests {
		copied := *d
		digests = append(digests, &copied)
	}
	sort.Slice(digests, func(i, j int) bool { return digests[i].Day.After(digests[j].Day) })
	if limit > 0 && len(digests) > limit {
		digests = digests[:limit]
	}
	return digests, nil
}

// fakeTranslator marks text instead of translating it. A non-nil validateErr
// makes Validate fail.
type fakeTranslator struct {
	mu          sync.Mutex
	validateErr error
	calls       int
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Translate(
	ctx context.Context,
	text, targetLanguage string,
	kind translation.TextKind,
) (*translation.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &translation.Result{Text: "T:" + text, Tokens: 1}, nil
}

func (f *fakeTranslator) Summarize(
	ctx context.Context,
	text, targetLanguage string,
) (*translation.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &translation.Result{Text: "S:" + text, Tokens: 1}, nil
}

func (f *fakeTranslator) Validate(ctx context.Context) error {
	return f.validateErr
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
