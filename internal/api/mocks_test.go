package api

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/service"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestTaskManager creates a small manager torn down with the test.
func newTestTaskManager(t *testing.T) *taskmanager.Manager {
	t.Helper()

	manager, err := taskmanager.New(taskmanager.Config{
		MaxWorkers:       2,
		MaxTaskHistory:   100,
		RestartThreshold: 50,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { manager.Shutdown(true) })
	return manager
}

// submitTestTask runs a named task to completion on the given manager so the
// handler under test has a real handle to report.
func submitTestTask(t *testing.T, manager *taskmanager.Manager, name string) *taskmanager.Handle {
	t.Helper()

	handle, err := manager.Submit(name, func(ctx context.Context, args ...any) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	_, err = handle.Wait(context.Background())
	require.NoError(t, err)
	return handle
}

// fakeFeedService implements service.FeedService with configurable behavior.
type fakeFeedService struct {
	createFn     func(ctx context.Context, feed *domain.Feed) error
	getFn        func(ctx context.Context, id uuid.UUID) (*domain.Feed, error)
	listFn       func(ctx context.Context) ([]*domain.Feed, error)
	updateFn     func(ctx context.Context, feed *domain.Feed) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	entriesFn    func(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error)
	refreshFn    func(ctx context.Context, feedID uuid.UUID) (*taskmanager.Handle, error)
	refreshAllFn func(ctx context.Context) (*taskmanager.Handle, error)
}

var _ service.FeedService = (*fakeFeedService)(nil)

func (f *fakeFeedService) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	return f.createFn(ctx, feed)
}

func (f *fakeFeedService) GetFeed(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
	return f.getFn(ctx, id)
}

func (f *fakeFeedService) ListFeeds(ctx context.Context) ([]*domain.Feed, error) {
	return f.listFn(ctx)
}

func (f *fakeFeedService) UpdateFeed(ctx context.Context, feed *domain.Feed) error {
	return f.updateFn(ctx, feed)
}

func (f *fakeFeedService) DeleteFeed(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeFeedService) ListEntries(
	ctx context.Context,
	feedID uuid.UUID,
	limit int,
) ([]*domain.Entry, error) {
	return f.entriesFn(ctx, feedID, limit)
}

func (f *fakeFeedService) RefreshFeed(
	ctx context.Context,
	feedID uuid.UUID,
) (*taskmanager.Handle, error) {
	return f.refreshFn(ctx, feedID)
}

func (f *fakeFeedService) RefreshAllFeeds(ctx context.Context) (*taskmanager.Handle, error) {
	return f.refreshAllFn(ctx)
}

// fakeDigestService implements service.DigestService with configurable behavior.
type fakeDigestService struct {
	generateFn func(ctx context.Context, day time.Time) (*taskmanager.Handle, error)
	getFn      func(ctx context.Context, day time.Time) (*domain.Digest, error)
	listFn     func(ctx context.Context, limit int) ([]*domain.Digest, error)
}

var _ service.DigestService = (*fakeDigestService)(nil)

func (f *fakeDigestService) GenerateDigest(ctx context.Context, day time.Time) (*taskmanager.Handle, error) {
	return f.generateFn(ctx, day)
}

func (f *fakeDigestService) GetDigest(ctx context.Context, day time.Time) (*domain.Digest, error) {
	return f.getFn(ctx, day)
}

func (f *fakeDigestService) ListDigests(ctx context.Context, limit int) ([]*domain.Digest, error) {
	return f.listFn(ctx, limit)
}

// fakeTranslatorService implements service.TranslatorService.
type fakeTranslatorService struct {
	validateFn func(ctx context.Context) (*taskmanager.Handle, error)
}

var _ service.TranslatorService = (*fakeTranslatorService)(nil)

func (f *fakeTranslatorService) ValidateProvider(ctx context.Context) (*taskmanager.Handle, error) {
	return f.validateFn(ctx)
}
