package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/service"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

// newFeedRouter mounts the handler on a router so path parameters resolve.
func newFeedRouter(svc service.FeedService) http.Handler {
	h := NewFeedHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Post("/feeds", h.Create)
	r.Get("/feeds", h.List)
	r.Post("/feeds/refresh", h.RefreshAll)
	r.Get("/feeds/{id}", h.Get)
	r.Put("/feeds/{id}", h.Update)
	r.Delete("/feeds/{id}", h.Delete)
	r.Get("/feeds/{id}/entries", h.Entries)
	r.Post("/feeds/{id}/refresh", h.Refresh)
	return r
}

func testFeed(t *testing.T) *domain.Feed {
	t.Helper()

	feed, err := domain.NewFeed("https://example.com/rss.xml", "Spanish")
	require.NoError(t, err)
	return feed
}

func TestFeedHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates feed with defaults", func(t *testing.T) {
		t.Parallel()

		var created *domain.Feed
		router := newFeedRouter(&fakeFeedService{
			createFn: func(ctx context.Context, feed *domain.Feed) error {
				created = feed
				return nil
			},
		})

		body, _ := json.Marshal(CreateFeedRequest{FeedURL: "https://example.com/rss.xml"})
		req := httptest.NewRequest(http.MethodPost, "/feeds", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, created)
		assert.Equal(t, "https://example.com/rss.xml", created.URL)
		assert.Equal(t, "English", created.TargetLanguage)
		assert.Equal(t, domain.DefaultMaxPosts, created.MaxPosts)
	})

	t.Run("rejects invalid url", func(t *testing.T) {
		t.Parallel()

		router := newFeedRouter(&fakeFeedService{})

		body, _ := json.Marshal(CreateFeedRequest{FeedURL: "not-a-url"})
		req := httptest.NewRequest(http.MethodPost, "/feeds", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate url conflicts", func(t *testing.T) {
		t.Parallel()

		router := newFeedRouter(&fakeFeedService{
			createFn: func(ctx context.Context, feed *domain.Feed) error {
				return service.ErrFeedURLExists
			},
		})

		body, _ := json.Marshal(CreateFeedRequest{FeedURL: "https://example.com/rss.xml"})
		req := httptest.NewRequest(http.MethodPost, "/feeds", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestFeedHandler_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns feed", func(t *testing.T) {
		t.Parallel()

		feed := testFeed(t)
		router := newFeedRouter(&fakeFeedService{
			getFn: func(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
				assert.Equal(t, feed.ID, id)
				return feed, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/feeds/"+feed.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Feed
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, feed.ID, got.ID)
		assert.Equal(t, feed.URL, got.URL)
	})

	t.Run("unknown feed is 404", func(t *testing.T) {
		t.Parallel()

		router := newFeedRouter(&fakeFeedService{
			getFn: func(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
				return nil, service.ErrFeedNotFound
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/feeds/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		t.Parallel()

		router := newFeedRouter(&fakeFeedService{})

		req := httptest.NewRequest(http.MethodGet, "/feeds/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFeedHandler_Update(t *testing.T) {
	t.Parallel()

	feed := testFeed(t)
	feed.Name = "Original"

	var updated *domain.Feed
	router := newFeedRouter(&fakeFeedService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Feed, error) {
			copied := *feed
			return &copied, nil
		},
		updateFn: func(ctx context.Context, f *domain.Feed) error {
			updated = f
			return nil
		},
	})

	name := "Renamed"
	summarize := true
	body, _ := json.Marshal(UpdateFeedRequest{Name: &name, Summarize: &summarize})
	req := httptest.NewRequest(http.MethodPut, "/feeds/"+feed.ID.String(), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.Summarize)
	// Fields absent from the request keep their stored values.
	assert.Equal(t, feed.TargetLanguage, updated.TargetLanguage)
	assert.Equal(t, feed.MaxPosts, updated.MaxPosts)
}

func TestFeedHandler_Delete(t *testing.T) {
	t.Parallel()

	var deleted uuid.UUID
	router := newFeedRouter(&fakeFeedService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	})

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/feeds/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, id, deleted)
}

func TestFeedHandler_Entries(t *testing.T) {
	t.Parallel()

	t.Run("default limit", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		router := newFeedRouter(&fakeFeedService{
			entriesFn: func(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error) {
				gotLimit = limit
				return []*domain.Entry{}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/feeds/"+uuid.NewString()+"/entries", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, defaultEntryLimit, gotLimit)
	})

	t.Run("explicit limit", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		router := newFeedRouter(&fakeFeedService{
			entriesFn: func(ctx context.Context, feedID uuid.UUID, limit int) ([]*domain.Entry, error) {
				gotLimit = limit
				return []*domain.Entry{}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/feeds/"+uuid.NewString()+"/entries?limit=5", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, gotLimit)
	})

	t.Run("invalid limit is rejected", func(t *testing.T) {
		t.Parallel()

		router := newFeedRouter(&fakeFeedService{})

		req := httptest.NewRequest(http.MethodGet, "/feeds/"+uuid.NewString()+"/entries?limit=zero", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFeedHandler_Refresh(t *testing.T) {
	t.Parallel()

	manager := newTestTaskManager(t)
	feedID := uuid.New()
	handle := submitTestTask(t, manager, service.RefreshTaskName(feedID))

	router := newFeedRouter(&fakeFeedService{
		refreshFn: func(ctx context.Context, id uuid.UUID) (*taskmanager.Handle, error) {
			assert.Equal(t, feedID, id)
			return handle, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/feeds/"+feedID.String()+"/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp TaskSubmittedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, service.RefreshTaskName(feedID), resp.TaskName)
}

func TestFeedHandler_RefreshAll(t *testing.T) {
	t.Parallel()

	manager := newTestTaskManager(t)
	handle := submitTestTask(t, manager, service.RefreshAllTaskName)

	router := newFeedRouter(&fakeFeedService{
		refreshAllFn: func(ctx context.Context) (*taskmanager.Handle, error) {
			return handle, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/feeds/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp TaskSubmittedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, service.RefreshAllTaskName, resp.TaskName)
}
