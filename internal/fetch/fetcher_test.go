package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <link>https://example.com</link>
    <description>Posts about examples</description>
    <item>
      <title>Newer Post</title>
      <link>https://example.com/posts/2</link>
      <guid>post-2</guid>
      <pubDate>Tue, 10 Jun 2025 12:00:00 GMT</pubDate>
      <description>Second post</description>
    </item>
    <item>
      <title>Older Post</title>
      <link>https://example.com/posts/1</link>
      <guid>post-1</guid>
      <pubDate>Mon, 09 Jun 2025 12:00:00 GMT</pubDate>
      <description>First post</description>
    </item>
  </channel>
</rss>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("parses feed and captures etag", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("ETag", `"v1"`)
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(sampleRSS))
		}))
		defer srv.Close()

		f := NewFetcher(testLogger(), srv.Client())
		result, err := f.Fetch(context.Background(), srv.URL, "")
		require.NoError(t, err)
		require.NotNil(t, result.Feed)

		assert.False(t, result.NotModified)
		assert.Equal(t, `"v1"`, result.ETag)
		assert.Equal(t, "Example Blog", result.Feed.Title)
		assert.Len(t, result.Feed.Items, 2)
	})

	t.Run("sends conditional request and honors 304", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("If-None-Match") == `"v1"` {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			_, _ = w.Write([]byte(sampleRSS))
		}))
		defer srv.Close()

		f := NewFetcher(testLogger(), srv.Client())
		result, err := f.Fetch(context.Background(), srv.URL, `"v1"`)
		require.NoError(t, err)

		assert.True(t, result.NotModified)
		assert.Nil(t, result.Feed)
		assert.Equal(t, `"v1"`, result.ETag)
	})

	t.Run("non-success status returns error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer srv.Close()

		f := NewFetcher(testLogger(), srv.Client())
		_, err := f.Fetch(context.Background(), srv.URL, "")
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("malformed body returns parse error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not a feed</html>"))
		}))
		defer srv.Close()

		f := NewFetcher(testLogger(), srv.Client())
		_, err := f.Fetch(context.Background(), srv.URL, "")
		assert.Error(t, err)
	})

	t.Run("context cancellation aborts fetch", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(sampleRSS))
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		f := NewFetcher(testLogger(), srv.Client())
		_, err := f.Fetch(ctx, srv.URL, "")
		assert.Error(t, err)
	})
}

func TestSortItemsNewestFirst(t *testing.T) {
	t.Parallel()

	older := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	items := []*gofeed.Item{
		{Title: "older", PublishedParsed: &older},
		{Title: "undated"},
		{Title: "newer", PublishedParsed: &newer},
		{Title: "updated only", UpdatedParsed: &newer},
	}

	SortItemsNewestFirst(items)

	assert.Equal(t, "newer", items[0].Title)
	assert.Equal(t, "updated only", items[1].Title)
	assert.Equal(t, "older", items[2].Title)
	assert.Equal(t, "undated", items[3].Title)
}

func TestItemHelpers(t *testing.T) {
	t.Parallel()

	t.Run("guid falls back to link", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "id-1", ItemGUID(&gofeed.Item{GUID: "id-1", Link: "https://x"}))
		assert.Equal(t, "https://x", ItemGUID(&gofeed.Item{Link: "https://x"}))
		assert.Empty(t, ItemGUID(&gofeed.Item{}))
	})

	t.Run("content falls back to description", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "full", ItemContent(&gofeed.Item{Content: "full", Description: "short"}))
		assert.Equal(t, "short", ItemContent(&gofeed.Item{Description: "short"}))
	})

	t.Run("author falls back to default", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Jo", ItemAuthor(&gofeed.Item{Author: &gofeed.Person{Name: "Jo"}}, "d"))
		assert.Equal(t, "d", ItemAuthor(&gofeed.Item{}, "d"))
		assert.Equal(t, "Unknown", FeedAuthor(&gofeed.Feed{}))
	})
}
