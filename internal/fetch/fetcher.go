// Package fetch retrieves and parses RSS and Atom feeds over HTTP with
// conditional request support.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
)

// userAgent is sent with every feed request. Some feed hosts reject requests
// without a browser-looking agent string.
const userAgent = "Mozilla/5.0 (compatible; feedscribe/1.0; +https://github.com/feedscribe/feedscribe)"

// defaultTimeout bounds a single fetch round trip.
const defaultTimeout = 30 * time.Second

// ErrUnexpectedStatus is returned when the feed host responds with a
// non-success status other than 304 Not Modified.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status fetching feed")

// Result holds the outcome of a feed fetch.
type Result struct {
	// Feed is the parsed feed, nil when NotModified is true.
	Feed *gofeed.Feed

	// ETag is the entity tag returned by the host, empty if none was sent.
	ETag string

	// NotModified is true when the host answered 304 for the provided ETag.
	NotModified bool
}

// Fetcher retrieves feeds over HTTP and parses them.
type Fetcher struct {
	logger *slog.Logger
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher creates a Fetcher with the given logger. A nil httpClient uses a
// default client with a 30 second timeout.
func NewFetcher(logger *slog.Logger, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{
		logger: logger.With(slog.String("component", "feed_fetcher")),
		client: httpClient,
		parser: gofeed.NewParser(),
	}
}

// Fetch retrieves the feed at url. When etag is non-empty it is sent as an
// If-None-Match header; a 304 response yields a Result with NotModified set
// and no parsed feed.
func (f *Fetcher) Fetch(ctx context.Context, url, etag string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.WarnContext(ctx, "Failed to close feed response body",
				slog.String("error", closeErr.Error()))
		}
	}()

	if resp.StatusCode == http.StatusNotModified {
		f.logger.DebugContext(ctx, "Feed not modified",
			slog.String("url", url))
		return &Result{ETag: etag, NotModified: true}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed from %s: %w", url, err)
	}

	f.logger.DebugContext(ctx, "Feed fetched",
		slog.String("url", url),
		slog.Int("items", len(feed.Items)))

	return &Result{
		Feed: feed,
		ETag: resp.Header.Get("ETag"),
	}, nil
}

// SortItemsNewestFirst orders items by publication date descending. Items
// without a publication date fall back to their update date, then to the
// epoch, so undated items sort last.
func SortItemsNewestFirst(items []*gofeed.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return itemTime(items[i]).After(itemTime(items[j]))
	})
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Unix(0, 0)
}

// ItemGUID returns the item's GUID, falling back to its link. An empty return
// means the item cannot be stored.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// ItemContent returns the item's full content, falling back to its summary
// description.
func ItemContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

// ItemAuthor returns the item's author name, falling back to the given
// default.
func ItemAuthor(item *gofeed.Item, fallback string) string {
	if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return fallback
}

// FeedAuthor returns the feed-level author name, falling back to "Unknown".
func FeedAuthor(feed *gofeed.Feed) string {
	if len(feed.Authors) > 0 && feed.Authors[0].Name != "" {
		return feed.Authors[0].Name
	}
	if feed.Author != nil && feed.Author.Name != "" {
		return feed.Author.Name
	}
	return "Unknown"
}
