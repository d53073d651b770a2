package domain

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Feed. All wrap ErrValidation.
var (
	ErrEmptyFeedID       = fmt.Errorf("%w: feed ID cannot be empty", ErrValidation)
	ErrEmptyFeedURL      = fmt.Errorf("%w: feed URL cannot be empty", ErrValidation)
	ErrInvalidFeedURL    = fmt.Errorf("%w: feed URL is not a valid URL", ErrValidation)
	ErrInvalidMaxPosts   = fmt.Errorf("%w: feed max posts must be positive", ErrValidation)
	ErrEmptyTargetLang   = fmt.Errorf("%w: feed target language cannot be empty", ErrValidation)
	ErrInvalidSummaryDet = fmt.Errorf("%w: feed summary detail must be within [0,1]", ErrValidation)
)

// DefaultMaxPosts caps how many entries are kept per feed when the feed
// itself doesn't say.
const DefaultMaxPosts = 20

// Feed represents one subscribed RSS/Atom source together with its
// translation settings. Metadata fields (Name, Subtitle, ...) are filled in
// from the remote document on the first successful fetch.
type Feed struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"feed_url"`
	Name     string    `json:"name"`
	Subtitle string    `json:"subtitle,omitempty"`
	Link     string    `json:"link,omitempty"`
	Author   string    `json:"author,omitempty"`
	Language string    `json:"language,omitempty"`

	// ETag is sent back on refresh so an unchanged feed is skipped.
	ETag     string `json:"etag,omitempty"`
	MaxPosts int    `json:"max_posts"`

	// FetchStatus is nil until the first refresh finishes, then reports
	// whether the most recent refresh succeeded.
	FetchStatus *bool      `json:"fetch_status,omitempty"`
	LastFetch   *time.Time `json:"last_fetch,omitempty"`

	// Log accumulates human-readable refresh history lines.
	Log string `json:"log,omitempty"`

	TranslateTitle   bool    `json:"translate_title"`
	TranslateContent bool    `json:"translate_content"`
	Summarize        bool    `json:"summarize"`
	SummaryDetail    float64 `json:"summary_detail"`
	TargetLanguage   string  `json:"target_language"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFeed creates a feed subscription for the given URL and target language.
// Metadata stays empty until the first fetch. Returns an error if validation
// fails.
func NewFeed(feedURL, targetLanguage string) (*Feed, error) {
	now := time.Now().UTC()
	feed := &Feed{
		ID:             uuid.New(),
		URL:            feedURL,
		MaxPosts:       DefaultMaxPosts,
		TargetLanguage: targetLanguage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := feed.Validate(); err != nil {
		return nil, err
	}

	return feed, nil
}

// Validate checks if the Feed has valid data.
// Returns an error if any field fails validation.
func (f *Feed) Validate() error {
	if f.ID == uuid.Nil {
		return ErrEmptyFeedID
	}

	if f.URL == "" {
		return ErrEmptyFeedURL
	}

	if u, err := url.Parse(f.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidFeedURL
	}

	if f.MaxPosts <= 0 {
		return ErrInvalidMaxPosts
	}

	if f.TargetLanguage == "" {
		return ErrEmptyTargetLang
	}

	if f.SummaryDetail < 0 || f.SummaryDetail > 1 {
		return ErrInvalidSummaryDet
	}

	return nil
}

// MarkFetched records the outcome of a refresh attempt.
func (f *Feed) MarkFetched(ok bool, at time.Time) {
	f.FetchStatus = &ok
	f.LastFetch = &at
	f.UpdatedAt = time.Now().UTC()
}
