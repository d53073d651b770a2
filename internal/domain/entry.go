package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Entry. All wrap ErrValidation.
var (
	ErrEmptyEntryID     = fmt.Errorf("%w: entry ID cannot be empty", ErrValidation)
	ErrEmptyEntryFeedID = fmt.Errorf("%w: entry feed ID cannot be empty", ErrValidation)
	ErrEmptyEntryGUID   = fmt.Errorf("%w: entry GUID cannot be empty", ErrValidation)
	ErrEmptyEntryTitle  = fmt.Errorf("%w: entry title cannot be empty", ErrValidation)
)

// Entry is one item of a feed. The Original* fields hold what the remote
// feed published; the Translated* and GeneratedSummary fields are filled in
// by the translation tasks and stay empty until then.
type Entry struct {
	ID     uuid.UUID `json:"id"`
	FeedID uuid.UUID `json:"feed_id"`

	// GUID identifies the entry within its feed; the remote item id, or
	// its link when the feed carries no id.
	GUID    string     `json:"guid"`
	Link    string     `json:"link,omitempty"`
	Author  string     `json:"author,omitempty"`
	PubDate *time.Time `json:"pubdate,omitempty"`
	Updated *time.Time `json:"updated,omitempty"`

	OriginalTitle   string `json:"original_title"`
	OriginalContent string `json:"original_content,omitempty"`
	OriginalSummary string `json:"original_summary,omitempty"`

	TranslatedTitle   string `json:"translated_title,omitempty"`
	TranslatedContent string `json:"translated_content,omitempty"`
	GeneratedSummary  string `json:"generated_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntry creates an Entry for the given feed with the fields a fetch
// produces. Returns an error if validation fails.
func NewEntry(feedID uuid.UUID, guid, title string) (*Entry, error) {
	now := time.Now().UTC()
	entry := &Entry{
		ID:            uuid.New(),
		FeedID:        feedID,
		GUID:          guid,
		OriginalTitle: title,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the Entry has valid data.
func (e *Entry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEntryID
	}

	if e.FeedID == uuid.Nil {
		return ErrEmptyEntryFeedID
	}

	if e.GUID == "" {
		return ErrEmptyEntryGUID
	}

	if e.OriginalTitle == "" {
		return ErrEmptyEntryTitle
	}

	return nil
}

// Translated reports whether the entry already carries a translation.
func (e *Entry) Translated() bool {
	return e.TranslatedTitle != "" || e.TranslatedContent != ""
}
