package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Digest. All wrap ErrValidation.
var (
	ErrEmptyDigestID      = fmt.Errorf("%w: digest ID cannot be empty", ErrValidation)
	ErrEmptyDigestTitle   = fmt.Errorf("%w: digest title cannot be empty", ErrValidation)
	ErrEmptyDigestContent = fmt.Errorf("%w: digest content cannot be empty", ErrValidation)
)

// Digest is a generated summary document covering the entries of one day.
type Digest struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	EntryCount int       `json:"entry_count"`

	// Day is the date (UTC, truncated to midnight) the digest covers.
	Day       time.Time `json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDigest creates a digest for the given day.
// Returns an error if validation fails.
func NewDigest(day time.Time, title, content string, entryCount int) (*Digest, error) {
	digest := &Digest{
		ID:         uuid.New(),
		Title:      title,
		Content:    content,
		EntryCount: entryCount,
		Day:        day.UTC().Truncate(24 * time.Hour),
		CreatedAt:  time.Now().UTC(),
	}

	if err := digest.Validate(); err != nil {
		return nil, err
	}

	return digest, nil
}

// Validate checks if the Digest has valid data.
func (d *Digest) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDigestID
	}

	if d.Title == "" {
		return ErrEmptyDigestTitle
	}

	if d.Content == "" {
		return ErrEmptyDigestContent
	}

	return nil
}
