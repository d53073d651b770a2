package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	t.Parallel()

	feedID := uuid.New()
	entry, err := NewEntry(feedID, "https://example.com/post/1", "A post")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, feedID, entry.FeedID)
	assert.Equal(t, "https://example.com/post/1", entry.GUID)
	assert.Equal(t, "A post", entry.OriginalTitle)
	assert.False(t, entry.Translated())
}

func TestEntry_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Entry)
		wantErr error
	}{
		{"nil ID", func(e *Entry) { e.ID = uuid.Nil }, ErrEmptyEntryID},
		{"nil feed ID", func(e *Entry) { e.FeedID = uuid.Nil }, ErrEmptyEntryFeedID},
		{"empty GUID", func(e *Entry) { e.GUID = "" }, ErrEmptyEntryGUID},
		{"empty title", func(e *Entry) { e.OriginalTitle = "" }, ErrEmptyEntryTitle},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			entry, err := NewEntry(uuid.New(), "guid-1", "title")
			require.NoError(t, err)

			tc.mutate(entry)
			assert.ErrorIs(t, entry.Validate(), tc.wantErr)
		})
	}
}

func TestEntry_Translated(t *testing.T) {
	t.Parallel()

	entry, err := NewEntry(uuid.New(), "guid-1", "title")
	require.NoError(t, err)

	assert.False(t, entry.Translated())

	entry.TranslatedTitle = "titre"
	assert.True(t, entry.Translated())
}
