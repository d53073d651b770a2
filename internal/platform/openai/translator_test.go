package openai

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/feedscribe/feedscribe/internal/config"
	"github.com/feedscribe/feedscribe/internal/translation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func validConfig() config.TranslationConfig {
	return config.TranslationConfig{
		Provider:          "openai",
		OpenAIAPIKey:      "test-api-key",
		Model:             "gpt-4o-mini",
		TargetLanguage:    "English",
		MaxRetries:        3,
		RetryDelaySeconds: 1,
		MaxChunkTokens:    3000,
	}
}

func TestNewTranslator(t *testing.T) {
	t.Parallel()

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()
		tr, err := NewTranslator(testLogger(), validConfig())
		require.NoError(t, err)
		require.NotNil(t, tr)
		assert.Equal(t, "openai", tr.Name())
	})

	t.Run("custom base URL accepted", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.OpenAIBaseURL = "https://example.com/v1"
		_, err := NewTranslator(testLogger(), cfg)
		assert.NoError(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewTranslator(nil, validConfig())
		assert.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.OpenAIAPIKey = ""
		_, err := NewTranslator(testLogger(), cfg)
		assert.ErrorIs(t, err, translation.ErrInvalidConfig)
	})

	t.Run("missing model", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Model = ""
		_, err := NewTranslator(testLogger(), cfg)
		assert.ErrorIs(t, err, translation.ErrInvalidConfig)
	})
}

func TestTranslatorRejectsEmptyText(t *testing.T) {
	t.Parallel()

	tr, err := NewTranslator(testLogger(), validConfig())
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), "", "French", translation.KindContent)
	assert.ErrorIs(t, err, translation.ErrEmptyText)

	_, err = tr.Summarize(context.Background(), "  ", "French")
	assert.ErrorIs(t, err, translation.ErrEmptyText)
}
