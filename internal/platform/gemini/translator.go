package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/feedscribe/feedscribe/internal/config"
	"github.com/feedscribe/feedscribe/internal/translation"
	"google.golang.org/genai"
)

// Translator implements the translation.Translator interface using Google's
// Gemini API.
type Translator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains provider configuration
	config config.TranslationConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// verify interface compliance at compile time
var _ translation.Translator = (*Translator)(nil)

// NewTranslator creates a new Gemini-backed Translator with the provided
// dependencies.
func NewTranslator(ctx context.Context, logger *slog.Logger, cfg config.TranslationConfig) (*Translator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", translation.ErrInvalidConfig)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", translation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			translation.ErrInvalidConfig, err)
	}

	return &Translator{
		logger: logger.With(slog.String("component", "gemini_translator")),
		config: cfg,
		client: client,
		model:  cfg.Model,
	}, nil
}

// Name returns the provider identifier.
func (t *Translator) Name() string {
	return "gemini"
}

// Translate renders text into targetLanguage. Content longer than the
// configured chunk budget is split, translated piece by piece, and rejoined.
func (t *Translator) Translate(
	ctx context.Context,
	text, targetLanguage string,
	kind translation.TextKind,
) (*translation.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, translation.ErrEmptyText
	}

	prompt := translation.PromptFor(kind, targetLanguage)
	return t.completeChunked(ctx, text, prompt)
}

// Summarize produces a short summary of text in targetLanguage.
func (t *Translator) Summarize(
	ctx context.Context,
	text, targetLanguage string,
) (*translation.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, translation.ErrEmptyText
	}

	return t.completeChunked(ctx, text, translation.SummaryPrompt(targetLanguage))
}

// Validate makes a minimal generation call to confirm the API key and model
// are usable.
func (t *Translator) Validate(ctx context.Context) error {
	result, err := t.complete(ctx, "Hi", "Reply with one word.")
	if err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "Gemini validation succeeded",
		slog.Int("tokens", result.Tokens))
	return nil
}

// completeChunked runs complete over the input, splitting it when it exceeds
// the chunk token budget.
func (t *Translator) completeChunked(
	ctx context.Context,
	text, systemPrompt string,
) (*translation.Result, error) {
	maxTokens := t.config.MaxChunkTokens
	if maxTokens <= 0 {
		maxTokens = 3000
	}

	if translation.EstimateTokens(text) <= maxTokens {
		return t.complete(ctx, text, systemPrompt)
	}

	chunks := translation.ChunkText(text, maxTokens)
	t.logger.InfoContext(ctx, "Input exceeds chunk budget, translating in pieces",
		slog.Int("chunks", len(chunks)))

	parts := make([]string, 0, len(chunks))
	totalTokens := 0
	for _, chunk := range chunks {
		result, err := t.complete(ctx, chunk, systemPrompt)
		if err != nil {
			return nil, err
		}
		parts = append(parts, result.Text)
		totalTokens += result.Tokens
	}

	return &translation.Result{
		Text:   strings.Join(parts, " "),
		Tokens: totalTokens,
	}, nil
}

// complete makes a call to the Gemini API with exponential backoff retry
// logic. Transient errors are retried up to the configured number of times;
// permanent errors (blocked content, malformed responses) return immediately.
func (t *Translator) complete(ctx context.Context, text, systemPrompt string) (*translation.Result, error) {
	maxRetries := t.config.MaxRetries
	if maxRetries < 0 {
		t.logger.WarnContext(ctx, "Invalid max retries value, using default",
			slog.Int("max_retries", 3))
		maxRetries = 3
	}

	baseDelaySeconds := t.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		t.logger.DebugContext(ctx, "Making Gemini API call",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		result, err := t.generateOnce(ctx, text, genConfig)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if errors.Is(err, translation.ErrContentBlocked) ||
			errors.Is(err, translation.ErrInvalidResponse) {
			return nil, err
		}

		t.logger.WarnContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if attempt == maxRetries {
			break
		}

		// Exponential backoff with jitter.
		delay := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay *= 0.5 + rng.Float64()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(delay * float64(time.Second))):
		}
	}

	return nil, fmt.Errorf("%w: %v", translation.ErrTransientFailure, lastErr)
}

// generateOnce performs a single GenerateContent call and maps the response
// to a translation.Result.
func (t *Translator) generateOnce(
	ctx context.Context,
	text string,
	genConfig *genai.GenerateContentConfig,
) (*translation.Result, error) {
	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(text), genConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini API call: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", translation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason safety", translation.ErrContentBlocked)
	}

	output := resp.Text()
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("%w: empty response text", translation.ErrInvalidResponse)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &translation.Result{Text: output, Tokens: tokens}, nil
}
