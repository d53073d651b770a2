package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/feedscribe/feedscribe/internal/config"
	"github.com/feedscribe/feedscribe/internal/translation"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Translator implements the translation.Translator interface using the
// OpenAI chat completions API.
type Translator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains provider configuration
	config config.TranslationConfig

	// client is the OpenAI API client for making requests
	client openai.Client

	// model is the name of the chat model to use
	model string
}

// verify interface compliance at compile time
var _ translation.Translator = (*Translator)(nil)

// NewTranslator creates a new OpenAI-backed Translator with the provided
// dependencies.
func NewTranslator(logger *slog.Logger, cfg config.TranslationConfig) (*Translator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", translation.ErrInvalidConfig)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", translation.ErrInvalidConfig)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(maxRetries),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return &Translator{
		logger: logger.With(slog.String("component", "openai_translator")),
		config: cfg,
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Name returns the provider identifier.
func (t *Translator) Name() string {
	return "openai"
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

// Validate makes a minimal completion call to confirm the API key, base URL,
// and model are usable. Some OpenAI-compatible providers return junk bodies
// instead of errors for bad credentials, so the finish reason is checked too.
func (t *Translator) Validate(ctx context.Context) error {
	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hi"),
		},
		MaxTokens: openai.Int(30),
	})
	if err != nil {
		return fmt.Errorf("openai validation: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].FinishReason == "" {
		return fmt.Errorf("%w: validation probe returned no finish reason",
			translation.ErrInvalidResponse)
	}

	t.logger.InfoContext(ctx, "OpenAI validation succeeded",
		slog.String("finish_reason", resp.Choices[0].FinishReason))
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

	// Leave room for the system prompt in each request.
	budget := maxTokens - translation.EstimateTokens(systemPrompt) - 100
	if budget < 1 {
		budget = 1
	}

	if translation.EstimateTokens(text) <= budget {
		return t.complete(ctx, text, systemPrompt)
	}

	chunks := translation.ChunkText(text, budget)
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

// complete performs a single chat completion call. Retries for transient
// failures are handled by the client via WithMaxRetries.
func (t *Translator) complete(ctx context.Context, text, systemPrompt string) (*translation.Result, error) {
	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", translation.ErrTranslationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", translation.ErrInvalidResponse)
	}

	output := resp.Choices[0].Message.Content
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("%w: empty completion text", translation.ErrInvalidResponse)
	}

	t.logger.DebugContext(ctx, "OpenAI completion finished",
		slog.String("finish_reason", resp.Choices[0].FinishReason),
		slog.Int64("total_tokens", resp.Usage.TotalTokens))

	return &translation.Result{
		Text:   output,
		Tokens: int(resp.Usage.TotalTokens),
	}, nil
}
