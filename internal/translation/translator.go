package translation

import (
	"context"
	"strings"
)

// TextKind distinguishes short titles from full entry content. Providers use
// it to select the appropriate system prompt.
type TextKind string

const (
	// KindTitle indicates a short headline that should be translated inline
	// without added commentary.
	KindTitle TextKind = "title"

	// KindContent indicates full article content, which may be chunked before
	// translation.
	KindContent TextKind = "content"
)

// Result holds the output of a translation or summarization call along with
// the token usage reported by the provider.
type Result struct {
	// Text is the translated or summarized output.
	Text string

	// Tokens is the total token count consumed by the call, or zero when the
	// provider does not report usage.
	Tokens int
}

// Translator defines the interface for translating and summarizing text.
//
// Implementations wrap a specific language model provider and are expected to
// handle chunking of oversized input internally, so callers can pass entry
// content of any length.
type Translator interface {
	// Name returns a short provider identifier used in logs and task results.
	Name() string

	// Translate renders text into the target language. The kind selects the
	// prompt used: titles are translated inline, content preserves structure.
	Translate(ctx context.Context, text, targetLanguage string, kind TextKind) (*Result, error)

	// Summarize produces a short summary of text in the target language.
	Summarize(ctx context.Context, text, targetLanguage string) (*Result, error)

	// Validate performs a minimal live call to verify the provider is
	// reachable and the credentials are accepted.
	Validate(ctx context.Context) error
}

const (
	titlePromptTemplate = "Translate the following title into {target_language}. " +
		"Return only the translated title, with no explanation, quotes, or added text."

	contentPromptTemplate = "Translate the following text into {target_language}. " +
		"Preserve the original formatting, links, and paragraph structure. " +
		"Return only the translated text."

	summaryPromptTemplate = "Summarize the following text in {target_language} " +
		"in three sentences or fewer. Return only the summary."
)

// TitlePrompt returns the system prompt for translating a title into
// targetLanguage.
func TitlePrompt(targetLanguage string) string {
	return strings.ReplaceAll(titlePromptTemplate, "{target_language}", targetLanguage)
}

// ContentPrompt returns the system prompt for translating entry content into
// targetLanguage.
func ContentPrompt(targetLanguage string) string {
	return strings.ReplaceAll(contentPromptTemplate, "{target_language}", targetLanguage)
}

// SummaryPrompt returns the system prompt for summarizing text in
// targetLanguage.
func SummaryPrompt(targetLanguage string) string {
	return strings.ReplaceAll(summaryPromptTemplate, "{target_language}", targetLanguage)
}

// PromptFor returns the translation prompt matching kind.
func PromptFor(kind TextKind, targetLanguage string) string {
	if kind == KindTitle {
		return TitlePrompt(targetLanguage)
	}
	return ContentPrompt(targetLanguage)
}
