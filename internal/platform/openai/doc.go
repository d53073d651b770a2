// Package openai implements the translation.Translator interface using the
// OpenAI chat completions API. A custom base URL allows pointing the client
// at OpenAI-compatible providers.
package openai
