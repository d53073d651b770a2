// Package gemini implements the translation.Translator interface using
// Google's Gemini API via the google.golang.org/genai client.
package gemini
