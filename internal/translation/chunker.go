package translation

import "strings"

// sentenceDelimiters terminate a sentence during the first splitting pass.
var sentenceDelimiters = []rune{'.', '!', '?', '\n', ';', '。', '！', '？'}

// fallbackDelimiters are tried in order when a single sentence still exceeds
// the token budget.
var fallbackDelimiters = []rune{',', ';', ' '}

// EstimateTokens approximates the token count of s without a provider
// tokenizer. CJK characters count as one token each; runs of other characters
// average out to roughly four characters per token.
func EstimateTokens(s string) int {
	var cjk, other int
	for _, r := range s {
		if r >= 0x2E80 {
			cjk++
		} else {
			other++
		}
	}
	return cjk + (other+3)/4
}

// ChunkText splits input into segments that each fit within maxTokens,
// preserving natural sentence boundaries where possible. Small fragments are
// recombined so chunks stay close to the budget. Empty or whitespace-only
// input yields a single empty chunk.
func ChunkText(input string, maxTokens int) []string {
	if strings.TrimSpace(input) == "" {
		return []string{""}
	}
	if maxTokens < 1 {
		maxTokens = 1
	}

	var chunks []string
	for _, sentence := range splitSentences(input) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if EstimateTokens(sentence) <= maxTokens {
			chunks = append(chunks, sentence)
		} else {
			chunks = append(chunks, splitLargeSentence(sentence, maxTokens, fallbackDelimiters)...)
		}
	}

	return combineChunks(chunks, maxTokens)
}

// splitSentences breaks input at sentence-ending punctuation, keeping the
// delimiter attached to the preceding sentence.
func splitSentences(input string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range input {
		current.WriteRune(r)
		if isSentenceDelimiter(r) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isSentenceDelimiter(r rune) bool {
	for _, d := range sentenceDelimiters {
		if r == d {
			return true
		}
	}
	return false
}

// splitLargeSentence breaks an oversized sentence at the first delimiter in
// delimiters that produces progress, recursing with finer delimiters for
// pieces that are still too large. When no delimiter helps, the sentence is
// hard-split by rune count.
func splitLargeSentence(sentence string, maxTokens int, delimiters []rune) []string {
	for i, delim := range delimiters {
		parts := splitKeepingDelimiter(sentence, delim)
		if len(parts) <= 1 {
			continue
		}

		var chunks []string
		var current strings.Builder
		for _, part := range parts {
			if current.Len() > 0 &&
				EstimateTokens(current.String())+EstimateTokens(part) > maxTokens {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			current.WriteString(part)
		}
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
		}

		var final []string
		for _, chunk := range chunks {
			if EstimateTokens(chunk) > maxTokens {
				final = append(final, splitLargeSentence(chunk, maxTokens, delimiters[i+1:])...)
			} else {
				final = append(final, chunk)
			}
		}
		return final
	}

	return hardSplit(sentence, maxTokens)
}

// splitKeepingDelimiter splits s at delim, keeping the delimiter at the end of
// each piece.
func splitKeepingDelimiter(s string, delim rune) []string {
	var parts []string
	var current strings.Builder
	for _, r := range s {
		current.WriteRune(r)
		if r == delim {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// hardSplit cuts s into rune windows sized so each window stays at or under
// maxTokens by the token estimate.
func hardSplit(s string, maxTokens int) []string {
	runes := []rune(s)
	// Worst case every rune is a token, so a window of maxTokens runes is
	// always within budget.
	window := maxTokens
	if window < 1 {
		window = 1
	}

	var chunks []string
	for i := 0; i < len(runes); i += window {
		end := i + window
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// combineChunks merges adjacent small chunks so the final segments approach
// maxTokens without exceeding it.
func combineChunks(chunks []string, maxTokens int) []string {
	var combined []string
	var current string
	var currentTokens int

	for _, chunk := range chunks {
		tokens := EstimateTokens(chunk)
		if current == "" {
			current = chunk
			currentTokens = tokens
			continue
		}
		if currentTokens+tokens <= maxTokens {
			if strings.HasSuffix(current, " ") || strings.HasSuffix(current, "\n") {
				current += chunk
			} else {
				current += " " + chunk
			}
			currentTokens += tokens
		} else {
			combined = append(combined, current)
			current = chunk
			currentTokens = tokens
		}
	}
	if current != "" {
		combined = append(combined, current)
	}
	return combined
}
