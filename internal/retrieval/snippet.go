package retrieval

import (
	"fmt"
	"strings"
)

// Snippet returns a bounded excerpt of the document text for the given
// query terms. Bigrams are tried first, then tokens, each in set order;
// the excerpt is a window of +-window characters around the first term
// that occurs, sliced from the original-case text and prefixed with a
// marker naming the centering term. If no term occurs at all, the head
// of the document is returned so the model still receives some grounding
// text. The result never exceeds maxLen characters.
func Snippet(text string, tokens, bigrams []string, maxLen, window int) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)

	term, index := firstHit(lower, bigrams)
	if index < 0 {
		term, index = firstHit(lower, tokens)
	}
	if index < 0 {
		if len(text) > maxLen {
			return text[:maxLen]
		}
		return text
	}

	start := index - window
	if start < 0 {
		start = 0
	}
	end := index + window
	if end > len(text) {
		end = len(text)
	}

	out := fmt.Sprintf("...[excerpt around '%s']...\n%s", term, text[start:end])
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

// firstHit returns the first term in the given order that occurs in s,
// with its character index, or ("", -1) when none occur. Note the order
// of terms wins over the position of the hit: an earlier term matching
// late in the text beats a later term matching early.
func firstHit(s string, terms []string) (string, int) {
	for _, t := range terms {
		if idx := strings.Index(s, t); idx >= 0 {
			return t, idx
		}
	}
	return "", -1
}
