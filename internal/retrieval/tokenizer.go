package retrieval

import "strings"

// punctuation is the fixed cutset stripped from the edges of each
// whitespace-separated piece of the query.
const punctuation = `.,!?;:"'()[]{}<>`

// minTokenLen filters out short stop-word-like noise without an explicit
// stop-word list. Purely length-based: no stemming, no language detection.
const minTokenLen = 3

// Tokenize turns a free-text query into lowercase tokens and adjacent-word
// bigrams. Tokens are deduplicated in first-seen order; this order matters
// downstream because the snippet extractor searches terms in set order.
// Bigrams are formed from adjacent words in the original query order, not
// the deduplicated token set, and only where both words pass the length
// filter. Empty or all-short input yields empty slices.
func Tokenize(query string) (tokens []string, bigrams []string) {
	words := strings.Fields(strings.ToLower(query))
	cleaned := make([]string, len(words))
	for i, w := range words {
		cleaned[i] = strings.Trim(w, punctuation)
	}

	seen := make(map[string]bool)
	for _, w := range cleaned {
		if len(w) < minTokenLen || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}

	seenBigram := make(map[string]bool)
	for i := 0; i+1 < len(cleaned); i++ {
		if len(cleaned[i]) < minTokenLen || len(cleaned[i+1]) < minTokenLen {
			continue
		}
		b := cleaned[i] + " " + cleaned[i+1]
		if seenBigram[b] {
			continue
		}
		seenBigram[b] = true
		bigrams = append(bigrams, b)
	}

	return tokens, bigrams
}
