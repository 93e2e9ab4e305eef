package retrieval

import (
	"sort"
	"strings"
)

// Term weights. Filenames are curated, high-signal labels, so name hits
// outweigh body hits; phrase hits outweigh single-token hits in both.
const (
	tokenNameWeight  = 3
	tokenBodyWeight  = 1
	bigramNameWeight = 5
	bigramBodyWeight = 2
)

// Score computes the relevance of a document for the given query terms.
// Counts are plain non-overlapping substring counts, not word-boundary
// counts: "cat" matches inside "category". Ranking behavior depends on
// this, so it must not be tightened to word matching.
func Score(doc Document, tokens, bigrams []string) int {
	nameLower := strings.ToLower(doc.Name)
	bodyLower := strings.ToLower(doc.Text)

	score := 0
	for _, t := range tokens {
		score += tokenNameWeight*strings.Count(nameLower, t) + tokenBodyWeight*strings.Count(bodyLower, t)
	}
	for _, b := range bigrams {
		score += bigramNameWeight*strings.Count(nameLower, b) + bigramBodyWeight*strings.Count(bodyLower, b)
	}

	// Static editorial tiebreak: priority 1 contributes +3, priority 4
	// contributes 0. Out-of-range priorities contribute nothing.
	if doc.Priority >= 1 && doc.Priority <= 4 {
		score += 4 - doc.Priority
	}

	return score
}

// Rank scores every document and returns the selected candidates in
// descending score order. Ties keep the input order (stable sort) so
// results are reproducible across runs.
//
// If any document scores above zero, up to opts.MaxCandidates positives
// are returned. Otherwise the top opts.FallbackCandidates are returned
// regardless of score, so an off-topic question still yields context in
// priority order.
func Rank(docs []Document, tokens, bigrams []string, opts Options) []ScoredDocument {
	opts = opts.withDefaults()

	scored := make([]ScoredDocument, 0, len(docs))
	for _, d := range docs {
		scored = append(scored, ScoredDocument{Document: d, Score: Score(d, tokens, bigrams)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var positives []ScoredDocument
	for _, s := range scored {
		if s.Score > 0 {
			positives = append(positives, s)
		}
	}

	if len(positives) > 0 {
		if len(positives) > opts.MaxCandidates {
			positives = positives[:opts.MaxCandidates]
		}
		return positives
	}

	if len(scored) > opts.FallbackCandidates {
		scored = scored[:opts.FallbackCandidates]
	}
	return scored
}
