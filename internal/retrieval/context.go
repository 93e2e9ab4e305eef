package retrieval

import "strings"

// blockSeparator joins document blocks in the assembled context.
const blockSeparator = "\n\n"

// BuildContext concatenates labeled snippets for the ranked documents
// into a single context string under a hard character budget. Documents
// are consumed in rank order; a document whose snippet comes back empty
// is skipped, and assembly stops entirely at the first block that would
// overflow the budget. Stopping rather than skipping keeps higher-ranked
// documents from ever being pre-empted by a smaller lower-ranked block.
// Returns the empty string when nothing fits or nothing was selected.
func BuildContext(ranked []ScoredDocument, tokens, bigrams []string, opts Options) string {
	opts = opts.withDefaults()

	var blocks []string
	used := 0

	for _, sd := range ranked {
		snippet := Snippet(sd.Document.Text, tokens, bigrams, opts.SnippetMaxLen, opts.Window)
		if snippet == "" {
			continue
		}

		block := "Document: " + sd.Document.Name + "\n" + snippet

		cost := len(block)
		if len(blocks) > 0 {
			cost += len(blockSeparator)
		}
		if used+cost > opts.TotalBudget {
			break
		}

		blocks = append(blocks, block)
		used += cost
	}

	return strings.Join(blocks, blockSeparator)
}
