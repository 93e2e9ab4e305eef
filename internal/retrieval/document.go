// Package retrieval selects which knowledge base documents are forwarded
// to the language model for a given question. It recomputes relevance from
// scratch on every query over an in-memory document list; there is no
// persistent index and no embedding involved.
package retrieval

// Document is one ingested file or page, normalized by the connector layer.
type Document struct {
	// Name is the display identifier, possibly including a folder path.
	Name string
	// Text is the full extracted textual content.
	Text string
	// Priority is an editorial tiebreak: 1 is highest, 4 is archive.
	// Connectors default missing values to 3.
	Priority int
}

// ScoredDocument pairs a document with its relevance score for one query.
// Scores are recomputed every turn and never persisted.
type ScoredDocument struct {
	Document Document
	Score    int
}

// Options holds the retrieval tuning knobs. All values have working
// defaults via DefaultOptions; zero values are replaced with defaults
// by the functions that consume them.
type Options struct {
	// MaxCandidates is how many positively scored documents are kept.
	MaxCandidates int
	// FallbackCandidates is how many documents are kept when no document
	// scores above zero, so the assembler always receives something.
	FallbackCandidates int
	// SnippetMaxLen caps the excerpt length per document, in characters.
	SnippetMaxLen int
	// Window is the half-width of the excerpt around the first hit.
	Window int
	// TotalBudget caps the assembled context length, in characters.
	TotalBudget int
}

// DefaultOptions returns the retrieval defaults used by the chat engine.
func DefaultOptions() Options {
	return Options{
		MaxCandidates:      8,
		FallbackCandidates: 6,
		SnippetMaxLen:      2000,
		Window:             1400,
		TotalBudget:        20000,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = def.MaxCandidates
	}
	if o.FallbackCandidates <= 0 {
		o.FallbackCandidates = def.FallbackCandidates
	}
	if o.SnippetMaxLen <= 0 {
		o.SnippetMaxLen = def.SnippetMaxLen
	}
	if o.Window <= 0 {
		o.Window = def.Window
	}
	if o.TotalBudget <= 0 {
		o.TotalBudget = def.TotalBudget
	}
	return o
}
