package retrieval

import (
	"strings"
	"testing"
)

func rankedDocs(docs ...Document) []ScoredDocument {
	out := make([]ScoredDocument, len(docs))
	for i, d := range docs {
		out[i] = ScoredDocument{Document: d}
	}
	return out
}

func TestBuildContextFormat(t *testing.T) {
	ranked := rankedDocs(
		Document{Name: "a.txt", Text: "alpha content"},
		Document{Name: "b.txt", Text: "beta content"},
	)
	got := BuildContext(ranked, nil, nil, Options{})

	want := "Document: a.txt\nalpha content\n\nDocument: b.txt\nbeta content"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildContextSkipsEmptySnippets(t *testing.T) {
	ranked := rankedDocs(
		Document{Name: "empty.txt", Text: ""},
		Document{Name: "b.txt", Text: "beta content"},
	)
	got := BuildContext(ranked, nil, nil, Options{})
	if strings.Contains(got, "empty.txt") {
		t.Errorf("empty document should produce no block: %q", got)
	}
	if !strings.Contains(got, "b.txt") {
		t.Errorf("non-empty document missing: %q", got)
	}
}

func TestBuildContextBudgetInvariant(t *testing.T) {
	var docs []Document
	for i := 0; i < 30; i++ {
		docs = append(docs, Document{Name: "doc.txt", Text: strings.Repeat("claim text ", 100)})
	}
	for _, budget := range []int{10, 100, 1000, 20000} {
		got := BuildContext(rankedDocs(docs...), []string{"claim"}, nil, Options{TotalBudget: budget})
		if len(got) > budget {
			t.Errorf("budget %d: context length %d exceeds budget", budget, len(got))
		}
	}
}

func TestBuildContextStopsDoesNotSkip(t *testing.T) {
	small := Document{Name: "a.txt", Text: "fits"}
	big := Document{Name: "b.txt", Text: strings.Repeat("x", 500)}
	tiny := Document{Name: "c.txt", Text: "ok"}

	// Budget admits a.txt, not b.txt. c.txt would fit, but assembly must
	// stop at the first overflowing block to preserve rank order.
	budget := len("Document: a.txt\nfits") + 40
	got := BuildContext(rankedDocs(small, big, tiny), nil, nil, Options{TotalBudget: budget, SnippetMaxLen: 600})

	if !strings.Contains(got, "a.txt") {
		t.Errorf("a.txt should be included: %q", got)
	}
	if strings.Contains(got, "b.txt") {
		t.Errorf("b.txt should be omitted entirely, not truncated: %q", got)
	}
	if strings.Contains(got, "c.txt") {
		t.Errorf("c.txt must not pre-empt b.txt: %q", got)
	}
}

func TestBuildContextOrderFollowsRank(t *testing.T) {
	ranked := rankedDocs(
		Document{Name: "first.txt", Text: "claim details"},
		Document{Name: "second.txt", Text: "claim details"},
	)
	got := BuildContext(ranked, []string{"claim"}, nil, Options{})
	if strings.Index(got, "first.txt") > strings.Index(got, "second.txt") {
		t.Errorf("blocks out of rank order: %q", got)
	}
}

func TestBuildContextEmptyInput(t *testing.T) {
	if got := BuildContext(nil, nil, nil, Options{}); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestEndToEndClaimScenario(t *testing.T) {
	docs := []Document{
		{
			Name:     "Pulse Claims Guide.txt",
			Text:     "To create a new claim in Pulse, open the Claims tab and click New Claim...",
			Priority: 1,
		},
		{
			Name:     "Phone System Setup.txt",
			Text:     "To log into the phone system, dial extension 100...",
			Priority: 2,
		},
	}

	tokens, bigrams := Tokenize("How do I create a new claim in Pulse")

	for _, want := range []string{"how", "create", "new", "claim", "pulse"} {
		found := false
		for _, tok := range tokens {
			if tok == want {
				found = true
			}
		}
		if !found {
			t.Errorf("token %q missing from %v", want, tokens)
		}
	}

	ranked := Rank(docs, tokens, bigrams, Options{})
	if ranked[0].Document.Name != "Pulse Claims Guide.txt" {
		t.Fatalf("top document: got %q", ranked[0].Document.Name)
	}

	ctx := BuildContext(ranked, tokens, bigrams, Options{})
	if strings.Count(ctx, "Document: Pulse Claims Guide.txt") != 1 {
		t.Errorf("expected exactly one claims guide block:\n%s", ctx)
	}
	if !strings.Contains(ctx, "[excerpt around 'new claim']") {
		t.Errorf("snippet should center on the first bigram hit:\n%s", ctx)
	}
	if phoneIdx := strings.Index(ctx, "Phone System Setup.txt"); phoneIdx >= 0 {
		if phoneIdx < strings.Index(ctx, "Pulse Claims Guide.txt") {
			t.Errorf("claims guide must rank above the phone document:\n%s", ctx)
		}
	}
}
