package retrieval

import (
	"strings"
	"testing"
)

func TestSnippetEmptyText(t *testing.T) {
	if got := Snippet("", []string{"claim"}, nil, 100, 50); got != "" {
		t.Errorf("expected empty snippet for empty text, got %q", got)
	}
}

func TestSnippetHeadFallback(t *testing.T) {
	text := strings.Repeat("nothing relevant here. ", 50)
	got := Snippet(text, []string{"claim"}, []string{"new claim"}, 100, 50)
	if got != text[:100] {
		t.Errorf("head fallback: got %q, want first 100 chars", got)
	}
}

func TestSnippetHeadFallbackShortText(t *testing.T) {
	text := "short document"
	got := Snippet(text, []string{"claim"}, nil, 100, 50)
	if got != text {
		t.Errorf("got %q, want full text", got)
	}
}

func TestSnippetBigramBeatsToken(t *testing.T) {
	text := "The claim process: to file a new claim, open the Claims tab."
	got := Snippet(text, []string{"claim"}, []string{"new claim"}, 500, 20)
	if !strings.Contains(got, "[excerpt around 'new claim']") {
		t.Errorf("expected window centered on the bigram, got %q", got)
	}
}

func TestSnippetTokenWhenNoBigram(t *testing.T) {
	text := "Dial extension 100 to reach the phone system."
	got := Snippet(text, []string{"extension"}, []string{"claim form"}, 500, 10)
	if !strings.Contains(got, "[excerpt around 'extension']") {
		t.Errorf("expected window centered on the token, got %q", got)
	}
}

func TestSnippetOriginalCasePreserved(t *testing.T) {
	text := "Open the Claims tab and click New Claim."
	got := Snippet(text, []string{"claims"}, nil, 500, 100)
	if !strings.Contains(got, "Claims tab") {
		t.Errorf("slice should come from the original-case text, got %q", got)
	}
}

func TestSnippetNeverExceedsMaxLen(t *testing.T) {
	text := strings.Repeat("the claim process is documented here. ", 200)
	for _, maxLen := range []int{10, 50, 100, 2000, 8000} {
		got := Snippet(text, []string{"claim"}, []string{"claim process"}, maxLen, 1400)
		if len(got) > maxLen {
			t.Errorf("maxLen %d: snippet length %d exceeds cap", maxLen, len(got))
		}
	}
}

func TestSnippetWindowClampedToBounds(t *testing.T) {
	text := "claim at the very start"
	got := Snippet(text, []string{"claim"}, nil, 500, 1000)
	if !strings.HasSuffix(got, text) {
		t.Errorf("window should clamp to text bounds, got %q", got)
	}
}

func TestSnippetTermOrderWins(t *testing.T) {
	// "phone" occurs later in the text than "claim", but comes first in
	// the token set, so the window centers on it.
	text := "the claim desk is next to the phone desk"
	got := Snippet(text, []string{"phone", "claim"}, nil, 500, 5)
	if !strings.Contains(got, "[excerpt around 'phone']") {
		t.Errorf("expected first term in set order to win, got %q", got)
	}
}
