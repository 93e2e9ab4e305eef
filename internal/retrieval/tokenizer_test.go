package retrieval

import (
	"reflect"
	"testing"
)

func TestTokenizeBasic(t *testing.T) {
	tokens, bigrams := Tokenize("How do I create a new claim in Pulse")

	wantTokens := []string{"how", "create", "new", "claim", "pulse"}
	if !reflect.DeepEqual(tokens, wantTokens) {
		t.Errorf("tokens: got %v, want %v", tokens, wantTokens)
	}

	// Only "new" and "claim" are adjacent and both pass the length filter.
	wantBigrams := []string{"new claim"}
	if !reflect.DeepEqual(bigrams, wantBigrams) {
		t.Errorf("bigrams: got %v, want %v", bigrams, wantBigrams)
	}
}

func TestTokenizeLengthFilter(t *testing.T) {
	tokens, bigrams := Tokenize("to be or not to be")

	// Every word but "not" is under three characters.
	if !reflect.DeepEqual(tokens, []string{"not"}) {
		t.Errorf("tokens: got %v, want [not]", tokens)
	}
	if len(bigrams) != 0 {
		t.Errorf("bigrams: got %v, want none", bigrams)
	}

	for _, tok := range tokens {
		if len(tok) < 3 {
			t.Errorf("token %q shorter than 3 characters", tok)
		}
	}
}

func TestTokenizePunctuationAndCase(t *testing.T) {
	tokens, _ := Tokenize(`"Phone" system: setup?`)
	want := []string{"phone", "system", "setup"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens: got %v, want %v", tokens, want)
	}
}

func TestTokenizeDeduplicates(t *testing.T) {
	tokens, bigrams := Tokenize("claim claim claim form claim form")
	if !reflect.DeepEqual(tokens, []string{"claim", "form"}) {
		t.Errorf("tokens: got %v", tokens)
	}
	want := []string{"claim claim", "claim form", "form claim"}
	if !reflect.DeepEqual(bigrams, want) {
		t.Errorf("bigrams: got %v, want %v", bigrams, want)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	tokens, bigrams := Tokenize("")
	if len(tokens) != 0 || len(bigrams) != 0 {
		t.Errorf("expected empty results, got tokens=%v bigrams=%v", tokens, bigrams)
	}

	tokens, bigrams = Tokenize("a b c")
	if len(tokens) != 0 || len(bigrams) != 0 {
		t.Errorf("all-short input: got tokens=%v bigrams=%v", tokens, bigrams)
	}
}

func TestTokenizePure(t *testing.T) {
	inputs := []string{
		"How do I create a new claim in Pulse",
		"",
		"to be or not to be",
		"reset my password please!!!",
	}
	for _, in := range inputs {
		t1, b1 := Tokenize(in)
		t2, b2 := Tokenize(in)
		if !reflect.DeepEqual(t1, t2) || !reflect.DeepEqual(b1, b2) {
			t.Errorf("Tokenize(%q) not deterministic", in)
		}
	}
}
