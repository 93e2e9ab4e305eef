package llm

import "context"

// StreamFunc receives incremental content deltas during a streamed
// completion. Returning an error aborts the stream.
type StreamFunc func(delta string) error

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Stream sends a completion request and delivers content deltas to fn
	// as they arrive, returning the accumulated response at the end.
	Stream(ctx context.Context, req CompletionRequest, fn StreamFunc) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
