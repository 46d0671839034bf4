package llm

import (
	"context"
	"errors"
)

// Client abstracts hosted completion providers.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one system+user exchange sent to a provider.
type CompletionRequest struct {
	System      string
	User        string
	Model       string // overrides the client default when set
	MaxTokens   int
	Temperature float32
	// JSONMode asks the provider for native JSON output when it supports it.
	JSONMode bool
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is used when no provider credentials are available.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
