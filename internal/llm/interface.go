package llm

import "context"

// Request describes one text-generation call.
type Request struct {
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// Client is a short-lived generation session. The executor opens one per
// segment and closes it when the segment is done, so nothing carries over
// between segments.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// Factory builds a fresh Client for one segment.
type Factory func(ctx context.Context) (Client, error)
