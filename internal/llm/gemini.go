package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// keyRing rotates through the configured API keys. Rotation state is shared
// by every session built from the same factory, so a throttled key stays
// benched across segments.
type keyRing struct {
	mu      sync.Mutex
	keys    []string
	current int
}

func (r *keyRing) pick() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[r.current], r.current
}

func (r *keyRing) rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = (r.current + 1) % len(r.keys)
}

type implGemini struct {
	ring    *keyRing
	model   string
	timeout time.Duration
	logger  logger.Logger
	closed  bool
}

// NewGeminiFactory returns a Factory producing per-segment Gemini sessions.
// All sessions share one key ring; each Generate call builds its own genai
// client so no conversation state survives between calls.
func NewGeminiFactory(apiKeys []string, model string, timeout time.Duration, log logger.Logger) (Factory, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}

	ring := &keyRing{keys: apiKeys}
	return func(ctx context.Context) (Client, error) {
		return &implGemini{
			ring:    ring,
			model:   model,
			timeout: timeout,
			logger:  log,
		}, nil
	}, nil
}

func (g *implGemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.closed {
		return "", ErrClosed
	}

	key, idx := g.ring.pick()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := client.Models.GenerateContent(callCtx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		if IsThrottled(err) {
			g.logger.Warn(ctx, "API key %d rate limited, rotating", idx+1)
			g.ring.rotate()
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}

	return "", ErrEmptyResponse
}

func (g *implGemini) Close() error {
	g.closed = true
	return nil
}
