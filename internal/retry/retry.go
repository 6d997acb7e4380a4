// Package retry centralizes throttling-aware retry with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 60 * time.Second
)

// ErrExhausted is returned once the retry budget is spent. The last
// underlying error stays reachable through errors.Is / errors.Unwrap.
var ErrExhausted = errors.New("retry budget exhausted")

// Config holds retry settings.
type Config struct {
	MaxRetries  int
	BaseDelay   time.Duration
	IsRetryable func(error) bool
	// Sleep is the wait primitive; tests swap it to observe delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.IsRetryable == nil {
		c.IsRetryable = llm.IsThrottled
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
	return c
}

// Handler retries throttled operations and keeps a cumulative retry count
// for the whole run. Safe for concurrent use.
type Handler struct {
	cfg     Config
	retries atomic.Int64
	logger  logger.Logger
}

// New creates a Handler with defaults filled in.
func New(cfg Config, log logger.Logger) *Handler {
	return &Handler{
		cfg:    cfg.withDefaults(),
		logger: log,
	}
}

// Do runs op, sleeping BaseDelay * 2^attempt between throttled attempts.
// Non-retryable errors surface immediately. After MaxRetries retries the
// call fails with ErrExhausted wrapping the last error.
func (h *Handler) Do(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= h.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = op(); lastErr == nil {
			return nil
		}
		if !h.cfg.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == h.cfg.MaxRetries {
			break
		}

		delay := h.backoffDelay(attempt)
		h.retries.Add(1)
		h.logger.Warn(ctx, "throttled, retry %d/%d in %s: %v", attempt+1, h.cfg.MaxRetries, delay, lastErr)

		if err := h.cfg.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, h.cfg.MaxRetries+1, lastErr)
}

// Retries returns the cumulative number of retries performed so far.
func (h *Handler) Retries() int64 {
	return h.retries.Load()
}

func (h *Handler) backoffDelay(attempt int) time.Duration {
	// Shift cap keeps the duration from overflowing with absurd budgets.
	return h.cfg.BaseDelay << min(attempt, 20)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
