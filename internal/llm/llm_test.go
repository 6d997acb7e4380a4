package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

func TestIsThrottled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"http 429", errors.New("googleapi: Error 429: too many requests"), true},
		{"quota message", errors.New("quota exceeded for project"), true},
		{"resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), true},
		{"rate limit phrasing", errors.New("exceeded token rate limit for model"), true},
		{"wrapped throttle", fmt.Errorf("generate content: %w", errors.New("429 slow down")), true},
		{"auth failure", errors.New("API key not valid"), false},
		{"transport failure", errors.New("connection refused"), false},
		{"server error", errors.New("googleapi: Error 500: internal"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsThrottled(tt.err); got != tt.want {
				t.Errorf("IsThrottled(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKeyRingRotation(t *testing.T) {
	ring := &keyRing{keys: []string{"a", "b", "c"}}

	key, idx := ring.pick()
	if key != "a" || idx != 0 {
		t.Fatalf("pick() = %q, %d", key, idx)
	}

	ring.rotate()
	if key, _ := ring.pick(); key != "b" {
		t.Errorf("after rotate pick() = %q, want b", key)
	}

	// Wraps around
	ring.rotate()
	ring.rotate()
	if key, _ := ring.pick(); key != "a" {
		t.Errorf("after full cycle pick() = %q, want a", key)
	}
}

func TestNewGeminiFactory(t *testing.T) {
	if _, err := NewGeminiFactory(nil, "gemini-2.5-flash", time.Minute, logger.Nop()); err == nil {
		t.Error("NewGeminiFactory() with no keys should fail")
	}

	factory, err := NewGeminiFactory([]string{"k1"}, "gemini-2.5-flash", time.Minute, logger.Nop())
	if err != nil {
		t.Fatalf("NewGeminiFactory() error = %v", err)
	}

	client, err := factory(context.Background())
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	if client == nil {
		t.Fatal("factory() returned nil client")
	}
}

func TestSessionRejectsUseAfterClose(t *testing.T) {
	factory, err := NewGeminiFactory([]string{"k1"}, "gemini-2.5-flash", time.Minute, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}

	client, err := factory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Generate() after Close = %v, want ErrClosed", err)
	}
}

func TestSessionsShareKeyRing(t *testing.T) {
	factory, err := NewGeminiFactory([]string{"k1", "k2"}, "gemini-2.5-flash", time.Minute, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}

	a, _ := factory(context.Background())
	b, _ := factory(context.Background())

	ringA := a.(*implGemini).ring
	ringB := b.(*implGemini).ring
	if ringA != ringB {
		t.Error("sessions from one factory must share the key ring")
	}
}
