package llm

import (
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty model response")

// ErrClosed is returned when a session is used after Close.
var ErrClosed = errors.New("llm session is closed")

var throttleMarkers = []string{
	"429",
	"rate limit",
	"token rate limit",
	"too many requests",
	"quota",
	"resource_exhausted",
}

// IsThrottled reports whether err looks like a rate-limit rejection. Only
// these errors are worth retrying with backoff; anything else surfaces
// immediately.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range throttleMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
