package server

import "context"

// Server exposes the pipeline over HTTP: a small JSON API for submitting
// transcripts and reading run history, plus a websocket feed with live
// per-run progress. Runs execute asynchronously; clients poll the run or
// follow the websocket.
type Server interface {
	// Run serves until ctx is cancelled, then shuts down gracefully.
	Run(ctx context.Context) error
}
