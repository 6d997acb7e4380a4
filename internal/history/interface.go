package history

import (
	"context"
	"errors"
	"time"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one processing run's persisted record. Failed runs are stored
// too, so the history shows what went wrong and when.
type Run struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	Format         string    `json:"format"`
	Method         string    `json:"method"`
	AgentUsed      string    `json:"agent_used"`
	SourceWords    int       `json:"source_words"`
	Segments       int       `json:"segments"`
	FailedSegments int       `json:"failed_segments"`
	Questions      int       `json:"questions"`
	Retries        int       `json:"retries"`
	Fidelity       float64   `json:"fidelity"`
	Hallucination  float64   `json:"hallucination"`
	DurationMS     int64     `json:"duration_ms"`
	OutputPath     string    `json:"output_path"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Stats aggregates the run history.
type Stats struct {
	TotalRuns      int     `json:"total_runs"`
	Completed      int     `json:"completed"`
	Failed         int     `json:"failed"`
	TotalSegments  int     `json:"total_segments"`
	TotalQuestions int     `json:"total_questions"`
	TotalRetries   int     `json:"total_retries"`
	AvgDurationMS  float64 `json:"avg_duration_ms"`
	AvgFidelity    float64 `json:"avg_fidelity"`
}

// Store persists run records.
type Store interface {
	// SaveRun inserts a run, assigning ID and CreatedAt when unset.
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
