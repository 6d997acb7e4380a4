package pipeline

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
	"github.com/nguyentantai21042004/transcript-flow/internal/verify"
)

// Request describes one transcript to process.
type Request struct {
	// RunID, when set, names the run instead of a generated identifier.
	// The HTTP API assigns it up front so clients can subscribe to
	// progress before processing starts.
	RunID string
	// Source is the display name, usually the input file name. It also
	// decides subtitle stripping for .srt and .vtt inputs.
	Source string
	// Content is the raw transcript text.
	Content string
	// ReferenceDocs are paths to supporting material included as prompt
	// context.
	ReferenceDocs []string
	// AgentOverride forces a chain (linear or meeting) instead of the
	// detector's routing.
	AgentOverride string
	// DryRun stops after segmentation: no model calls run on the
	// segments and no document is produced.
	DryRun bool
	// Progress, when set, receives stage events during the run.
	Progress func(progress.Event)
}

// RunStats summarizes a completed run.
type RunStats struct {
	RunID          string        `json:"run_id"`
	SourceWords    int           `json:"source_words"`
	Segments       int           `json:"segments"`
	FailedSegments int           `json:"failed_segments"`
	Questions      int           `json:"questions"`
	Retries        int           `json:"retries"`
	Fidelity       float64       `json:"fidelity"`
	Hallucination  float64       `json:"hallucination"`
	Duration       time.Duration `json:"duration"`
}

// Result is everything a run produced.
type Result struct {
	Document         string
	Title            string
	FormatDetected   string
	FormatConfidence float64
	AgentUsed        string
	Method           string
	Segments         []segmenter.Segment
	Processed        []agents.Result
	Verification     verify.Report
	Stats            RunStats
}

// Pipeline processes transcripts end to end: detect, segment, route,
// execute agent chains, assemble, verify.
type Pipeline interface {
	Process(ctx context.Context, req Request) (*Result, error)
}
