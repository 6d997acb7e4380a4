package segmenter

import (
	"sync/atomic"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/embedding"
	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

type implSegmenter struct {
	opts     config.SegmentationConfig
	llm      llm.Factory
	embedder embedding.Embedder
	logger   logger.Logger

	// Set on the first embedding failure so one outage does not stall
	// every later boundary decision.
	embedDown atomic.Bool
}

// New creates a Segmenter. A nil llm factory disables AI planning, a nil
// embedder disables similarity-refined boundaries; both fall back to the
// deterministic programmatic path.
func New(opts config.SegmentationConfig, llmFactory llm.Factory, embedder embedding.Embedder, log logger.Logger) Segmenter {
	return &implSegmenter{
		opts:     opts,
		llm:      llmFactory,
		embedder: embedder,
		logger:   log,
	}
}
