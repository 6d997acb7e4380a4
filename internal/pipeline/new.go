package pipeline

import (
	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/assembler"
	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/detector"
	"github.com/nguyentantai21042004/transcript-flow/internal/history"
	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
)

// Deps are the pipeline's collaborators. History may be nil to disable
// run persistence; LLM may be nil only for dry runs.
type Deps struct {
	Detector  detector.Detector
	Segmenter segmenter.Segmenter
	Registry  *agents.Registry
	LLM       llm.Factory
	Assembler assembler.Assembler
	History   history.Store
}

type implPipeline struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
}

// New creates a Pipeline instance.
func New(cfg *config.Config, deps Deps, log logger.Logger) Pipeline {
	return &implPipeline{
		cfg:    cfg,
		deps:   deps,
		logger: log,
	}
}
