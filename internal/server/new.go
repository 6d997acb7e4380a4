package server

import (
	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/history"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/output"
	"github.com/nguyentantai21042004/transcript-flow/internal/pipeline"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
)

// Deps are the server's collaborators. History may be nil, which turns
// the run endpoints into 503s; Output may be nil to skip writing files
// for API runs.
type Deps struct {
	Pipeline pipeline.Pipeline
	History  history.Store
	Tracker  *progress.Tracker
	Output   output.Writer
}

type implServer struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
}

// New creates a Server instance.
func New(cfg *config.Config, deps Deps, log logger.Logger) Server {
	if deps.Tracker == nil {
		deps.Tracker = progress.NewTracker()
	}
	return &implServer{
		cfg:    cfg,
		deps:   deps,
		logger: log,
	}
}
