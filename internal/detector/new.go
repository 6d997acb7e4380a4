package detector

import (
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

type implDetector struct {
	logger logger.Logger
}

// New creates a new Detector instance
func New(log logger.Logger) Detector {
	return &implDetector{
		logger: log,
	}
}
