package output

import (
	"github.com/nguyentantai21042004/transcript-flow/internal/assembler"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

type implWriter struct {
	format string
	asm    assembler.Assembler
	logger logger.Logger
}

// New creates a Writer for the given output format (markdown, docx or
// both).
func New(format string, asm assembler.Assembler, log logger.Logger) Writer {
	return &implWriter{
		format: format,
		asm:    asm,
		logger: log,
	}
}
