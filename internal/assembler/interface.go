package assembler

import (
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
)

// Input carries everything the final document needs. Processed results
// are matched to segments by SegmentID, so partial failures still
// assemble with the raw text preserved.
type Input struct {
	Title         string
	Source        string
	GeneratedAt   time.Time
	Method        string
	AgentUsed     string
	SourceWords   int
	ReferenceDocs []string
	Segments      []segmenter.Segment
	Processed     []agents.Result
}

// Assembler renders processed segments into final documents.
type Assembler interface {
	// Build renders the markdown document: header, table of contents,
	// one section per segment with its questions inline, and a footer.
	Build(in Input) string
	// WriteDocx converts a markdown document to a styled .docx file.
	WriteDocx(title, markdown, outputPath string) error
}
