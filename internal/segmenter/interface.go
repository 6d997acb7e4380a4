package segmenter

import (
	"context"
	"fmt"
)

// Segmentation methods reported in run stats.
const (
	MethodAI             = "intelligent_ai"
	MethodProgrammatic   = "programmatic"
	MethodConversational = "conversational"
)

// Metadata describes a segment beyond its raw text. Fields are filled in
// opportunistically: the AI plan supplies most of them for linear content,
// the conversational path fills the speaker-related ones.
type Metadata struct {
	Topic          string
	Keywords       []string
	KeyConcepts    []string
	SectionType    string
	TransitionType string
	Participants   []string
	StartTime      string
	EndTime        string
	Decisions      []string
	ActionItems    []string
}

// Segment is one semantically coherent slice of the input. WordRange is a
// half-open [start, end) interval over the tokenized input words; the
// word ranges of a segmentation partition the whole input.
type Segment struct {
	ID        int
	Text      string
	WordRange [2]int
	Metadata  Metadata
}

// WordCount returns the number of words covered by the segment.
func (s Segment) WordCount() int {
	return s.WordRange[1] - s.WordRange[0]
}

// Segmenter splits transcripts into processable segments.
type Segmenter interface {
	// Segment picks a strategy for linear content: AI planning for long
	// inputs when a model is available, programmatic otherwise. The
	// returned method names the strategy that actually ran.
	Segment(ctx context.Context, content string) ([]Segment, string)
	// Conversational groups diarized speaker turns without ever splitting
	// a turn across segments.
	Conversational(ctx context.Context, content string) ([]Segment, string)
}

// ValidateCoverage checks that segments form an in-order, gap-free,
// non-overlapping partition of [0, totalWords).
func ValidateCoverage(segments []Segment, totalWords int) error {
	if len(segments) == 0 {
		if totalWords == 0 {
			return nil
		}
		return fmt.Errorf("no segments cover %d words", totalWords)
	}

	expect := 0
	for i, seg := range segments {
		if seg.ID != i+1 {
			return fmt.Errorf("segment %d has id %d, want %d", i, seg.ID, i+1)
		}
		if seg.WordRange[0] != expect {
			return fmt.Errorf("segment %d starts at word %d, want %d", seg.ID, seg.WordRange[0], expect)
		}
		if seg.WordRange[1] <= seg.WordRange[0] {
			return fmt.Errorf("segment %d has empty range [%d, %d)", seg.ID, seg.WordRange[0], seg.WordRange[1])
		}
		expect = seg.WordRange[1]
	}
	if expect != totalWords {
		return fmt.Errorf("segments cover %d words, want %d", expect, totalWords)
	}
	return nil
}
