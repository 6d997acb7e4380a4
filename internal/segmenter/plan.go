package segmenter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlan marks a model-produced plan that failed extraction or
// validation. Plans are never repaired; callers fall back to the
// programmatic path instead.
var ErrInvalidPlan = errors.New("invalid segmentation plan")

// SegmentationPlan is the JSON contract for AI-planned segmentation.
// Only the word ranges are trusted for slicing; the text itself is always
// re-cut from the original input.
type SegmentationPlan struct {
	TotalWords          int           `json:"total_words"`
	RecommendedSegments int           `json:"recommended_segments"`
	Segments            []PlanSegment `json:"segments"`
	FormatDetected      string        `json:"format_detected"`
	RecommendedAgent    string        `json:"recommended_agent"`
}

// PlanSegment is one planned cut. StartWord/EndWord form a half-open
// interval over the 0-based word sequence.
type PlanSegment struct {
	ID             int      `json:"id"`
	StartWord      int      `json:"start_word"`
	EndWord        int      `json:"end_word"`
	WordCount      int      `json:"word_count"`
	Topic          string   `json:"topic"`
	Keywords       []string `json:"keywords"`
	SectionType    string   `json:"section_type"`
	KeyConcepts    []string `json:"key_concepts"`
	TransitionType string   `json:"transition_type"`
}

// ParsePlan extracts and validates a plan from raw model output.
func ParsePlan(raw string, totalWords int) (*SegmentationPlan, error) {
	jsonText, err := extractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	var plan SegmentationPlan
	if err := json.Unmarshal([]byte(jsonText), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := plan.Validate(totalWords); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks that the plan partitions exactly [0, totalWords).
func (p *SegmentationPlan) Validate(totalWords int) error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidPlan)
	}
	if p.TotalWords != totalWords {
		return fmt.Errorf("%w: plan counts %d words, input has %d", ErrInvalidPlan, p.TotalWords, totalWords)
	}

	expect := 0
	for i, seg := range p.Segments {
		if seg.ID != i+1 {
			return fmt.Errorf("%w: segment %d has id %d, want %d", ErrInvalidPlan, i, seg.ID, i+1)
		}
		if seg.StartWord != expect {
			return fmt.Errorf("%w: segment %d starts at word %d, want %d", ErrInvalidPlan, seg.ID, seg.StartWord, expect)
		}
		if seg.EndWord <= seg.StartWord {
			return fmt.Errorf("%w: segment %d has empty range [%d, %d)", ErrInvalidPlan, seg.ID, seg.StartWord, seg.EndWord)
		}
		if seg.WordCount != seg.EndWord-seg.StartWord {
			return fmt.Errorf("%w: segment %d word_count %d does not match range [%d, %d)", ErrInvalidPlan, seg.ID, seg.WordCount, seg.StartWord, seg.EndWord)
		}
		expect = seg.EndWord
	}
	if expect != totalWords {
		return fmt.Errorf("%w: segments cover %d words, want %d", ErrInvalidPlan, expect, totalWords)
	}
	return nil
}

// extractJSON pulls the first balanced JSON object out of model output,
// which may wrap it in markdown fences or prose. Braces inside string
// literals do not count toward balance.
func extractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", errors.New("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", errors.New("unbalanced JSON object in response")
}
