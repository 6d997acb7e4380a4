package segmenter

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
)

const planPrompt = `You are a content segmentation planner. Analyze the transcript below and produce a segmentation plan as a JSON object.

The transcript has exactly %d words, counted by splitting on whitespace. Word positions are 0-based indexes into that word sequence.

Requirements:
- Split the content into %d to %d segments of roughly %d words each, cutting only where the subject naturally changes
- Segments must cover every word exactly once: the first segment starts at 0, each segment starts where the previous one ended, and the last segment ends at %d
- Respond with ONLY the JSON object, no commentary before or after

JSON schema:
{
  "total_words": %d,
  "recommended_segments": <number of segments>,
  "segments": [
    {
      "id": 1,
      "start_word": 0,
      "end_word": <exclusive end index>,
      "word_count": <end_word minus start_word>,
      "topic": "<short topic name>",
      "keywords": ["<up to 5 keywords>"],
      "section_type": "<introduction|main_content|example|conclusion|transition>",
      "key_concepts": ["<up to 3 concepts>"],
      "transition_type": "<natural_break|topic_change|speaker_change|section_end>"
    }
  ],
  "format_detected": "<what kind of content this is>",
  "recommended_agent": "<linear_content or meeting_minutes>"
}

Transcript:
---
%s
---`

// planWithModel asks the model for a cut plan over the word sequence and
// slices the original words by the validated ranges. Model text is never
// used as segment content.
func (s *implSegmenter) planWithModel(ctx context.Context, content string, words []string) ([]Segment, error) {
	client, err := s.llm(ctx)
	if err != nil {
		return nil, fmt.Errorf("create planning session: %w", err)
	}
	defer client.Close()

	total := len(words)
	segLo := (total + s.opts.MaxWords - 1) / s.opts.MaxWords
	segHi := total / s.opts.MinWords
	if segHi < segLo {
		segHi = segLo
	}

	prompt := fmt.Sprintf(planPrompt, total, segLo, segHi, s.opts.TargetWords, total, total, content)
	raw, err := client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   8192,
	})
	if err != nil {
		return nil, fmt.Errorf("plan request: %w", err)
	}

	plan, err := ParsePlan(raw, total)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "plan detected %q content, recommends %q", plan.FormatDetected, plan.RecommendedAgent)
	return planToSegments(plan, words), nil
}

func planToSegments(plan *SegmentationPlan, words []string) []Segment {
	segments := make([]Segment, 0, len(plan.Segments))
	for _, ps := range plan.Segments {
		slice := words[ps.StartWord:ps.EndWord]
		seg := Segment{
			ID:        ps.ID,
			Text:      strings.Join(slice, " "),
			WordRange: [2]int{ps.StartWord, ps.EndWord},
			Metadata: Metadata{
				Topic:          ps.Topic,
				Keywords:       ps.Keywords,
				KeyConcepts:    ps.KeyConcepts,
				SectionType:    ps.SectionType,
				TransitionType: ps.TransitionType,
			},
		}
		if seg.Metadata.Topic == "" {
			seg.Metadata.Topic = inferTopic(slice)
		}
		if len(seg.Metadata.Keywords) == 0 {
			seg.Metadata.Keywords = topKeywords(slice, 5)
		}
		segments = append(segments, seg)
	}
	return segments
}
