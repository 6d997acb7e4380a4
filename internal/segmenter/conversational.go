package segmenter

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/internal/transcript"
)

// Conversational groups diarized turns into segments. A turn is never
// split across segments, so a single oversized turn becomes its own
// segment. Word ranges cover the concatenated turn word stream.
func (s *implSegmenter) Conversational(ctx context.Context, content string) ([]Segment, string) {
	turns := transcript.ParseTurns(content)
	if len(turns) == 0 {
		s.logger.Warn(ctx, "no speaker turns found, using standard segmentation")
		return s.Segment(ctx, content)
	}

	groups := s.groupTurns(turns)
	segments := make([]Segment, 0, len(groups))
	start := 0
	for i, g := range groups {
		words := groupWords(g.turns)
		end := start + len(words)
		segments = append(segments, Segment{
			ID:        i + 1,
			Text:      renderTurns(g.turns),
			WordRange: [2]int{start, end},
			Metadata: Metadata{
				Topic:          inferTopic(words),
				Keywords:       topKeywords(words, 5),
				SectionType:    "discussion",
				TransitionType: g.reason,
				Participants:   transcript.Participants(g.turns),
				StartTime:      firstTimestamp(g.turns),
				EndTime:        lastTimestamp(g.turns),
				Decisions:      extractCues(g.turns, decisionCues),
				ActionItems:    extractCues(g.turns, actionCues),
			},
		})
		start = end
	}

	s.logger.Debug(ctx, "conversational segmentation: %d turns into %d segments", len(turns), len(segments))
	return segments, MethodConversational
}

type turnGroup struct {
	turns  []transcript.Turn
	words  int
	reason string
}

// groupTurns closes a group when adding the next turn would blow the size
// cap, or when the group already has enough words and the next turn opens
// a new topic or follows a completed exchange.
func (s *implSegmenter) groupTurns(turns []transcript.Turn) []turnGroup {
	var groups []turnGroup
	var cur turnGroup

	flush := func(reason string) {
		if len(cur.turns) == 0 {
			return
		}
		cur.reason = reason
		groups = append(groups, cur)
		cur = turnGroup{}
	}

	for _, t := range turns {
		if cur.words > 0 {
			switch {
			case cur.words+t.WordCount > s.opts.ConvMaxWords:
				flush("natural_break")
			case cur.words >= s.opts.ConvMinWords && opensTransition(t.Text):
				flush("topic_change")
			case cur.words >= s.opts.ConvMinWords && exchangeBreak(cur.turns, t):
				flush("speaker_change")
			}
		}
		cur.turns = append(cur.turns, t)
		cur.words += t.WordCount
	}
	flush("section_end")

	return groups
}

// exchangeBreak reports whether next starts a fresh exchange: either a
// question just got a short answer, or next's speaker has not spoken in
// the last few turns.
func exchangeBreak(cur []transcript.Turn, next transcript.Turn) bool {
	n := len(cur)
	if n >= 2 {
		q := strings.TrimSpace(cur[n-2].Text)
		if strings.HasSuffix(q, "?") && cur[n-1].WordCount <= 4 {
			return true
		}
	}

	recent := cur
	if n > 3 {
		recent = cur[n-3:]
	}
	for _, t := range recent {
		if t.Speaker == next.Speaker {
			return false
		}
	}
	return true
}

var transitionOpeners = []string{
	"okay so", "alright", "moving on", "next topic", "next item",
	"let's talk", "let's move", "switching to", "one more thing",
	"before we wrap", "last thing", "any other",
	"bueno", "pasemos a", "siguiente tema", "otra cosa",
}

func opensTransition(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, p := range transitionOpeners {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

func renderTurns(turns []transcript.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Timestamp != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s: %s", t.Timestamp, t.Speaker, t.Text))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", t.Speaker, t.Text))
	}
	return strings.Join(lines, "\n")
}

func groupWords(turns []transcript.Turn) []string {
	var words []string
	for _, t := range turns {
		words = append(words, transcript.Words(t.Text)...)
	}
	return words
}

func firstTimestamp(turns []transcript.Turn) string {
	for _, t := range turns {
		if t.Timestamp != "" {
			return t.Timestamp
		}
	}
	return ""
}

func lastTimestamp(turns []transcript.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Timestamp != "" {
			return turns[i].Timestamp
		}
	}
	return ""
}

var decisionCues = []string{
	"we decided", "decided to", "we agreed", "agreed to", "the decision",
	"let's go with", "we'll go with", "approved",
}

var actionCues = []string{
	"action item", "will follow up", "follow up on", "i will ", "i'll ",
	"needs to ", "due by", "by next week", "by end of",
}

// extractCues pulls sentences that sound like decisions or action items.
// This is a cheap heuristic pass; the meeting agent produces the
// authoritative lists.
func extractCues(turns []transcript.Turn, cues []string) []string {
	const maxCues = 5
	var out []string
	for _, t := range turns {
		for _, sentence := range splitSentences(t.Text) {
			low := strings.ToLower(sentence)
			for _, cue := range cues {
				if strings.Contains(low, cue) {
					out = append(out, sentence)
					break
				}
			}
			if len(out) >= maxCues {
				return out
			}
		}
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		switch r {
		case '.', '!', '?':
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
