package detector

import (
	"context"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/internal/transcript"
)

var meetingVocabulary = []string{
	"agenda", "minutes", "action item", "follow up", "follow-up", "decision",
	"agreed", "we agree", "next steps", "attendees", "postpone", "deadline",
	"assigned", "acta", "reunión", "acuerdo", "pendiente", "tarea",
}

var lectureVocabulary = []string{
	"lecture", "today we", "in this session", "chapter", "slide", "course",
	"we will cover", "definition", "theorem", "for example", "exercise",
	"homework", "clase", "tema", "capítulo", "por ejemplo",
}

var (
	reDirectedQuestion = regexp.MustCompile(`\b[A-Z][a-z]+[,:]?\s+(what|how|why|can|could|would|will|do|does|are|is|qué|cómo)\b`)
	reEnumeration      = regexp.MustCompile(`(?i)\b(first(ly)?|second(ly)?|third|finally|in conclusion|to summarize|moving on|primero|segundo|finalmente)\b`)
	reSentenceEnd      = regexp.MustCompile(`[.!?]+`)
)

// Detect scores the content against meeting and linear heuristics and
// returns the stronger classification. Weak evidence on both sides falls
// back to linear content at half confidence, which keeps short or messy
// inputs on the simpler processing path.
func (d *implDetector) Detect(content string) Result {
	ctx := context.Background()

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{Format: FormatLinear, Confidence: 0.2}
	}

	turns := transcript.ParseTurns(trimmed)
	participants := transcript.Participants(turns)
	lower := strings.ToLower(trimmed)

	meetingScore := d.scoreMeeting(trimmed, lower, turns, participants)
	linearScore := d.scoreLinear(trimmed, lower, len(turns))

	d.logger.Debug(ctx, "format scores: meeting=%.2f linear=%.2f participants=%d",
		meetingScore, linearScore, len(participants))

	if meetingScore > linearScore && meetingScore >= 0.3 {
		return Result{Format: FormatMeeting, Confidence: meetingScore, Participants: participants}
	}
	if linearScore >= 0.3 {
		return Result{Format: FormatLinear, Confidence: linearScore, Participants: participants}
	}
	return Result{Format: FormatLinear, Confidence: 0.5, Participants: participants}
}

func (d *implDetector) scoreMeeting(content, lower string, turns []transcript.Turn, participants []string) float64 {
	score := 0.0

	timed := false
	for _, t := range turns {
		if t.Timestamp != "" {
			timed = true
			break
		}
	}
	if timed {
		score += 0.6
	}

	switch {
	case len(participants) >= 3:
		score += 0.4
	case len(participants) == 2:
		score += 0.2
	}

	vocab := 0.0
	for _, word := range meetingVocabulary {
		vocab += 0.05 * float64(strings.Count(lower, word))
	}
	score += min(vocab, 0.3)

	if strings.Count(content, "...")+strings.Count(content, "--") >= 2 {
		score += 0.1
	}
	if reDirectedQuestion.MatchString(content) {
		score += 0.1
	}

	return min(score, 1.0)
}

func (d *implDetector) scoreLinear(content, lower string, turnCount int) float64 {
	score := 0.0

	if turnCount == 0 {
		score += 0.4
	}

	vocab := 0.0
	for _, word := range lectureVocabulary {
		vocab += 0.05 * float64(strings.Count(lower, word))
	}
	score += min(vocab, 0.3)

	if len(reEnumeration.FindAllString(content, -1)) >= 2 {
		score += 0.2
	}
	if flowingProse(content) {
		score += 0.1
	}

	return min(score, 1.0)
}

// flowingProse reports whether sentences average out to written-paragraph
// length, which separates narrated content from choppy dialogue.
func flowingProse(content string) bool {
	sentences := reSentenceEnd.Split(content, -1)
	count := 0
	words := 0
	for _, s := range sentences {
		n := transcript.CountWords(s)
		if n == 0 {
			continue
		}
		count++
		words += n
	}
	if count == 0 {
		return false
	}
	avg := float64(words) / float64(count)
	return avg >= 12 && avg <= 35
}
