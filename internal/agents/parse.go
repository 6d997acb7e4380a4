package agents

import (
	"regexp"
	"strings"
)

var (
	reQuestion = regexp.MustCompile(`(?i)^\s*\*{0,2}(?:q|question)\s*\d*\s*[:.\-]\s*(.*)$`)
	reAnswer   = regexp.MustCompile(`(?i)^\s*\*{0,2}(?:a|answer)\s*\d*\s*[:.\-]\s*(.*)$`)
	reQAHead   = regexp.MustCompile(`(?i)^#{0,4}\s*\**\s*(questions?\s*(&|and)\s*answers?|q\s*&\s*a)\b`)
	reTitlePfx = regexp.MustCompile(`(?i)^\s*(title|t[ií]tulo)\s*[:.\-]\s*`)
)

// ParseTitle reduces the titler output to one clean line. Models tend to
// wrap titles in heading marks, quotes or a "Title:" prefix; all of that is
// stripped.
func ParseTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "# ")
		line = reTitlePfx.ReplaceAllString(line, "")
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		return line
	}
	return ""
}

// ParseQA extracts question/answer pairs from lenient "Q: ... / A: ..."
// shaped output. Continuation lines attach to the field being read. Pairs
// missing either side are dropped; zero pairs is a legal result.
func ParseQA(raw string) []QAPair {
	var pairs []QAPair
	var question, answer strings.Builder
	inAnswer := false

	flush := func() {
		q := strings.TrimSpace(question.String())
		a := strings.TrimSpace(answer.String())
		if q != "" && a != "" {
			pairs = append(pairs, QAPair{Question: cleanQA(q), Answer: cleanQA(a)})
		}
		question.Reset()
		answer.Reset()
		inAnswer = false
	}

	for _, line := range strings.Split(raw, "\n") {
		if m := reQuestion.FindStringSubmatch(line); m != nil {
			flush()
			question.WriteString(m[1])
			continue
		}
		if m := reAnswer.FindStringSubmatch(line); m != nil {
			inAnswer = true
			answer.WriteString(m[1])
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if inAnswer {
			answer.WriteString(" ")
			answer.WriteString(trimmed)
		} else if question.Len() > 0 {
			question.WriteString(" ")
			question.WriteString(trimmed)
		}
	}
	flush()

	return pairs
}

func cleanQA(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(s)
}

// SplitQA separates a trailing "Questions & Answers" section from a
// document body. Used for the meeting chain, whose single step emits
// minutes and Q&A together; the pairs are re-rendered per segment by the
// assembler instead of staying buried in the body.
func SplitQA(raw string) (body string, pairs []QAPair) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if reQAHead.MatchString(strings.TrimSpace(line)) {
			body = strings.TrimSpace(strings.Join(lines[:i], "\n"))
			pairs = ParseQA(strings.Join(lines[i+1:], "\n"))
			return body, pairs
		}
	}
	return strings.TrimSpace(raw), nil
}
