// Package transcript holds the shared text primitives: word tokenization,
// speaker turn parsing and subtitle-format stripping. Every downstream
// component counts and slices words through this package so segment ranges
// always refer to the same token stream.
package transcript

import (
	"regexp"
	"strings"
)

// Turn is one uninterrupted speaker contribution.
type Turn struct {
	Speaker   string
	Timestamp string // HH:MM:SS when the source carries one
	Text      string
	WordCount int
}

// Words tokenizes on whitespace. Word ranges across the codebase are
// indexes into this slice.
func Words(s string) []string {
	return strings.Fields(s)
}

// CountWords returns the number of whitespace-separated tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// Slice joins words[start:end) back into text. Bounds are clamped.
func Slice(words []string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(words) {
		end = len(words)
	}
	if start >= end {
		return ""
	}
	return strings.Join(words[start:end], " ")
}

var (
	// [00:14:32] Maria: we should close that item
	reTimedTurn = regexp.MustCompile(`\[(\d{2}:\d{2}:\d{2})\]\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	// Maria: we should close that item
	rePlainTurn = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*`)
)

// ParseTurns extracts speaker turns. Timestamped turns win when present;
// otherwise plain "Name:" lines at line starts are used. Content with no
// recognizable turns yields nil.
func ParseTurns(content string) []Turn {
	if turns := parseWith(content, reTimedTurn, true); len(turns) > 0 {
		return turns
	}
	return parseWith(content, rePlainTurn, false)
}

func parseWith(content string, re *regexp.Regexp, timed bool) []Turn {
	locs := re.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	turns := make([]Turn, 0, len(locs))
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		var timestamp, speaker string
		if timed {
			timestamp = content[loc[2]:loc[3]]
			speaker = content[loc[4]:loc[5]]
		} else {
			speaker = content[loc[2]:loc[3]]
		}

		text := strings.TrimSpace(content[loc[1]:end])
		if text == "" {
			continue
		}
		turns = append(turns, Turn{
			Speaker:   speaker,
			Timestamp: timestamp,
			Text:      text,
			WordCount: CountWords(text),
		})
	}
	return turns
}

// Participants lists distinct speakers in order of first appearance.
func Participants(turns []Turn) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range turns {
		if t.Speaker == "" || seen[t.Speaker] {
			continue
		}
		seen[t.Speaker] = true
		names = append(names, t.Speaker)
	}
	return names
}
