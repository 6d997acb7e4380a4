package transcript

import (
	"regexp"
	"strings"
)

var (
	reCueIndex = regexp.MustCompile(`^\d+$`)
	reCueTime  = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s*-->`)
)

// FromSubtitle strips SRT/VTT structure (cue indexes, timing lines, the
// WEBVTT header) and returns plain transcript text. Consecutive duplicate
// cue lines, common with rolling captions, are collapsed.
func FromSubtitle(content string) string {
	var textLines []string
	last := ""

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "WEBVTT" {
			continue
		}
		if reCueIndex.MatchString(trimmed) || reCueTime.MatchString(trimmed) {
			continue
		}
		if trimmed == last {
			continue
		}
		last = trimmed
		textLines = append(textLines, trimmed)
	}

	return strings.Join(textLines, "\n")
}
