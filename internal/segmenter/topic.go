package segmenter

import (
	"sort"
	"strings"
)

var stopwords = map[string]bool{
	// English
	"about": true, "after": true, "again": true, "also": true, "because": true,
	"been": true, "before": true, "being": true, "between": true, "could": true,
	"doing": true, "every": true, "first": true, "from": true, "going": true,
	"have": true, "having": true, "just": true, "like": true, "more": true,
	"other": true, "really": true, "right": true, "should": true, "some": true,
	"something": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "thing": true, "things": true,
	"this": true, "those": true, "very": true, "want": true, "well": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "would": true, "your": true,
	"think": true, "know": true, "okay": true, "yeah": true,
	// Spanish
	"como": true, "cuando": true, "donde": true, "entonces": true, "este": true,
	"esta": true, "esto": true, "hacer": true, "para": true, "pero": true,
	"porque": true, "puede": true, "sobre": true, "también": true, "tiene": true,
	"todo": true, "vamos": true,
}

// inferTopic builds a short topic label from the most frequent significant
// words, joined with " - ". Falls back to a generic label when nothing
// qualifies.
func inferTopic(words []string) string {
	top := topKeywords(words, 3)
	if len(top) == 0 {
		return "General Content"
	}
	return strings.Join(top, " - ")
}

// topKeywords returns up to n significant words by descending frequency,
// ties broken alphabetically so results are stable.
func topKeywords(words []string, n int) []string {
	freq := make(map[string]int)
	for _, w := range words {
		w = normalizeWord(w)
		if len([]rune(w)) <= 4 || stopwords[w] {
			continue
		}
		freq[w]++
	}
	if len(freq) == 0 {
		return nil
	}

	keys := make([]string, 0, len(freq))
	for w := range freq {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func normalizeWord(w string) string {
	return strings.Trim(strings.ToLower(w), `.,;:!?()[]{}"'*-–`)
}
