// Package verify scores how faithfully processed text preserves its
// source segment. Processing is supposed to restore punctuation and
// structure, not rewrite content, so the source vocabulary should survive
// nearly intact and very little new vocabulary should appear.
package verify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Scores quantify one source/processed pair.
type Scores struct {
	// Retention is the processed-to-source word count ratio.
	Retention float64 `json:"retention"`
	// Fidelity is the share of source content words still present.
	Fidelity float64 `json:"fidelity"`
	// Hallucination is the share of processed content words absent from
	// the source.
	Hallucination float64 `json:"hallucination"`
}

// Thresholds decide when a pair passes verification.
type Thresholds struct {
	MinFidelity      float64
	MaxHallucination float64
}

// DefaultThresholds match the pipeline's acceptance gate.
var DefaultThresholds = Thresholds{MinFidelity: 0.8, MaxHallucination: 0.1}

// Check returns nil when the scores clear the thresholds.
func (t Thresholds) Check(s Scores) error {
	if s.Fidelity < t.MinFidelity {
		return fmt.Errorf("fidelity %.2f below %.2f", s.Fidelity, t.MinFidelity)
	}
	if s.Hallucination > t.MaxHallucination {
		return fmt.Errorf("hallucination %.2f above %.2f", s.Hallucination, t.MaxHallucination)
	}
	return nil
}

// Pair is one segment's source text and its processed output.
type Pair struct {
	ID        int
	Source    string
	Processed string
}

// SegmentReport is the verification outcome for one pair.
type SegmentReport struct {
	SegmentID int    `json:"segment_id"`
	Scores    Scores `json:"scores"`
	Pass      bool   `json:"pass"`
	Reason    string `json:"reason,omitempty"`
}

// Report aggregates per-segment outcomes. Overall scores are weighted by
// source word count.
type Report struct {
	Segments []SegmentReport `json:"segments"`
	Overall  Scores          `json:"overall"`
	Pass     bool            `json:"pass"`
}

// Compare scores a processed text against its source. Markdown structure
// added by formatting does not count as hallucinated content.
func Compare(source, processed string) Scores {
	srcTokens := contentWords(source)
	outTokens := contentWords(stripMarkup(processed))

	srcSet := toSet(srcTokens)
	outSet := toSet(outTokens)

	s := Scores{Retention: 1, Fidelity: 1}
	if len(srcTokens) > 0 {
		s.Retention = float64(len(outTokens)) / float64(len(srcTokens))
	} else if len(outTokens) > 0 {
		s.Hallucination = 1
		return s
	}

	if len(srcSet) > 0 {
		kept := 0
		for w := range srcSet {
			if outSet[w] {
				kept++
			}
		}
		s.Fidelity = float64(kept) / float64(len(srcSet))
	}

	if len(outSet) > 0 {
		novel := 0
		for w := range outSet {
			if !srcSet[w] {
				novel++
			}
		}
		s.Hallucination = float64(novel) / float64(len(outSet))
	}

	return s
}

// Evaluate verifies every pair and aggregates an overall result.
func Evaluate(pairs []Pair, t Thresholds) Report {
	report := Report{Pass: true}

	var totalWeight float64
	for _, p := range pairs {
		scores := Compare(p.Source, p.Processed)
		sr := SegmentReport{SegmentID: p.ID, Scores: scores, Pass: true}
		if err := t.Check(scores); err != nil {
			sr.Pass = false
			sr.Reason = err.Error()
			report.Pass = false
		}
		report.Segments = append(report.Segments, sr)

		weight := float64(len(contentWords(p.Source)))
		if weight == 0 {
			weight = 1
		}
		report.Overall.Retention += scores.Retention * weight
		report.Overall.Fidelity += scores.Fidelity * weight
		report.Overall.Hallucination += scores.Hallucination * weight
		totalWeight += weight
	}

	if totalWeight > 0 {
		report.Overall.Retention /= totalWeight
		report.Overall.Fidelity /= totalWeight
		report.Overall.Hallucination /= totalWeight
	} else {
		report.Overall = Scores{Retention: 1, Fidelity: 1}
	}

	return report
}

var reListMarker = regexp.MustCompile(`(?m)^\s*(?:[#>*-]+|\d+\.)\s*`)

func stripMarkup(text string) string {
	return reListMarker.ReplaceAllString(text, "")
}

// contentWords tokenizes to lowercase words of three or more letters, so
// punctuation and filler particles do not dominate the comparison.
func contentWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		w = strings.ToLower(w)
		if len([]rune(w)) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
