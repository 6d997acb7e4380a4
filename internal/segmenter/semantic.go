package segmenter

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/internal/embedding"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcript"
)

// Segment picks the strategy for linear content and reports which one ran.
func (s *implSegmenter) Segment(ctx context.Context, content string) ([]Segment, string) {
	words := transcript.Words(content)
	if len(words) == 0 {
		return nil, MethodProgrammatic
	}

	if s.useAI(len(words)) {
		segs, err := s.planWithModel(ctx, content, words)
		if err == nil {
			s.logger.Info(ctx, "AI plan accepted: %d segments", len(segs))
			return segs, MethodAI
		}
		s.logger.Warn(ctx, "AI segmentation failed, using programmatic fallback: %v", err)
	}

	return s.programmatic(ctx, words), MethodProgrammatic
}

func (s *implSegmenter) useAI(wordCount int) bool {
	if s.llm == nil || s.opts.Mode == "programmatic" {
		return false
	}
	if s.opts.Mode == "intelligent" {
		return true
	}
	return wordCount > s.opts.AIThresholdWords
}

// programmatic cuts the word stream near the target size, preferring
// sentence ends and discourse markers inside the boundary window. The
// result partitions the input by construction.
func (s *implSegmenter) programmatic(ctx context.Context, words []string) []Segment {
	total := len(words)
	if total <= s.opts.MaxWords {
		return s.buildSegments(words, []int{total})
	}

	ends := sentenceEnds(words)
	markers := transitionStarts(words)

	var cuts []int
	start := 0
	for total-start > s.opts.MaxWords {
		cut := s.bestCut(ctx, words, start, ends, markers)
		cuts = append(cuts, cut)
		start = cut
	}
	cuts = append(cuts, total)

	// The remainder always lands in the final segment; fold it backward
	// when it is too small to stand alone.
	if n := len(cuts); n >= 2 && cuts[n-1]-cuts[n-2] < s.opts.MinWords {
		cuts = append(cuts[:n-2], total)
	}

	s.logger.Debug(ctx, "programmatic segmentation: %d words into %d segments", total, len(cuts))
	return s.buildSegments(words, cuts)
}

// bestCut picks the end of the segment starting at start. Candidates are
// sentence ends or discourse markers near the target; when an embedder is
// available, a topic-similarity dip across the cut breaks close calls.
func (s *implSegmenter) bestCut(ctx context.Context, words []string, start int, ends, markers map[int]bool) int {
	lo := start + s.opts.MinWords
	hi := start + s.opts.MaxWords
	target := start + s.opts.TargetWords
	if target < lo {
		target = lo
	}
	if target > hi {
		target = hi
	}

	wlo := max(lo, target-s.opts.BoundaryWindow)
	whi := min(hi, target+s.opts.BoundaryWindow)

	candidates := collectCuts(wlo, whi, ends, markers)
	if len(candidates) == 0 {
		candidates = collectCuts(lo, hi, ends, markers)
	}
	if len(candidates) == 0 {
		return target
	}

	window := float64(s.opts.BoundaryWindow)
	type scoredCut struct {
		cut  int
		base float64
	}
	scored := make([]scoredCut, 0, len(candidates))
	for _, cut := range candidates {
		base := 0.0
		if ends[cut] {
			base += 2
		}
		if markers[cut] {
			base += 1.5
		}
		base -= math.Abs(float64(cut-target)) / window * 0.5
		scored = append(scored, scoredCut{cut, base})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].base > scored[j].base })

	// Embedding refinement is two calls per candidate, so only the top
	// few get it.
	refine := scored
	if len(refine) > 4 {
		refine = refine[:4]
	}
	best := refine[0].cut
	bestScore := math.Inf(-1)
	for _, c := range refine {
		score := c.base
		if dip, ok := s.similarityDip(ctx, words, c.cut); ok {
			score += 2 * dip
		}
		if score > bestScore {
			best, bestScore = c.cut, score
		}
	}
	return best
}

func collectCuts(lo, hi int, ends, markers map[int]bool) []int {
	var cuts []int
	for c := lo; c <= hi; c++ {
		if ends[c] || markers[c] {
			cuts = append(cuts, c)
		}
	}
	return cuts
}

// similarityDip measures how much the topic shifts across a cut point.
// Embedding failures disable the refinement for the rest of the process;
// segmentation stays deterministic without it.
func (s *implSegmenter) similarityDip(ctx context.Context, words []string, cut int) (float64, bool) {
	if s.embedder == nil || s.embedDown.Load() {
		return 0, false
	}

	const span = 60
	before := transcript.Slice(words, cut-span, cut)
	after := transcript.Slice(words, cut, cut+span)

	va, err := s.embedder.Embed(ctx, before)
	if err != nil {
		s.noteEmbedFailure(ctx, err)
		return 0, false
	}
	vb, err := s.embedder.Embed(ctx, after)
	if err != nil {
		s.noteEmbedFailure(ctx, err)
		return 0, false
	}

	return 1 - embedding.CosineSimilarity(va, vb), true
}

func (s *implSegmenter) noteEmbedFailure(ctx context.Context, err error) {
	if s.embedDown.CompareAndSwap(false, true) {
		s.logger.Warn(ctx, "embedding provider failed, boundary refinement disabled: %v", err)
	}
}

func (s *implSegmenter) buildSegments(words []string, cuts []int) []Segment {
	segments := make([]Segment, 0, len(cuts))
	start := 0
	for i, end := range cuts {
		slice := words[start:end]
		segments = append(segments, Segment{
			ID:        i + 1,
			Text:      strings.Join(slice, " "),
			WordRange: [2]int{start, end},
			Metadata: Metadata{
				Topic:          inferTopic(slice),
				Keywords:       topKeywords(slice, 5),
				SectionType:    sectionType(i, len(cuts)),
				TransitionType: "natural_break",
			},
		})
		start = end
	}
	return segments
}

func sectionType(i, n int) string {
	switch {
	case n == 1:
		return "main_content"
	case i == 0:
		return "introduction"
	case i == n-1:
		return "conclusion"
	default:
		return "main_content"
	}
}

// sentenceEnds marks word indexes where a cut would fall right after a
// sentence-terminating word.
func sentenceEnds(words []string) map[int]bool {
	ends := make(map[int]bool)
	for i, w := range words {
		t := strings.TrimRight(w, `"')]*`)
		if t == "" {
			continue
		}
		switch t[len(t)-1] {
		case '.', '!', '?':
			ends[i+1] = true
		}
	}
	return ends
}

var transitionMarkers = map[string]bool{
	"now": true, "next": true, "okay": true, "so": true, "well": true,
	"first": true, "firstly": true, "second": true, "secondly": true,
	"third": true, "finally": true, "today": true, "moving": true,
	"another": true, "additionally": true,
	"ahora": true, "bueno": true, "entonces": true, "primero": true,
	"luego": true, "finalmente": true, "además": true,
}

// transitionStarts marks word indexes that open a new thought.
func transitionStarts(words []string) map[int]bool {
	starts := make(map[int]bool)
	for i, w := range words {
		if i == 0 {
			continue
		}
		if transitionMarkers[normalizeWord(w)] {
			starts[i] = true
		}
	}
	return starts
}
