package segmenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/embedding"
	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) Close() error { return nil }

func factoryFor(c *fakeClient) llm.Factory {
	return func(ctx context.Context) (llm.Client, error) { return c, nil }
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if f.err != nil {
		return nil, f.err
	}
	return embedding.Vector{1, 0, 0}, nil
}

func (f *fakeEmbedder) Dims() int { return 3 }

func defaultOpts() config.SegmentationConfig {
	return config.SegmentationConfig{
		Mode:             "auto",
		AIThresholdWords: 3000,
		TargetWords:      2500,
		MinWords:         1000,
		MaxWords:         4000,
		BoundaryWindow:   100,
		ConvMinWords:     300,
		ConvMaxWords:     1500,
	}
}

func smallOpts() config.SegmentationConfig {
	o := defaultOpts()
	o.AIThresholdWords = 50
	o.TargetWords = 30
	o.MinWords = 20
	o.MaxWords = 50
	o.BoundaryWindow = 10
	return o
}

// sentenceText produces n words with a sentence end every 12 words.
func sentenceText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "word%d", i)
		if (i+1)%12 == 0 {
			b.WriteString(".")
		}
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

// plainText produces n words with no punctuation at all.
func plainText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestSegmentEmptyInput(t *testing.T) {
	s := New(defaultOpts(), nil, nil, logger.Nop())

	segs, method := s.Segment(context.Background(), "   \n\t ")
	if segs != nil {
		t.Errorf("Segment() = %d segments, want none", len(segs))
	}
	if method != MethodProgrammatic {
		t.Errorf("method = %q, want %q", method, MethodProgrammatic)
	}
}

func TestSegmentShortInputSingleSegment(t *testing.T) {
	s := New(defaultOpts(), nil, nil, logger.Nop())

	segs, method := s.Segment(context.Background(), sentenceText(500))
	if method != MethodProgrammatic {
		t.Fatalf("method = %q, want %q", method, MethodProgrammatic)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].WordRange != [2]int{0, 500} {
		t.Errorf("range = %v, want [0 500]", segs[0].WordRange)
	}
	if segs[0].Metadata.SectionType != "main_content" {
		t.Errorf("section type = %q, want main_content", segs[0].Metadata.SectionType)
	}
	if err := ValidateCoverage(segs, 500); err != nil {
		t.Errorf("coverage: %v", err)
	}
}

func TestSegmentLongInput(t *testing.T) {
	s := New(defaultOpts(), nil, nil, logger.Nop())

	const total = 24000
	segs, method := s.Segment(context.Background(), sentenceText(total))
	if method != MethodProgrammatic {
		t.Fatalf("method = %q, want %q", method, MethodProgrammatic)
	}
	if len(segs) < 8 || len(segs) > 12 {
		t.Errorf("got %d segments for %d words, want 8..12", len(segs), total)
	}
	if err := ValidateCoverage(segs, total); err != nil {
		t.Fatalf("coverage: %v", err)
	}

	opts := defaultOpts()
	for _, seg := range segs {
		wc := seg.WordCount()
		if wc < opts.MinWords || wc > opts.MaxWords+opts.MinWords {
			t.Errorf("segment %d has %d words, want %d..%d", seg.ID, wc, opts.MinWords, opts.MaxWords+opts.MinWords)
		}
	}

	if segs[0].Metadata.SectionType != "introduction" {
		t.Errorf("first section type = %q, want introduction", segs[0].Metadata.SectionType)
	}
	if last := segs[len(segs)-1]; last.Metadata.SectionType != "conclusion" {
		t.Errorf("last section type = %q, want conclusion", last.Metadata.SectionType)
	}
}

func TestSegmentCoverageAcrossSizes(t *testing.T) {
	s := New(defaultOpts(), nil, nil, logger.Nop())

	for _, total := range []int{1, 999, 1000, 1001, 4000, 4001, 5000, 8192, 24000} {
		segs, _ := s.Segment(context.Background(), sentenceText(total))
		if err := ValidateCoverage(segs, total); err != nil {
			t.Errorf("total=%d: %v", total, err)
		}
	}
}

func TestSegmentCutsAtSentenceEnds(t *testing.T) {
	// One sentence end inside each boundary window: after word 27 and
	// after word 57. Cuts must land exactly there.
	words := make([]string, 80)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	words[27] += "."
	words[57] += "."

	s := New(smallOpts(), nil, nil, logger.Nop())
	segs, _ := s.Segment(context.Background(), strings.Join(words, " "))

	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[0].WordRange != [2]int{0, 28} {
		t.Errorf("first range = %v, want [0 28]", segs[0].WordRange)
	}
	if segs[1].WordRange != [2]int{28, 58} {
		t.Errorf("second range = %v, want [28 58]", segs[1].WordRange)
	}
	if segs[2].WordRange != [2]int{58, 80} {
		t.Errorf("third range = %v, want [58 80]", segs[2].WordRange)
	}
}

func TestSegmentFallsBackToTargetWithoutBoundaries(t *testing.T) {
	s := New(smallOpts(), nil, nil, logger.Nop())

	segs, _ := s.Segment(context.Background(), plainText(80))
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].WordRange != [2]int{0, 30} {
		t.Errorf("first range = %v, want target cut [0 30]", segs[0].WordRange)
	}
	if err := ValidateCoverage(segs, 80); err != nil {
		t.Errorf("coverage: %v", err)
	}
}

func TestSegmentMergesSmallRemainder(t *testing.T) {
	// The only boundary is after word 35, leaving a 19-word tail below
	// MinWords. The tail must fold back instead of standing alone.
	words := make([]string, 55)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	words[35] += "."

	s := New(smallOpts(), nil, nil, logger.Nop())
	segs, _ := s.Segment(context.Background(), strings.Join(words, " "))

	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1 after merging the short tail", len(segs))
	}
	if segs[0].WordRange != [2]int{0, 55} {
		t.Errorf("range = %v, want [0 55]", segs[0].WordRange)
	}
	if err := ValidateCoverage(segs, 55); err != nil {
		t.Errorf("coverage: %v", err)
	}
}

func TestSegmentUsesPlanFromModel(t *testing.T) {
	plan := `Here is the plan:
` + "```json" + `
{
  "total_words": 120,
  "recommended_segments": 2,
  "segments": [
    {"id": 1, "start_word": 0, "end_word": 60, "word_count": 60, "topic": "Opening", "keywords": ["alpha"], "section_type": "introduction", "key_concepts": ["start"], "transition_type": "topic_change"},
    {"id": 2, "start_word": 60, "end_word": 120, "word_count": 60, "topic": "Closing", "keywords": ["beta"], "section_type": "conclusion", "key_concepts": ["end"], "transition_type": "section_end"}
  ],
  "format_detected": "lecture",
  "recommended_agent": "linear_content"
}
` + "```"

	fake := &fakeClient{response: plan}
	s := New(smallOpts(), factoryFor(fake), nil, logger.Nop())

	content := plainText(120)
	segs, method := s.Segment(context.Background(), content)
	if method != MethodAI {
		t.Fatalf("method = %q, want %q", method, MethodAI)
	}
	if fake.calls != 1 {
		t.Errorf("model called %d times, want 1", fake.calls)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Metadata.Topic != "Opening" || segs[1].Metadata.Topic != "Closing" {
		t.Errorf("topics = %q, %q", segs[0].Metadata.Topic, segs[1].Metadata.Topic)
	}
	if err := ValidateCoverage(segs, 120); err != nil {
		t.Fatalf("coverage: %v", err)
	}

	// Segment text must come from the input, never from the model.
	rejoined := segs[0].Text + " " + segs[1].Text
	if rejoined != content {
		t.Error("segment text does not reassemble the original input")
	}
}

func TestSegmentFallsBackOnBadPlan(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeClient
	}{
		{"no JSON in response", &fakeClient{response: "I cannot produce a plan for this."}},
		{"invalid plan ranges", &fakeClient{response: `{"total_words": 120, "segments": [{"id": 1, "start_word": 0, "end_word": 50, "word_count": 50}]}`}},
		{"generation error", &fakeClient{err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(smallOpts(), factoryFor(tt.fake), nil, logger.Nop())

			segs, method := s.Segment(context.Background(), sentenceText(120))
			if method != MethodProgrammatic {
				t.Fatalf("method = %q, want programmatic fallback", method)
			}
			if err := ValidateCoverage(segs, 120); err != nil {
				t.Errorf("coverage after fallback: %v", err)
			}
		})
	}
}

func TestSegmentFallsBackOnFactoryError(t *testing.T) {
	factory := func(ctx context.Context) (llm.Client, error) {
		return nil, errors.New("no keys")
	}
	s := New(smallOpts(), factory, nil, logger.Nop())

	segs, method := s.Segment(context.Background(), sentenceText(120))
	if method != MethodProgrammatic {
		t.Fatalf("method = %q, want programmatic fallback", method)
	}
	if err := ValidateCoverage(segs, 120); err != nil {
		t.Errorf("coverage: %v", err)
	}
}

func TestSegmentModeSelection(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		words     int
		wantCalls int
	}{
		{"programmatic mode never calls model", "programmatic", 120, 0},
		{"auto below threshold stays local", "auto", 40, 0},
		{"auto above threshold calls model", "auto", 120, 1},
		{"intelligent always calls model", "intelligent", 40, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClient{response: "not json"}
			opts := smallOpts()
			opts.Mode = tt.mode
			s := New(opts, factoryFor(fake), nil, logger.Nop())

			s.Segment(context.Background(), sentenceText(tt.words))
			if fake.calls != tt.wantCalls {
				t.Errorf("model called %d times, want %d", fake.calls, tt.wantCalls)
			}
		})
	}
}

func TestSegmentSurvivesEmbedderFailure(t *testing.T) {
	s := New(defaultOpts(), nil, &fakeEmbedder{err: errors.New("connection refused")}, logger.Nop())

	segs, method := s.Segment(context.Background(), sentenceText(6000))
	if method != MethodProgrammatic {
		t.Fatalf("method = %q, want %q", method, MethodProgrammatic)
	}
	if err := ValidateCoverage(segs, 6000); err != nil {
		t.Errorf("coverage: %v", err)
	}

	impl := s.(*implSegmenter)
	if !impl.embedDown.Load() {
		t.Error("embedDown not set after embedding failure")
	}
}

func TestSegmentWithHealthyEmbedder(t *testing.T) {
	s := New(defaultOpts(), nil, &fakeEmbedder{}, logger.Nop())

	segs, _ := s.Segment(context.Background(), sentenceText(6000))
	if err := ValidateCoverage(segs, 6000); err != nil {
		t.Errorf("coverage: %v", err)
	}

	impl := s.(*implSegmenter)
	if impl.embedDown.Load() {
		t.Error("embedDown set for a healthy embedder")
	}
}

func TestTopKeywords(t *testing.T) {
	words := strings.Fields("kubernetes cluster kubernetes deployment cluster kubernetes the and of scaling")
	got := topKeywords(words, 3)
	want := []string{"kubernetes", "cluster", "deployment"}

	if len(got) != len(want) {
		t.Fatalf("topKeywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}
