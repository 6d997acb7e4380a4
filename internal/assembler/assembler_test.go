package assembler

import (
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
)

func buildInput() Input {
	return Input{
		Title:       "Kubernetes Lecture",
		Source:      "lecture.txt",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Method:      segmenter.MethodProgrammatic,
		AgentUsed:   "linear_content",
		SourceWords: 42,
		Segments: []segmenter.Segment{
			{ID: 1, Text: "raw text one", WordRange: [2]int{0, 21}, Metadata: segmenter.Metadata{Topic: "Cluster Basics"}},
			{ID: 2, Text: "raw text two", WordRange: [2]int{21, 42}, Metadata: segmenter.Metadata{Topic: "Scaling"}},
		},
		Processed: []agents.Result{
			{
				SegmentID:     1,
				Title:         "Getting Started With Clusters",
				ProcessedText: "Clusters group nodes together.",
				QAPairs: []agents.QAPair{
					{Question: "What is a cluster?", Answer: "A group of nodes."},
					{Question: "Why group nodes?", Answer: "To schedule work across them."},
				},
				AgentUsed: "linear_content",
			},
			{
				SegmentID:     2,
				Title:         "Scaling Workloads",
				ProcessedText: "Scaling adds replicas.",
				QAPairs:       []agents.QAPair{{Question: "How do you scale?", Answer: "Add replicas."}},
				AgentUsed:     "linear_content",
			},
		},
	}
}

func TestBuildDocumentLayout(t *testing.T) {
	a := New()
	doc := a.Build(buildInput())

	wantInOrder := []string{
		"# Kubernetes Lecture",
		"**Source:** lecture.txt",
		"**Generated:** 2026-03-14 09:30:00",
		"**Segmentation:** programmatic (2 segments, 42 words)",
		"**Agent:** linear_content",
		"## Table of Contents",
		"1. Getting Started With Clusters",
		"2. Scaling Workloads",
		"## Segment 1: Getting Started With Clusters",
		"Clusters group nodes together.",
		"### Questions & Answers",
		"**Q1: What is a cluster?**",
		"A group of nodes.",
		"**Q2: Why group nodes?**",
		"## Segment 2: Scaling Workloads",
		"Scaling adds replicas.",
		"**Q1: How do you scale?**",
		"_Assembled 2 segments by transcript-flow (programmatic)._",
	}

	pos := 0
	for _, want := range wantInOrder {
		idx := strings.Index(doc[pos:], want)
		if idx < 0 {
			t.Fatalf("document missing %q after position %d\n%s", want, pos, doc)
		}
		pos += idx + len(want)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := New()
	in := buildInput()

	if a.Build(in) != a.Build(in) {
		t.Error("Build() is not deterministic for identical input")
	}
}

func TestBuildQAInterleavedPerSegment(t *testing.T) {
	a := New()
	doc := a.Build(buildInput())

	// Each segment's questions sit inside that segment's section, not in
	// a trailing appendix.
	seg1 := strings.Index(doc, "## Segment 1:")
	seg2 := strings.Index(doc, "## Segment 2:")
	q1 := strings.Index(doc, "What is a cluster?")
	q2 := strings.Index(doc, "How do you scale?")

	if !(seg1 < q1 && q1 < seg2) {
		t.Error("segment 1 questions are not inside segment 1's section")
	}
	if q2 < seg2 {
		t.Error("segment 2 questions appear before segment 2's section")
	}
	if n := strings.Count(doc, "### Questions & Answers"); n != 2 {
		t.Errorf("got %d Q&A sections, want one per segment", n)
	}
}

func TestBuildPreservesFailedSegments(t *testing.T) {
	a := New()
	in := buildInput()
	in.Processed[1] = agents.Result{
		SegmentID:    2,
		Failed:       true,
		ErrorMessage: "retries exhausted",
	}

	doc := a.Build(in)

	if !strings.Contains(doc, "## Segment 2: Scaling") {
		t.Error("failed segment lost its topic-based title")
	}
	if !strings.Contains(doc, "> This segment could not be processed") {
		t.Error("failed segment is not marked")
	}
	if !strings.Contains(doc, "raw text two") {
		t.Error("failed segment lost its original text")
	}
	if !strings.Contains(doc, "_Assembled 2 segments by transcript-flow (programmatic, 1 preserved unprocessed)._") {
		t.Error("footer does not count the preserved segment")
	}
}

func TestBuildMissingResultTreatedAsFailed(t *testing.T) {
	a := New()
	in := buildInput()
	in.Processed = in.Processed[:1]

	doc := a.Build(in)
	if !strings.Contains(doc, "> This segment could not be processed") {
		t.Error("segment without a result is not preserved")
	}
	if !strings.Contains(doc, "raw text two") {
		t.Error("segment without a result lost its original text")
	}
}

func TestBuildSingleSegmentSkipsTOC(t *testing.T) {
	a := New()
	in := buildInput()
	in.Segments = in.Segments[:1]
	in.Processed = in.Processed[:1]

	doc := a.Build(in)
	if strings.Contains(doc, "Table of Contents") {
		t.Error("single-segment document should not carry a table of contents")
	}
}

func TestBuildReferenceDocsLine(t *testing.T) {
	a := New()

	in := buildInput()
	if doc := a.Build(in); strings.Contains(doc, "Reference material") {
		t.Error("reference line rendered with no reference docs")
	}

	in.ReferenceDocs = []string{"glossary.md", "style-guide.txt"}
	doc := a.Build(in)
	if !strings.Contains(doc, "**Reference material:** glossary.md, style-guide.txt") {
		t.Error("reference docs line missing")
	}
}

func TestSectionTitleFallbacks(t *testing.T) {
	seg := segmenter.Segment{ID: 3, Metadata: segmenter.Metadata{Topic: "Fallback Topic"}}

	if got := sectionTitle(seg, agents.Result{Title: "Real Title"}); got != "Real Title" {
		t.Errorf("sectionTitle() = %q, want the agent title", got)
	}
	if got := sectionTitle(seg, agents.Result{Title: "Stale", Failed: true}); got != "Fallback Topic" {
		t.Errorf("sectionTitle() = %q, want the topic for failed results", got)
	}
	if got := sectionTitle(seg, agents.Result{}); got != "Fallback Topic" {
		t.Errorf("sectionTitle() = %q, want the topic", got)
	}

	seg.Metadata.Topic = ""
	if got := sectionTitle(seg, agents.Result{}); got != "Part 3" {
		t.Errorf("sectionTitle() = %q, want Part 3", got)
	}
}
