package assembler

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
)

func (a *implAssembler) Build(in Input) string {
	results := make(map[int]agents.Result, len(in.Processed))
	for _, r := range in.Processed {
		results[r.SegmentID] = r
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", in.Title)
	fmt.Fprintf(&b, "**Source:** %s\n", in.Source)
	fmt.Fprintf(&b, "**Generated:** %s\n", in.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Segmentation:** %s (%d segments, %d words)\n", in.Method, len(in.Segments), in.SourceWords)
	fmt.Fprintf(&b, "**Agent:** %s\n", in.AgentUsed)
	if len(in.ReferenceDocs) > 0 {
		fmt.Fprintf(&b, "**Reference material:** %s\n", strings.Join(in.ReferenceDocs, ", "))
	}
	b.WriteString("\n")

	if len(in.Segments) > 1 {
		b.WriteString("## Table of Contents\n\n")
		for _, seg := range in.Segments {
			fmt.Fprintf(&b, "%d. %s\n", seg.ID, sectionTitle(seg, results[seg.ID]))
		}
		b.WriteString("\n")
	}

	failed := 0
	for _, seg := range in.Segments {
		b.WriteString("---\n\n")

		r, ok := results[seg.ID]
		fmt.Fprintf(&b, "## Segment %d: %s\n\n", seg.ID, sectionTitle(seg, r))

		if !ok || r.Failed {
			failed++
			b.WriteString("> This segment could not be processed; the original text is preserved below.\n\n")
			b.WriteString(strings.TrimSpace(seg.Text))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(strings.TrimSpace(r.ProcessedText))
		b.WriteString("\n\n")

		if len(r.QAPairs) > 0 {
			b.WriteString("### Questions & Answers\n\n")
			for i, qa := range r.QAPairs {
				fmt.Fprintf(&b, "**Q%d: %s**\n\n%s\n\n", i+1, qa.Question, qa.Answer)
			}
		}
	}

	b.WriteString("---\n\n")
	if failed > 0 {
		fmt.Fprintf(&b, "_Assembled %d segments by transcript-flow (%s, %d preserved unprocessed)._\n", len(in.Segments), in.Method, failed)
	} else {
		fmt.Fprintf(&b, "_Assembled %d segments by transcript-flow (%s)._\n", len(in.Segments), in.Method)
	}

	return b.String()
}

// sectionTitle prefers the agent-produced title, then the segment topic.
func sectionTitle(seg segmenter.Segment, r agents.Result) string {
	if t := strings.TrimSpace(r.Title); t != "" && !r.Failed {
		return t
	}
	if seg.Metadata.Topic != "" {
		return seg.Metadata.Topic
	}
	return fmt.Sprintf("Part %d", seg.ID)
}
