package agents

import (
	"fmt"
	"strings"
)

const punctuatorPrompt = `You are a transcription editor. Restore punctuation and capitalization in the raw transcript below.

Rules:
- Add periods, commas, question marks and capitalization where the spoken flow requires them
- Keep every original word: never rephrase, summarize, shorten or expand the content
- Keep technical terms and proper names exactly as they appear
- Answer in the same language as the transcript
- Return only the corrected text, with no introduction or commentary

%sTranscript:
---
%s
---`

const formatterPrompt = `You are a document formatter. Structure the text below as clean markdown.

Rules:
- Split the text into logical paragraphs
- Add section headings (###) where the content changes subject
- Use bullet lists for enumerations and bold for key terms
- Preserve the original wording: you are arranging text, not rewriting it
- Answer in the same language as the text
- Return only the formatted markdown

%sText:
---
%s
---`

const titlerPrompt = `Write one short, descriptive title for the following content. Return only the title line: no quotes, no markdown heading marks, no explanation. Answer in the same language as the content.

%sContent:
---
%s
---`

const qaPrompt = `You are a study-material writer. Based only on the content below, write %d question and answer pairs (between 3 and 5) that test understanding of its key points.

Rules:
- Every answer must be grounded in the content; never invent facts
- Cover the most important ideas, not trivia
- Answer in the same language as the content
- Use exactly this format for each pair:

Q: <question>
A: <answer>

%sContent:
---
%s
---`

const meetingPrompt = `You are a minute-taker. Turn the meeting transcript below into structured minutes in markdown.

Produce these sections, in order, skipping any that would be empty:
- **Participants**: who spoke
- **Summary**: the discussion in a few short paragraphs
- **Decisions**: every decision that was made
- **Action Items**: one bullet per task, with owner and deadline when stated
- **Open Questions**: unresolved points
- **Questions & Answers**: %d pairs (between 3 and 5) in the format "Q: ..." / "A: ..." covering the key outcomes

Rules:
- Only report what the transcript supports; never invent names, dates or outcomes
- Answer in the same language as the transcript
- Return only the minutes

%sTranscript:
---
%s
---`

// contextHeader renders the shared prompt preamble: where the segment sits
// in the document, what the segmentation plan knows about it, and any
// reference material supplied by the caller.
func contextHeader(in StepInput) string {
	var b strings.Builder

	if in.Total > 1 {
		fmt.Fprintf(&b, "Segment %d of %d.\n", in.Position, in.Total)
	}
	if in.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	}
	if len(in.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(capList(in.Keywords, 5), ", "))
	}
	if len(in.Concepts) > 0 {
		fmt.Fprintf(&b, "Key concepts: %s\n", strings.Join(capList(in.Concepts, 3), ", "))
	}
	if in.SectionType != "" {
		fmt.Fprintf(&b, "Section type: %s\n", in.SectionType)
	}
	if len(in.Participants) > 0 {
		fmt.Fprintf(&b, "Participants: %s\n", strings.Join(in.Participants, ", "))
	}
	if in.Reference != "" {
		b.WriteString("\n--- REFERENCE CONTEXT ---\n")
		b.WriteString(strings.TrimSpace(in.Reference))
		b.WriteString("\n--- END REFERENCE CONTEXT ---\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func questionCount(in StepInput) int {
	if in.Questions >= 3 && in.Questions <= 5 {
		return in.Questions
	}
	return 4
}

func renderPunctuator(in StepInput) string {
	return fmt.Sprintf(punctuatorPrompt, contextHeader(in), in.Text)
}

func renderFormatter(in StepInput) string {
	return fmt.Sprintf(formatterPrompt, contextHeader(in), in.Text)
}

func renderTitler(in StepInput) string {
	return fmt.Sprintf(titlerPrompt, contextHeader(in), in.Text)
}

func renderQA(in StepInput) string {
	return fmt.Sprintf(qaPrompt, questionCount(in), contextHeader(in), in.Text)
}

func renderMeeting(in StepInput) string {
	return fmt.Sprintf(meetingPrompt, questionCount(in), contextHeader(in), in.Text)
}
