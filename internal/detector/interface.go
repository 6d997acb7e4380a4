package detector

// Format classifies the overall shape of a transcript.
type Format string

const (
	// FormatMeeting is a diarized conversation between several speakers.
	FormatMeeting Format = "diarized_meeting"
	// FormatLinear is single-voice content such as a lecture or presentation.
	FormatLinear Format = "linear_content"
)

// Result carries the classification with its supporting evidence.
type Result struct {
	Format       Format
	Confidence   float64
	Participants []string
}

// Detector classifies transcript content so the pipeline can pick a
// segmentation strategy and an agent chain.
type Detector interface {
	Detect(content string) Result
}
