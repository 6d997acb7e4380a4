package agents

import "fmt"

// ChainID is the closed set of agent chains. Routing happens over these
// values only; there is no lookup of arbitrary chain names.
type ChainID int

const (
	// ChainLinear transforms lectures and other single-voice content.
	ChainLinear ChainID = iota
	// ChainMeeting produces structured minutes from diarized meetings.
	ChainMeeting
)

func (id ChainID) String() string {
	switch id {
	case ChainLinear:
		return "linear_content"
	case ChainMeeting:
		return "meeting_minutes"
	default:
		return fmt.Sprintf("chain(%d)", int(id))
	}
}

// ParseChainID maps a user-facing chain name to its identifier. Unknown
// names are rejected at the boundary, before any model call happens.
func ParseChainID(name string) (ChainID, error) {
	switch name {
	case "linear", "linear_content", "lecture":
		return ChainLinear, nil
	case "meeting", "meeting_minutes":
		return ChainMeeting, nil
	default:
		return 0, fmt.Errorf("unknown agent chain %q (valid: linear, meeting)", name)
	}
}

// StepKind tells the executor what to do with a step's output.
type StepKind int

const (
	// StepTransform replaces the working text with the model output.
	StepTransform StepKind = iota
	// StepTitle extracts a one-line segment title; the working text stays.
	StepTitle
	// StepQA extracts question/answer pairs; the working text stays.
	StepQA
	// StepMeeting produces minutes with an embedded Q&A section that is
	// split off afterwards.
	StepMeeting
)

// Step is one model call inside a chain.
type Step struct {
	Name        string
	Kind        StepKind
	Temperature float32
	MaxTokens   int32
	Render      func(in StepInput) string
}

// StepInput carries everything a step prompt can reference.
type StepInput struct {
	Text         string
	Position     int
	Total        int
	Topic        string
	Keywords     []string
	Concepts     []string
	SectionType  string
	Participants []string
	Reference    string
	Questions    int
}

// Chain is an ordered list of steps. Execution is cumulative: each
// transform step feeds the next one.
type Chain struct {
	ID    ChainID
	Steps []Step
}

// Registry holds the chains. It is built explicitly at startup and never
// mutated afterwards.
type Registry struct {
	chains map[ChainID]Chain
}

// NewRegistry constructs both chains with their tuned temperatures and
// token budgets.
func NewRegistry() *Registry {
	linear := Chain{
		ID: ChainLinear,
		Steps: []Step{
			{
				Name:        "punctuator",
				Kind:        StepTransform,
				Temperature: 0.3,
				MaxTokens:   4096,
				Render:      renderPunctuator,
			},
			{
				Name:        "formatter",
				Kind:        StepTransform,
				Temperature: 0.4,
				MaxTokens:   4096,
				Render:      renderFormatter,
			},
			{
				Name:        "titler",
				Kind:        StepTitle,
				Temperature: 0.5,
				MaxTokens:   256,
				Render:      renderTitler,
			},
			{
				Name:        "qa_generator",
				Kind:        StepQA,
				Temperature: 0.6,
				MaxTokens:   2048,
				Render:      renderQA,
			},
		},
	}

	meeting := Chain{
		ID: ChainMeeting,
		Steps: []Step{
			{
				Name:        "meeting_processor",
				Kind:        StepMeeting,
				Temperature: 0.4,
				MaxTokens:   4096,
				Render:      renderMeeting,
			},
		},
	}

	return &Registry{
		chains: map[ChainID]Chain{
			ChainLinear:  linear,
			ChainMeeting: meeting,
		},
	}
}

// Chain returns the chain for id.
func (r *Registry) Chain(id ChainID) (Chain, bool) {
	c, ok := r.chains[id]
	return c, ok
}

// QAPair is one study question with its answer.
type QAPair struct {
	Question string
	Answer   string
}

// Result is the outcome of running a chain over one segment. A failed
// segment keeps its original text so the final document never loses
// content.
type Result struct {
	SegmentID     int
	Title         string
	ProcessedText string
	QAPairs       []QAPair
	AgentUsed     string
	Failed        bool
	ErrorMessage  string
}
