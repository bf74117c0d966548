package quiz

// Item is one row of a word list: the meaning shown to the student and the
// word they have to type.
type Item struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Phase is the step of the quiz cycle a session is in.
type Phase int

const (
	PhaseQuiz Phase = iota
	PhaseFeedback
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseQuiz:
		return "quiz"
	case PhaseFeedback:
		return "feedback"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// OutcomeKind classifies how a question left the quiz phase.
type OutcomeKind string

const (
	OutcomeCorrect OutcomeKind = "correct"
	OutcomeWrong   OutcomeKind = "wrong"
	OutcomeSkip    OutcomeKind = "skip"
	OutcomeTimeout OutcomeKind = "timeout"
)

// Label returns the result label written to the result log.
func (k OutcomeKind) Label() string {
	switch k {
	case OutcomeCorrect:
		return "正解"
	case OutcomeWrong:
		return "不正解"
	case OutcomeSkip:
		return "スキップ"
	case OutcomeTimeout:
		return "時間切れ"
	default:
		return string(k)
	}
}

// Logged reports whether outcomes of this kind go to the result log.
// Skips are not recorded.
func (k OutcomeKind) Logged() bool {
	return k == OutcomeCorrect || k == OutcomeWrong || k == OutcomeTimeout
}

// Outcome is the result of the last question together with the item it
// was about.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	Item Item        `json:"item"`
}
