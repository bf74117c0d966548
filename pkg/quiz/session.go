// Package quiz implements the phase controller of a word-prefix quiz.
//
// A Session cycles quiz -> feedback -> quiz until every item in its pool has
// been answered correctly, at which point it is done. Time-based transitions
// (hint reveal, timeout) only happen when the owner calls Tick or another
// operation; there is no timer inside the session. A Session is not safe for
// concurrent use.
package quiz

import (
	"errors"
	"math/rand"
	"time"
)

const (
	DefaultHintDelay = 5 * time.Second
	DefaultTimeout   = 10 * time.Second
)

var (
	ErrNoItems      = errors.New("quiz: no items")
	ErrInvalidState = errors.New("quiz: invalid session state")
)

// RemoveMode selects which pool entries a correct answer removes.
type RemoveMode int

const (
	// RemoveFirst removes the first entry equal to the answered item.
	RemoveFirst RemoveMode = iota
	// RemoveAllEqual removes every entry equal to the answered item, so
	// duplicated rows are cleared together.
	RemoveAllEqual
)

// Options configures a Session. Zero HintDelay or Timeout disables the
// corresponding transition.
type Options struct {
	HintDelay    time.Duration
	Timeout      time.Duration
	AnswerLength int
	RemoveMode   RemoveMode
	Now          func() time.Time
	Rand         *rand.Rand
}

// DefaultOptions returns the options the quiz runs with unless configured.
func DefaultOptions() Options {
	return Options{
		HintDelay:    DefaultHintDelay,
		Timeout:      DefaultTimeout,
		AnswerLength: DefaultAnswerLength,
		RemoveMode:   RemoveFirst,
	}
}

// Stats summarises a run.
type Stats struct {
	Correct   int `json:"correct"`
	Wrong     int `json:"wrong"`
	Skipped   int `json:"skipped"`
	TimedOut  int `json:"timed_out"`
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// TickResult describes what a Tick changed.
type TickResult struct {
	HintRevealed bool
	Hint         string
	TimedOut     bool
	Outcome      Outcome
}

// Session holds the state of one quiz run.
type Session struct {
	opts Options
	now  func() time.Time
	rng  *rand.Rand

	original []Item
	pool     []Item

	current   *Item
	phase     Phase
	askedAt   time.Time
	hintShown bool
	last      *Outcome

	correct  int
	wrong    int
	skipped  int
	timedOut int
}

// NewSession creates a session over items. The session starts in the quiz
// phase with no question drawn; call Next to ask the first one.
func NewSession(items []Item, opts Options) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	s := newSession(opts)
	s.original = cloneItems(items)
	s.pool = cloneItems(items)
	s.phase = PhaseQuiz
	return s, nil
}

func newSession(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{opts: opts, now: now, rng: rng}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns the item being asked or shown as feedback.
func (s *Session) Current() (Item, bool) {
	if s.current == nil {
		return Item{}, false
	}
	return *s.current, true
}

// Last returns the outcome of the question shown in the feedback phase.
func (s *Session) Last() (Outcome, bool) {
	if s.last == nil {
		return Outcome{}, false
	}
	return *s.last, true
}

// HintShown reports whether the hint for the current question was revealed.
func (s *Session) HintShown() bool {
	return s.hintShown
}

// Pool returns a copy of the items not yet answered correctly.
func (s *Session) Pool() []Item {
	return cloneItems(s.pool)
}

// Stats returns the counters of the current run.
func (s *Session) Stats() Stats {
	return Stats{
		Correct:   s.correct,
		Wrong:     s.wrong,
		Skipped:   s.skipped,
		TimedOut:  s.timedOut,
		Remaining: len(s.pool),
		Total:     len(s.original),
	}
}

// AnswerLength returns the configured answer length.
func (s *Session) AnswerLength() int {
	return s.opts.AnswerLength
}

// Next draws a question when none is in flight. It returns the question
// being asked, or false once the pool is exhausted and the session is done.
func (s *Session) Next() (Item, bool) {
	if s.current != nil {
		return *s.current, true
	}
	if s.phase == PhaseDone {
		return Item{}, false
	}
	if len(s.pool) == 0 {
		s.phase = PhaseDone
		return Item{}, false
	}
	item := s.pool[s.rng.Intn(len(s.pool))]
	s.current = &item
	s.phase = PhaseQuiz
	s.askedAt = s.now()
	s.hintShown = false
	s.last = nil
	return item, true
}

// Submit judges input against the current question. It returns false and
// changes nothing when no question is awaiting an answer or when input is
// not a valid answer. If the question expired before the answer arrived,
// the returned outcome is a timeout.
func (s *Session) Submit(input string) (Outcome, bool) {
	if expired, ok := s.expire(); ok {
		return expired, true
	}
	if !s.awaitingAnswer() {
		return Outcome{}, false
	}
	if !ValidAnswer(input, s.opts.AnswerLength) {
		return Outcome{}, false
	}

	item := *s.current
	if Judge(item.Answer, input) {
		s.pool = removeItem(s.pool, item, s.opts.RemoveMode)
		s.correct++
		return s.finish(OutcomeCorrect), true
	}
	s.wrong++
	return s.finish(OutcomeWrong), true
}

// Skip gives up on the current question. The item stays in the pool.
func (s *Session) Skip() (Outcome, bool) {
	if expired, ok := s.expire(); ok {
		return expired, true
	}
	if !s.awaitingAnswer() {
		return Outcome{}, false
	}
	s.skipped++
	return s.finish(OutcomeSkip), true
}

// Tick applies time-based transitions to the current question: the timeout
// first, then the hint.
func (s *Session) Tick() TickResult {
	if expired, ok := s.expire(); ok {
		return TickResult{TimedOut: true, Outcome: expired}
	}
	if !s.awaitingAnswer() || s.hintShown || s.opts.HintDelay <= 0 {
		return TickResult{}
	}
	if s.now().Sub(s.askedAt) < s.opts.HintDelay {
		return TickResult{}
	}
	s.hintShown = true
	return TickResult{HintRevealed: true, Hint: Hint(s.current.Answer)}
}

// HintText returns the revealed hint, or an empty string.
func (s *Session) HintText() string {
	if !s.hintShown || s.current == nil {
		return ""
	}
	return Hint(s.current.Answer)
}

// Acknowledge leaves the feedback phase and draws the next question. It
// returns false outside the feedback phase.
func (s *Session) Acknowledge() bool {
	if s.phase != PhaseFeedback {
		return false
	}
	s.clearQuestion()
	s.phase = PhaseQuiz
	s.Next()
	return true
}

// Restart refills the pool with the original items, resets the counters
// and asks a new question.
func (s *Session) Restart() {
	s.pool = cloneItems(s.original)
	s.correct, s.wrong, s.skipped, s.timedOut = 0, 0, 0, 0
	s.clearQuestion()
	s.phase = PhaseQuiz
	s.Next()
}

func (s *Session) awaitingAnswer() bool {
	return s.phase == PhaseQuiz && s.current != nil
}

func (s *Session) expire() (Outcome, bool) {
	if !s.awaitingAnswer() || s.opts.Timeout <= 0 {
		return Outcome{}, false
	}
	if s.now().Sub(s.askedAt) < s.opts.Timeout {
		return Outcome{}, false
	}
	s.timedOut++
	return s.finish(OutcomeTimeout), true
}

func (s *Session) finish(kind OutcomeKind) Outcome {
	outcome := Outcome{Kind: kind, Item: *s.current}
	s.last = &outcome
	s.phase = PhaseFeedback
	return outcome
}

func (s *Session) clearQuestion() {
	s.current = nil
	s.last = nil
	s.hintShown = false
	s.askedAt = time.Time{}
}

func removeItem(pool []Item, item Item, mode RemoveMode) []Item {
	out := make([]Item, 0, len(pool))
	removed := false
	for _, candidate := range pool {
		if candidate == item && (mode == RemoveAllEqual || !removed) {
			removed = true
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
