package quiz

import (
	"fmt"
	"time"
)

// State is a serialisable snapshot of a Session.
type State struct {
	Original  []Item    `json:"original"`
	Pool      []Item    `json:"pool"`
	Current   *Item     `json:"current,omitempty"`
	Phase     Phase     `json:"phase"`
	AskedAt   time.Time `json:"asked_at"`
	HintShown bool      `json:"hint_shown"`
	Last      *Outcome  `json:"last,omitempty"`
	Correct   int       `json:"correct"`
	Wrong     int       `json:"wrong"`
	Skipped   int       `json:"skipped"`
	TimedOut  int       `json:"timed_out"`
}

// Snapshot captures the session so it can be restored later.
func (s *Session) Snapshot() State {
	state := State{
		Original:  cloneItems(s.original),
		Pool:      cloneItems(s.pool),
		Phase:     s.phase,
		AskedAt:   s.askedAt,
		HintShown: s.hintShown,
		Correct:   s.correct,
		Wrong:     s.wrong,
		Skipped:   s.skipped,
		TimedOut:  s.timedOut,
	}
	if s.current != nil {
		current := *s.current
		state.Current = &current
	}
	if s.last != nil {
		last := *s.last
		state.Last = &last
	}
	return state
}

// Restore rebuilds a session from a snapshot.
func Restore(state State, opts Options) (*Session, error) {
	if len(state.Original) == 0 {
		return nil, ErrNoItems
	}
	if len(state.Pool) > len(state.Original) {
		return nil, fmt.Errorf("%w: pool larger than item list", ErrInvalidState)
	}
	switch state.Phase {
	case PhaseQuiz:
	case PhaseFeedback:
		if state.Current == nil || state.Last == nil {
			return nil, fmt.Errorf("%w: feedback without a question", ErrInvalidState)
		}
	case PhaseDone:
		if len(state.Pool) != 0 || state.Current != nil {
			return nil, fmt.Errorf("%w: done with items left", ErrInvalidState)
		}
	default:
		return nil, fmt.Errorf("%w: unknown phase %d", ErrInvalidState, state.Phase)
	}

	s := newSession(opts)
	s.original = cloneItems(state.Original)
	s.pool = cloneItems(state.Pool)
	s.phase = state.Phase
	s.askedAt = state.AskedAt
	s.hintShown = state.HintShown
	s.correct = state.Correct
	s.wrong = state.Wrong
	s.skipped = state.Skipped
	s.timedOut = state.TimedOut
	if state.Current != nil {
		current := *state.Current
		s.current = &current
	}
	if state.Last != nil {
		last := *state.Last
		s.last = &last
	}
	if s.phase == PhaseQuiz && s.current == nil {
		s.Next()
	}
	return s, nil
}
