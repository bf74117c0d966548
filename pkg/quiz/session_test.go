package quiz

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

var (
	cat = Item{Prompt: "猫", Answer: "cat"}
	dog = Item{Prompt: "犬", Answer: "dog"}
)

func newTestSession(t *testing.T, items []Item, mutate ...func(*Options)) (*Session, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	opts := DefaultOptions()
	opts.Now = clock.Now
	opts.Rand = rand.New(rand.NewSource(1))
	for _, fn := range mutate {
		fn(&opts)
	}
	s, err := NewSession(items, opts)
	require.NoError(t, err)
	return s, clock
}

func TestNewSessionRejectsEmptyList(t *testing.T) {
	_, err := NewSession(nil, DefaultOptions())
	require.ErrorIs(t, err, ErrNoItems)
}

func TestNewSessionStartsWithoutQuestion(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat, dog})

	assert.Equal(t, PhaseQuiz, s.Phase())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, Stats{Remaining: 2, Total: 2}, s.Stats())
}

func TestNextDrawsFromPoolAndIsIdempotent(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat, dog})

	first, ok := s.Next()
	require.True(t, ok)
	assert.Contains(t, []Item{cat, dog}, first)
	assert.Equal(t, clock.t, s.Snapshot().AskedAt)

	clock.Advance(time.Second)
	again, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, first, again)
	assert.Equal(t, clock.t.Add(-time.Second), s.Snapshot().AskedAt)
}

func TestSubmitCorrectRemovesItem(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat})
	s.Next()

	outcome, ok := s.Submit("ca")
	require.True(t, ok)
	assert.Equal(t, Outcome{Kind: OutcomeCorrect, Item: cat}, outcome)
	assert.Equal(t, PhaseFeedback, s.Phase())
	assert.Empty(t, s.Pool())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, outcome, last)
}

func TestSubmitCorrectScenarioLeavesOtherItem(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat, dog})
	current, _ := s.Next()

	outcome, ok := s.Submit(current.Answer[:2])
	require.True(t, ok)
	assert.Equal(t, OutcomeCorrect, outcome.Kind)

	other := dog
	if current == dog {
		other = cat
	}
	assert.Equal(t, []Item{other}, s.Pool())
}

func TestSubmitWrongKeepsPool(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat})
	s.Next()

	outcome, ok := s.Submit("xx")
	require.True(t, ok)
	assert.Equal(t, OutcomeWrong, outcome.Kind)
	assert.Equal(t, "cat", outcome.Item.Answer)
	assert.Equal(t, []Item{cat}, s.Pool())
	assert.Equal(t, 1, s.Stats().Wrong)
}

func TestSubmitIsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"CA", "ca", "Ca", " cA "} {
		t.Run(input, func(t *testing.T) {
			s, _ := newTestSession(t, []Item{cat})
			s.Next()
			outcome, ok := s.Submit(input)
			require.True(t, ok)
			assert.Equal(t, OutcomeCorrect, outcome.Kind)
		})
	}
}

func TestSubmitIgnoresInvalidInput(t *testing.T) {
	for _, input := range []string{"", "c", "cat", "ねこ", "cé", "   "} {
		t.Run(input, func(t *testing.T) {
			s, _ := newTestSession(t, []Item{cat})
			s.Next()
			_, ok := s.Submit(input)
			assert.False(t, ok)
			assert.Equal(t, PhaseQuiz, s.Phase())
			assert.Equal(t, []Item{cat}, s.Pool())
		})
	}
}

func TestSubmitLenientLengthAcceptsAnyInput(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat}, func(o *Options) { o.AnswerLength = 0 })
	s.Next()

	outcome, ok := s.Submit("cat")
	require.True(t, ok)
	assert.Equal(t, OutcomeCorrect, outcome.Kind)
}

func TestSubmitOutsideQuizPhaseIsNoop(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat, dog})
	_, ok := s.Submit("ca")
	assert.False(t, ok, "no question drawn yet")

	s.Next()
	s.Skip()
	_, ok = s.Submit("ca")
	assert.False(t, ok, "feedback phase")
}

func TestSkipKeepsItem(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat})
	s.Next()

	outcome, ok := s.Skip()
	require.True(t, ok)
	assert.Equal(t, OutcomeSkip, outcome.Kind)
	assert.Equal(t, PhaseFeedback, s.Phase())
	assert.Equal(t, []Item{cat}, s.Pool())
}

func TestTickRevealsHintOnce(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat})
	s.Next()

	clock.Advance(4 * time.Second)
	assert.Equal(t, TickResult{}, s.Tick())

	clock.Advance(time.Second)
	res := s.Tick()
	assert.True(t, res.HintRevealed)
	assert.Equal(t, "c", res.Hint)
	assert.True(t, s.HintShown())
	assert.Equal(t, "c", s.HintText())
	assert.Equal(t, PhaseQuiz, s.Phase())

	clock.Advance(time.Second)
	assert.False(t, s.Tick().HintRevealed)
}

func TestTickTimesOut(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat})
	s.Next()

	clock.Advance(10 * time.Second)
	res := s.Tick()
	require.True(t, res.TimedOut)
	assert.Equal(t, Outcome{Kind: OutcomeTimeout, Item: cat}, res.Outcome)
	assert.Equal(t, PhaseFeedback, s.Phase())
	assert.Equal(t, []Item{cat}, s.Pool())
	assert.Equal(t, 1, s.Stats().TimedOut)

	assert.Equal(t, TickResult{}, s.Tick())
}

func TestSubmitAfterDeadlineTimesOut(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat}, func(o *Options) { o.Timeout = 15 * time.Second })
	s.Next()

	clock.Advance(15 * time.Second)
	outcome, ok := s.Submit("ca")
	require.True(t, ok)
	assert.Equal(t, OutcomeTimeout, outcome.Kind)
	assert.Equal(t, []Item{cat}, s.Pool())
}

func TestDisabledTimersNeverFire(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat}, func(o *Options) {
		o.HintDelay = 0
		o.Timeout = 0
	})
	s.Next()

	clock.Advance(time.Hour)
	assert.Equal(t, TickResult{}, s.Tick())
	assert.Equal(t, PhaseQuiz, s.Phase())
}

func TestAcknowledgeDrawsNextQuestion(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat, dog})
	s.Next()
	clock.Advance(6 * time.Second)
	s.Tick()
	s.Skip()

	clock.Advance(time.Second)
	require.True(t, s.Acknowledge())
	assert.Equal(t, PhaseQuiz, s.Phase())
	_, ok := s.Current()
	assert.True(t, ok)
	_, ok = s.Last()
	assert.False(t, ok)
	assert.False(t, s.HintShown())
	assert.Equal(t, clock.t, s.Snapshot().AskedAt)

	assert.False(t, s.Acknowledge(), "acknowledge outside feedback")
}

func TestDoneOnlyWhenPoolEmpties(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat, dog})

	for i := 0; i < 10; i++ {
		_, ok := s.Next()
		require.True(t, ok)
		before := len(s.Pool())
		s.Submit("zz")
		assert.Equal(t, before, len(s.Pool()))
		s.Acknowledge()
		assert.NotEqual(t, PhaseDone, s.Phase())
	}

	for s.Phase() != PhaseDone {
		current, ok := s.Current()
		require.True(t, ok)
		before := len(s.Pool())
		outcome, ok := s.Submit(current.Answer[:2])
		require.True(t, ok)
		require.Equal(t, OutcomeCorrect, outcome.Kind)
		assert.Equal(t, before-1, len(s.Pool()))
		s.Acknowledge()
	}

	assert.Empty(t, s.Pool())
	_, ok := s.Current()
	assert.False(t, ok)
	_, ok = s.Next()
	assert.False(t, ok)
	assert.Equal(t, 2, s.Stats().Correct)
}

func TestRestartAfterDone(t *testing.T) {
	s, _ := newTestSession(t, []Item{cat})
	s.Next()
	s.Submit("ca")
	s.Acknowledge()
	require.Equal(t, PhaseDone, s.Phase())

	s.Restart()
	assert.Equal(t, PhaseQuiz, s.Phase())
	assert.Equal(t, []Item{cat}, s.Pool())
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, cat, current)
	assert.Equal(t, Stats{Remaining: 1, Total: 1}, s.Stats())
}

func TestDuplicateRemovalModes(t *testing.T) {
	items := []Item{cat, cat, dog}

	s, _ := newTestSession(t, items)
	s.current = &cat
	s.askedAt = s.now()
	s.Submit("ca")
	assert.Equal(t, []Item{cat, dog}, s.Pool())

	s, _ = newTestSession(t, items, func(o *Options) { o.RemoveMode = RemoveAllEqual })
	s.current = &cat
	s.askedAt = s.now()
	s.Submit("ca")
	assert.Equal(t, []Item{dog}, s.Pool())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s, clock := newTestSession(t, []Item{cat, dog})
	s.Next()
	clock.Advance(6 * time.Second)
	s.Tick()

	state := s.Snapshot()
	restored, err := Restore(state, Options{Now: clock.Now, HintDelay: DefaultHintDelay, Timeout: DefaultTimeout, AnswerLength: 2})
	require.NoError(t, err)

	assert.Equal(t, s.Phase(), restored.Phase())
	assert.Equal(t, s.Pool(), restored.Pool())
	assert.Equal(t, s.HintShown(), restored.HintShown())
	cur, _ := s.Current()
	restoredCur, _ := restored.Current()
	assert.Equal(t, cur, restoredCur)

	clock.Advance(4 * time.Second)
	assert.True(t, restored.Tick().TimedOut)
}

func TestRestoreRejectsBrokenState(t *testing.T) {
	_, err := Restore(State{}, DefaultOptions())
	require.ErrorIs(t, err, ErrNoItems)

	_, err = Restore(State{Original: []Item{cat}, Pool: []Item{cat}, Phase: PhaseFeedback}, DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = Restore(State{Original: []Item{cat}, Pool: []Item{cat}, Phase: Phase(9)}, DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRestoreDrawsWhenNoQuestionInFlight(t *testing.T) {
	restored, err := Restore(State{Original: []Item{cat}, Pool: []Item{cat}, Phase: PhaseQuiz}, DefaultOptions())
	require.NoError(t, err)
	current, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, cat, current)
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "正解", OutcomeCorrect.Label())
	assert.Equal(t, "不正解", OutcomeWrong.Label())
	assert.Equal(t, "時間切れ", OutcomeTimeout.Label())
	assert.False(t, OutcomeSkip.Logged())
	assert.True(t, strings.HasPrefix(PhaseFeedback.String(), "feed"))
}
