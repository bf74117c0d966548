package game

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smith3v/tg-word-quiz/pkg/bot/resultlog"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
)

const InactivityTimeout = 30 * time.Minute

// Notices returned to callback queries that no longer apply.
const (
	NoticeNotActive = "This quiz is no longer active."
	NoticeStale     = "That button belongs to an earlier question."
	NoticeNextFirst = "Tap ▶ Next to continue."
)

// GameSession is one user's quiz in one chat.
type GameSession struct {
	chatID    int64
	userID    int64
	studentID int
	runID     string

	token           string
	promptMessageID int
	lastActivityAt  time.Time

	quiz *quiz.Session
}

func (s *GameSession) RunID() string {
	if s == nil {
		return ""
	}
	return s.runID
}

func (s *GameSession) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

func (s *GameSession) Phase() quiz.Phase {
	if s == nil || s.quiz == nil {
		return quiz.PhaseDone
	}
	return s.quiz.Phase()
}

// Step tells the caller what an operation changed and what to show next.
type Step struct {
	Handled bool
	// Invalid is set when typed text was not an acceptable answer.
	Invalid bool
	Notice  string
	// Replay is set when the verdict in Outcome was already shown and the
	// question is waiting for Next.
	Replay bool

	// Outcome is the question that just ended; PromptMessageID is the
	// message it was asked in.
	Outcome         *quiz.Outcome
	PromptMessageID int

	// Question is the newly asked item; Token goes into its buttons, or
	// into the restart button once Done.
	Question *quiz.Item
	Token    string

	Done      bool
	StatsText string
	// LogErr is set when the result could not be recorded.
	LogErr error
}

// GameManager serialises access to every quiz session.
type GameManager struct {
	mu       sync.Mutex
	sessions map[string]*GameSession
	now      func() time.Time
	opts     quiz.Options
	sink     resultlog.Sink
}

// NewGameManager initializes a manager with an injectable clock.
func NewGameManager(now func() time.Time, opts quiz.Options, sink resultlog.Sink) *GameManager {
	if now == nil {
		now = time.Now
	}
	if sink == nil {
		sink = resultlog.NopSink{}
	}
	opts.Now = now
	return &GameManager{
		sessions: make(map[string]*GameSession),
		now:      now,
		opts:     opts,
		sink:     sink,
	}
}

var DefaultManager = NewGameManager(nil, quiz.DefaultOptions(), nil)

func ResetDefaultManager(now func() time.Time, opts quiz.Options, sink resultlog.Sink) {
	DefaultManager = NewGameManager(now, opts, sink)
}

// getSessionKey builds the map key for a user's quiz in a chat.
func getSessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

// StartOrRestart replaces any running quiz with a fresh run over items and
// asks the first question.
func (m *GameManager) StartOrRestart(chatID, userID int64, studentID int, items []quiz.Item) (Step, error) {
	qs, err := quiz.NewSession(items, m.opts)
	if err != nil {
		return Step{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session := &GameSession{
		chatID:         chatID,
		userID:         userID,
		studentID:      studentID,
		runID:          uuid.NewString(),
		lastActivityAt: m.now(),
		quiz:           qs,
	}
	m.sessions[getSessionKey(chatID, userID)] = session

	step := Step{Handled: true}
	m.askLocked(session, &step)
	persistSessionState(session)
	logger.Info("quiz started", "user_id", userID, "run_id", session.runID, "items", len(items))
	return step, nil
}

// GetSession returns the user's session, resuming a persisted one if the
// process restarted since it was last used.
func (m *GameManager) GetSession(chatID, userID int64) *GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionLocked(chatID, userID)
}

// Submit judges a typed answer.
func (m *GameManager) Submit(ctx context.Context, chatID, userID int64, text string) Step {
	m.mu.Lock()
	session := m.sessionLocked(chatID, userID)
	if session == nil {
		m.mu.Unlock()
		return Step{}
	}

	step := Step{Handled: true, PromptMessageID: session.promptMessageID, Token: session.token}
	outcome, ok := session.quiz.Submit(text)
	switch {
	case ok:
		step.Outcome = &outcome
	case session.quiz.Phase() == quiz.PhaseQuiz:
		step.Invalid = true
	case session.quiz.Phase() == quiz.PhaseFeedback:
		step = replayLocked(session)
	default:
		step.Notice = NoticeNotActive
	}
	session.lastActivityAt = m.now()
	var record resultlog.Record
	logIt := false
	if ok {
		record, logIt = m.recordLocked(session, step.Outcome)
		persistSessionState(session)
	}
	m.mu.Unlock()

	if logIt {
		step.LogErr = m.appendRecord(ctx, record)
	}
	return step
}

// Skip gives up on the question identified by token.
func (m *GameManager) Skip(ctx context.Context, chatID, userID int64, token string) Step {
	m.mu.Lock()
	session, notice := m.tokenSessionLocked(chatID, userID, token)
	if session == nil {
		m.mu.Unlock()
		return Step{Notice: notice}
	}

	outcome, ok := session.quiz.Skip()
	if !ok {
		step := replayLocked(session)
		m.mu.Unlock()
		return step
	}
	session.lastActivityAt = m.now()
	step := Step{Handled: true, Outcome: &outcome, PromptMessageID: session.promptMessageID, Token: session.token}
	record, logIt := m.recordLocked(session, step.Outcome)
	persistSessionState(session)
	m.mu.Unlock()

	if logIt {
		step.LogErr = m.appendRecord(ctx, record)
	}
	return step
}

// Acknowledge leaves the feedback shown for token and asks the next
// question, or reports that the run is done.
func (m *GameManager) Acknowledge(chatID, userID int64, token string) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, notice := m.tokenSessionLocked(chatID, userID, token)
	if session == nil {
		return Step{Notice: notice}
	}
	previousMessageID := session.promptMessageID
	if !session.quiz.Acknowledge() {
		return Step{Notice: NoticeStale}
	}
	session.lastActivityAt = m.now()

	step := Step{Handled: true, PromptMessageID: previousMessageID}
	m.askLocked(session, &step)
	persistSessionState(session)
	return step
}

// Restart refills the word list of the run identified by token.
func (m *GameManager) Restart(chatID, userID int64, token string) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, notice := m.tokenSessionLocked(chatID, userID, token)
	if session == nil {
		return Step{Notice: notice}
	}
	previousMessageID := session.promptMessageID
	session.quiz.Restart()
	session.runID = uuid.NewString()
	session.lastActivityAt = m.now()

	step := Step{Handled: true, PromptMessageID: previousMessageID}
	m.askLocked(session, &step)
	persistSessionState(session)
	logger.Info("quiz restarted", "user_id", userID, "run_id", session.runID)
	return step
}

// Stop ends the user's quiz and returns the final stats text.
func (m *GameManager) Stop(chatID, userID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.sessionLocked(chatID, userID)
	if session == nil {
		return "", false
	}
	delete(m.sessions, getSessionKey(chatID, userID))
	deleteSessionState(chatID, userID)
	return formatStats(session.quiz.Stats()), true
}

// SetPromptMessageID stores the Telegram message holding the question
// identified by token.
func (m *GameManager) SetPromptMessageID(chatID, userID int64, token string, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[getSessionKey(chatID, userID)]
	if session == nil {
		return
	}
	if token != "" && session.token != token {
		return
	}
	session.promptMessageID = messageID
	persistSessionState(session)
}

// replayLocked hands back the verdict still waiting for Next, so the
// caller can offer the Next button again.
func replayLocked(session *GameSession) Step {
	last, ok := session.quiz.Last()
	if !ok || session.quiz.Phase() != quiz.PhaseFeedback {
		return Step{Notice: NoticeNotActive}
	}
	return Step{
		Handled:         true,
		Replay:          true,
		Notice:          NoticeNextFirst,
		Outcome:         &last,
		PromptMessageID: session.promptMessageID,
		Token:           session.token,
	}
}

// Prompt returns the question still open under token together with its
// revealed hint. ok is false once the question was answered, skipped or
// timed out.
func (m *GameManager) Prompt(chatID, userID int64, token string) (quiz.Item, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[getSessionKey(chatID, userID)]
	if session == nil || token == "" || session.token != token || session.quiz.Phase() != quiz.PhaseQuiz {
		return quiz.Item{}, "", false
	}
	item, ok := session.quiz.Current()
	if !ok {
		return quiz.Item{}, "", false
	}
	return item, session.quiz.HintText(), true
}

// askLocked draws the next question into step, or fills in the done
// summary when the pool is exhausted.
func (m *GameManager) askLocked(session *GameSession, step *Step) {
	session.token = m.nextTokenLocked()
	session.promptMessageID = 0
	step.Token = session.token
	if item, ok := session.quiz.Next(); ok {
		step.Question = &item
		return
	}
	step.Done = true
	step.StatsText = formatStats(session.quiz.Stats())
}

func (m *GameManager) sessionLocked(chatID, userID int64) *GameSession {
	key := getSessionKey(chatID, userID)
	if session := m.sessions[key]; session != nil {
		return session
	}
	session, err := m.resumeLocked(chatID, userID)
	if err != nil {
		logger.Error("failed to resume quiz session", "user_id", userID, "error", err)
		return nil
	}
	return session
}

func (m *GameManager) tokenSessionLocked(chatID, userID int64, token string) (*GameSession, string) {
	session := m.sessionLocked(chatID, userID)
	if session == nil {
		return nil, NoticeNotActive
	}
	if token == "" || session.token != token {
		return nil, NoticeStale
	}
	return session, ""
}

func (m *GameManager) recordLocked(session *GameSession, outcome *quiz.Outcome) (resultlog.Record, bool) {
	if outcome == nil {
		return resultlog.Record{}, false
	}
	return resultlog.NewRecord(m.now(), session.userID, session.studentID, session.runID, *outcome)
}

func (m *GameManager) appendRecord(ctx context.Context, record resultlog.Record) error {
	if err := m.sink.Append(ctx, record); err != nil {
		logger.Error("failed to record quiz result", "user_id", record.UserID, "run_id", record.RunID, "error", err)
		return err
	}
	return nil
}

func (m *GameManager) nextTokenLocked() string {
	return strconv.FormatInt(rand.Int63(), 36)
}

// AnswerLength is the number of letters a student has to type.
func (m *GameManager) AnswerLength() int {
	return m.opts.AnswerLength
}
