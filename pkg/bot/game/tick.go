package game

import (
	"context"

	"github.com/smith3v/tg-word-quiz/pkg/bot/resultlog"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
)

// TickEvent is a time-based change that has to be shown to the user.
type TickEvent struct {
	ChatID          int64
	UserID          int64
	PromptMessageID int
	Token           string
	Item            quiz.Item

	// Hint is set when the first letter was just revealed.
	Hint string
	// Outcome is set when the question timed out.
	Outcome *quiz.Outcome
	LogErr  error
}

// Tick advances the clock-driven transitions of every session and drops
// idle sessions from memory. Their persisted state stays until it expires.
func (m *GameManager) Tick(ctx context.Context) []TickEvent {
	type pending struct {
		index  int
		record resultlog.Record
	}

	m.mu.Lock()
	now := m.now()
	var events []TickEvent
	var records []pending
	for key, session := range m.sessions {
		if session == nil {
			delete(m.sessions, key)
			continue
		}
		if now.Sub(session.lastActivityAt) > InactivityTimeout {
			logger.Debug("evicting idle quiz session", "user_id", session.userID, "run_id", session.runID)
			delete(m.sessions, key)
			continue
		}

		item, asking := session.quiz.Current()
		result := session.quiz.Tick()
		if !asking || (!result.HintRevealed && !result.TimedOut) {
			continue
		}

		event := TickEvent{
			ChatID:          session.chatID,
			UserID:          session.userID,
			PromptMessageID: session.promptMessageID,
			Token:           session.token,
			Item:            item,
		}
		if result.HintRevealed {
			event.Hint = result.Hint
		}
		if result.TimedOut {
			outcome := result.Outcome
			event.Outcome = &outcome
			if record, ok := m.recordLocked(session, &outcome); ok {
				records = append(records, pending{index: len(events), record: record})
			}
		}
		events = append(events, event)
		persistSessionState(session)
	}
	m.mu.Unlock()

	for _, p := range records {
		events[p.index].LogErr = m.appendRecord(ctx, p.record)
	}
	return events
}
