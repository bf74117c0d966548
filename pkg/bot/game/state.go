package game

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func LoadSessionState(chatID, userID int64, now time.Time) (*db.QuizSessionState, error) {
	if db.DB == nil {
		return nil, nil
	}
	var row db.QuizSessionState
	err := db.DB.
		Where("chat_id = ? AND user_id = ? AND expires_at > ?", chatID, userID, now).
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// ResumeAll loads every unexpired persisted session into memory so that
// pending questions keep timing out after a restart.
func (m *GameManager) ResumeAll() (int, error) {
	if db.DB == nil {
		return 0, nil
	}
	var rows []db.QuizSessionState
	if err := db.DB.Where("expires_at > ?", m.now()).Find(&rows).Error; err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	resumed := 0
	for i := range rows {
		session, err := m.sessionFromRow(&rows[i])
		if err != nil {
			logger.Warn("dropping unreadable quiz session", "user_id", rows[i].UserID, "error", err)
			deleteSessionState(rows[i].ChatID, rows[i].UserID)
			continue
		}
		m.sessions[getSessionKey(session.chatID, session.userID)] = session
		resumed++
	}
	return resumed, nil
}

func (m *GameManager) resumeLocked(chatID, userID int64) (*GameSession, error) {
	row, err := LoadSessionState(chatID, userID, m.now())
	if err != nil || row == nil {
		return nil, err
	}
	session, err := m.sessionFromRow(row)
	if err != nil {
		deleteSessionState(chatID, userID)
		return nil, err
	}
	m.sessions[getSessionKey(chatID, userID)] = session
	logger.Info("quiz session resumed", "user_id", userID, "run_id", session.runID)
	return session, nil
}

func (m *GameManager) sessionFromRow(row *db.QuizSessionState) (*GameSession, error) {
	var state quiz.State
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, err
	}
	qs, err := quiz.Restore(state, m.opts)
	if err != nil {
		return nil, err
	}
	return &GameSession{
		chatID:          row.ChatID,
		userID:          row.UserID,
		studentID:       row.StudentID,
		runID:           row.RunID,
		token:           row.Token,
		promptMessageID: row.PromptMessageID,
		lastActivityAt:  m.now(),
		quiz:            qs,
	}, nil
}

func persistSessionState(session *GameSession) {
	if session == nil || db.DB == nil {
		return
	}
	row, err := buildSessionState(session)
	if err != nil {
		logger.Error("failed to build quiz session state", "user_id", session.userID, "error", err)
		return
	}
	if err := db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "chat_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"run_id", "student_id", "state", "token", "prompt_message_id",
			"last_activity_at", "expires_at", "updated_at",
		}),
	}).Create(row).Error; err != nil {
		logger.Error("failed to persist quiz session state", "user_id", session.userID, "error", err)
	}
}

func buildSessionState(session *GameSession) (*db.QuizSessionState, error) {
	raw, err := json.Marshal(session.quiz.Snapshot())
	if err != nil {
		return nil, err
	}
	lastActivity := session.lastActivityAt
	if lastActivity.IsZero() {
		lastActivity = time.Now()
	}
	lastActivity = lastActivity.UTC()
	return &db.QuizSessionState{
		ChatID:          session.chatID,
		UserID:          session.userID,
		RunID:           session.runID,
		StudentID:       session.studentID,
		State:           datatypes.JSON(raw),
		Token:           session.token,
		PromptMessageID: session.promptMessageID,
		LastActivityAt:  lastActivity,
		ExpiresAt:       lastActivity.Add(db.SessionTTL),
	}, nil
}

func deleteSessionState(chatID, userID int64) {
	if db.DB == nil {
		return
	}
	if err := db.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&db.QuizSessionState{}).Error; err != nil {
		logger.Error("failed to delete quiz session state", "user_id", userID, "error", err)
	}
}
