package db

import (
	"time"

	"gorm.io/datatypes"
)

// QuizItem is one row of a user's uploaded word list.
type QuizItem struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   int64  `gorm:"index:idx_quiz_item_user_position"`
	Position int    `gorm:"not null;default:0;index:idx_quiz_item_user_position"`
	Prompt   string `gorm:"not null"` // 意味
	Answer   string `gorm:"not null"` // 単語
}

type UserSettings struct {
	ID        uint  `gorm:"primaryKey"`
	UserID    int64 `gorm:"uniqueIndex"`
	StudentID int   `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuizResult is an append-only log row: one per judged or timed-out question.
type QuizResult struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     int64     `gorm:"index"`
	StudentID  int       `gorm:"index;not null"`
	RunID      string    `gorm:"index;not null"`
	Word       string    `gorm:"not null"`
	Prompt     string    `gorm:"not null;default:''"`
	Result     string    `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null;index"`
}

// QuizSessionState is the resumable snapshot of an in-flight quiz.
type QuizSessionState struct {
	ID              uint           `gorm:"primaryKey"`
	ChatID          int64          `gorm:"index;uniqueIndex:idx_quiz_session_state_user_chat"`
	UserID          int64          `gorm:"index;uniqueIndex:idx_quiz_session_state_user_chat"`
	RunID           string         `gorm:"not null;default:''"`
	StudentID       int            `gorm:"not null;default:0"`
	State           datatypes.JSON `gorm:"not null"`
	Token           string         `gorm:"not null;default:''"`
	PromptMessageID int            `gorm:"not null;default:0"`
	LastActivityAt  time.Time      `gorm:"not null"`
	ExpiresAt       time.Time      `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{&QuizItem{}, &UserSettings{}, &QuizResult{}, &QuizSessionState{}}
}
