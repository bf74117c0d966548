// Package resultlog records judged answers for later review.
package resultlog

import (
	"context"
	"errors"
	"time"

	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"gorm.io/gorm"
)

const TimestampLayout = "2006-01-02 15:04:05"

var ErrNoDatabase = errors.New("resultlog: database is not initialized")

type Record struct {
	Timestamp time.Time
	StudentID int
	UserID    int64
	RunID     string
	Word      string
	Prompt    string
	Result    string
}

// NewRecord builds the row for outcome. ok is false for outcomes that are
// not logged.
func NewRecord(now time.Time, userID int64, studentID int, runID string, outcome quiz.Outcome) (Record, bool) {
	if !outcome.Kind.Logged() {
		return Record{}, false
	}
	return Record{
		Timestamp: now,
		StudentID: studentID,
		UserID:    userID,
		RunID:     runID,
		Word:      outcome.Item.Answer,
		Prompt:    outcome.Item.Prompt,
		Result:    outcome.Kind.Label(),
	}, true
}

type Sink interface {
	Append(ctx context.Context, r Record) error
}

// GormSink appends records to the quiz_results table.
type GormSink struct {
	DB func() *gorm.DB
}

// NewGormSink returns a sink bound to the package-level db.DB.
func NewGormSink() *GormSink {
	return &GormSink{DB: func() *gorm.DB { return db.DB }}
}

func (s *GormSink) Append(ctx context.Context, r Record) error {
	var gdb *gorm.DB
	if s != nil && s.DB != nil {
		gdb = s.DB()
	}
	if gdb == nil {
		return ErrNoDatabase
	}
	row := db.QuizResult{
		UserID:     r.UserID,
		StudentID:  r.StudentID,
		RunID:      r.RunID,
		Word:       r.Word,
		Prompt:     r.Prompt,
		Result:     r.Result,
		RecordedAt: r.Timestamp.UTC(),
	}
	return gdb.WithContext(ctx).Create(&row).Error
}

type NopSink struct{}

func (NopSink) Append(context.Context, Record) error { return nil }

// New picks the sink for the results.enabled setting.
func New(enabled bool) Sink {
	if enabled {
		return NewGormSink()
	}
	return NopSink{}
}
