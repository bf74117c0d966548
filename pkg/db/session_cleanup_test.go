package db

import (
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := gdb.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	DB = gdb

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}
	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
		DB = nil
	})
	return gdb
}

func TestCleanupExpiredSessions(t *testing.T) {
	gdb := openTestDB(t, "session_cleanup")

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	raw := datatypes.JSON([]byte("{}"))

	expired := QuizSessionState{
		ChatID:         1,
		UserID:         1,
		State:          raw,
		LastActivityAt: now.Add(-48 * time.Hour),
		ExpiresAt:      now.Add(-SessionTTL),
	}
	active := QuizSessionState{
		ChatID:         2,
		UserID:         2,
		State:          raw,
		LastActivityAt: now,
		ExpiresAt:      now.Add(SessionTTL),
	}
	if err := gdb.Create(&expired).Error; err != nil {
		t.Fatalf("failed to seed expired session: %v", err)
	}
	if err := gdb.Create(&active).Error; err != nil {
		t.Fatalf("failed to seed active session: %v", err)
	}

	deleted, err := CleanupExpiredSessions(now)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted row, got %d", deleted)
	}

	var remaining []QuizSessionState
	if err := gdb.Find(&remaining).Error; err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ChatID != 2 {
		t.Fatalf("expected only the active session to remain, got %+v", remaining)
	}
}

func TestCleanupExpiredSessionsWithoutDB(t *testing.T) {
	DB = nil
	deleted, err := CleanupExpiredSessions(time.Now())
	if err != nil || deleted != 0 {
		t.Fatalf("expected no-op without a database, got %d, %v", deleted, err)
	}
}
