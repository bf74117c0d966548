package db

import (
	"time"
)

const (
	SessionCleanupInterval = time.Hour
	SessionTTL             = 24 * time.Hour
)

// CleanupExpiredSessions removes quiz snapshots whose ExpiresAt has passed.
func CleanupExpiredSessions(now time.Time) (int64, error) {
	if DB == nil {
		return 0, nil
	}
	res := DB.Where("expires_at <= ?", now).Delete(&QuizSessionState{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
