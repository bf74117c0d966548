package db

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/smith3v/tg-word-quiz/pkg/config"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Export DB variable
var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) error {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		logger.Error("unsupported database configuration", "driver", cfg.Driver, "error", err)
		return err
	}
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}
	DB, err = gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.Driver, "error", err)
		return err
	}
	if err := DB.AutoMigrate(Models()...); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	return nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := "host=" + cfg.Host +
			" user=" + cfg.User +
			" password=" + cfg.Password +
			" dbname=" + cfg.DBName +
			" port=" + strconv.Itoa(cfg.Port) +
			" sslmode=" + cfg.SSLMode
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// LoadQuizItems returns the user's word list in upload order.
func LoadQuizItems(userID int64) ([]QuizItem, error) {
	var items []QuizItem
	if err := DB.Where("user_id = ?", userID).Order("position ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// StudentID returns the student number stored for the user, or 0.
func StudentID(userID int64) (int, error) {
	var settings UserSettings
	err := DB.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return settings.StudentID, nil
}

// SetStudentID stores the student number for the user.
func SetStudentID(userID int64, studentID int) error {
	settings := UserSettings{UserID: userID, StudentID: studentID}
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_id", "updated_at"}),
	}).Create(&settings).Error
}

// ListResults returns the user's result log, oldest first.
func ListResults(userID int64) ([]QuizResult, error) {
	var results []QuizResult
	if err := DB.Where("user_id = ?", userID).Order("recorded_at ASC, id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
