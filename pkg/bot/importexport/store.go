package importexport

import (
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"gorm.io/gorm"
)

// ReplaceQuizItems swaps the user's word list for items in one transaction.
func ReplaceQuizItems(userID int64, items []quiz.Item) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.QuizItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]db.QuizItem, 0, len(items))
		for i, item := range items {
			rows = append(rows, db.QuizItem{
				UserID:   userID,
				Position: i,
				Prompt:   item.Prompt,
				Answer:   item.Answer,
			})
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

// LoadItems returns the stored word list as quiz items.
func LoadItems(userID int64) ([]quiz.Item, error) {
	rows, err := db.LoadQuizItems(userID)
	if err != nil {
		return nil, err
	}
	items := make([]quiz.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, quiz.Item{Prompt: row.Prompt, Answer: row.Answer})
	}
	return items, nil
}
