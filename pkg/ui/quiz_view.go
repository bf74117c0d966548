package ui

import (
	"github.com/go-telegram/bot/models"
)

// PromptKeyboard is shown under an open question.
func PromptKeyboard(token string) (*models.InlineKeyboardMarkup, error) {
	return singleButton("⏭ Skip", BuildSkipCallback, token)
}

// FeedbackKeyboard is shown under a judged question.
func FeedbackKeyboard(token string) (*models.InlineKeyboardMarkup, error) {
	return singleButton("▶ Next", BuildNextCallback, token)
}

// DoneKeyboard is shown under the summary of a finished run.
func DoneKeyboard(token string) (*models.InlineKeyboardMarkup, error) {
	return singleButton("🔁 Restart", BuildRestartCallback, token)
}

// EmptyKeyboard removes the buttons of a message that is no longer active.
func EmptyKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{},
	}
}

func singleButton(label string, build func(string) (string, error), token string) (*models.InlineKeyboardMarkup, error) {
	data, err := build(token)
	if err != nil {
		return nil, err
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: label, CallbackData: data},
			},
		},
	}, nil
}
