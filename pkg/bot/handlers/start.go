package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

const usageText = "英単語テスト\n\n" +
	"1. Set your student number: /id 1234567\n" +
	"2. Upload a CSV or XLSX word list with 『単語』 and 『意味』 columns.\n" +
	"3. Send /quiz and type the first letters of each word.\n\n" +
	"Other commands:\n" +
	"/stop: end the current quiz\n" +
	"/export: download your word list\n" +
	"/results: download your results"

var validate = validator.New()

func HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleStart")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, usageText)
}

// HandleStudentID stores the number sent with /id. Results are filed under
// this number, so /quiz refuses to start without it.
func HandleStudentID(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleStudentID")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	studentID, err := parseStudentID(update.Message.Text)
	if err != nil {
		current, lookupErr := db.StudentID(userID)
		if lookupErr != nil {
			logger.Error("failed to load student id", "user_id", userID, "error", lookupErr)
		}
		text := "Send your 7-digit student number, for example: /id 1234567"
		if current != 0 {
			text = fmt.Sprintf("Your student number is %07d.\n%s", current, text)
		}
		sendText(ctx, b, chatID, text)
		return
	}

	if err := db.SetStudentID(userID, studentID); err != nil {
		logger.Error("failed to store student id", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to save your student number. Please try again later.")
		return
	}
	logger.Info("student id set", "user_id", userID)
	sendText(ctx, b, chatID, fmt.Sprintf("Student number set to %07d.", studentID))
}

func parseStudentID(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected one argument, got %d", len(fields)-1)
	}
	if err := validate.Var(fields[1], "numeric,len=7"); err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, err
	}
	if err := validate.Var(id, "min=1000000,max=9999999"); err != nil {
		return 0, err
	}
	return id, nil
}

func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
