package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-word-quiz/pkg/bot/importexport"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

func DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		logger.Error("received invalid update in defaultHandler")
		return
	}

	// Check if Chat is zero value
	if update.Message.Chat.ID == 0 {
		logger.Error("chat ID is zero in defaultHandler")
		return
	}

	if update.Message.Document != nil {
		importexport.HandleDocumentImport(ctx, b, update)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text != "" && !strings.HasPrefix(text, "/") {
		if handled := handleQuizTextAttempt(ctx, b, update); handled {
			return
		}
	}
	sendText(ctx, b, update.Message.Chat.ID, usageText)
}
