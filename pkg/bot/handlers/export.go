package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-word-quiz/pkg/bot/importexport"
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

func HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in handleExport")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	items, err := importexport.LoadItems(userID)
	if err != nil {
		logger.Error("failed to fetch word list for export", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to export your word list. Please try again later.")
		return
	}
	if len(items) == 0 {
		sendText(ctx, b, chatID, "You have no words to export.")
		return
	}

	data, err := importexport.BuildExportCSV(items)
	if err != nil {
		logger.Error("failed to build export CSV", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to export your word list. Please try again later.")
		return
	}

	caption := fmt.Sprintf("Your word list (%d words).", len(items))
	if err := sendDocument(ctx, b, chatID, importexport.ExportFilename(time.Now()), data, caption); err != nil {
		logger.Error("failed to send export document", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to export your word list. Please try again later.")
	}
}

func HandleResults(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleResults")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	results, err := db.ListResults(userID)
	if err != nil {
		logger.Error("failed to fetch results", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to export your results. Please try again later.")
		return
	}
	if len(results) == 0 {
		sendText(ctx, b, chatID, "No results recorded yet. Send /quiz to start.")
		return
	}

	data, err := importexport.BuildResultsXLSX(results)
	if err != nil {
		logger.Error("failed to build results workbook", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to export your results. Please try again later.")
		return
	}

	caption := fmt.Sprintf("Your results (%d answers).", len(results))
	if err := sendDocument(ctx, b, chatID, importexport.ResultsFilename(time.Now()), data, caption); err != nil {
		logger.Error("failed to send results document", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to export your results. Please try again later.")
	}
}

func sendDocument(ctx context.Context, b *bot.Bot, chatID int64, filename string, data []byte, caption string) error {
	_, err := b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(data),
		},
		Caption: caption,
	})
	return err
}
