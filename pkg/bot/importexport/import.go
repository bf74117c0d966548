package importexport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-word-quiz/pkg/config"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

const maxUploadBytes = 5 << 20

// SupportedFile reports whether ParseWordList understands fileName.
func SupportedFile(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".tsv", ".txt", ".xlsx":
		return true
	}
	return false
}

func HandleDocumentImport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.Document == nil || update.Message.From == nil {
		logger.Error("invalid update in HandleDocumentImport")
		return
	}
	if update.Message.Chat.ID == 0 {
		logger.Error("chat ID is zero in HandleDocumentImport")
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	doc := update.Message.Document
	logger.Info("Uploading word list", "file_name", doc.FileName, "user_id", userID)

	reply := func(text string) {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
			logger.Error("failed to send import reply", "user_id", userID, "error", err)
		}
	}

	if !SupportedFile(doc.FileName) {
		reply("Please upload the word list as a CSV or XLSX file.")
		return
	}

	data, err := downloadDocument(ctx, b, doc.FileID)
	if err != nil {
		logger.Error("failed to download word list", "user_id", userID, "error", err)
		reply("Failed to download the file. Please try again.")
		return
	}

	list, err := ParseWordList(doc.FileName, data)
	if err != nil {
		logger.Warn("failed to parse word list", "user_id", userID, "file_name", doc.FileName, "error", err)
		reply(ParseErrorMessage(err))
		return
	}
	if len(list.Items) == 0 {
		reply("No words found in the file.")
		return
	}

	if err := ReplaceQuizItems(userID, list.Items); err != nil {
		logger.Error("failed to store word list", "user_id", userID, "error", err)
		reply("Failed to save your word list. Please try again later.")
		return
	}

	reply(fmt.Sprintf("Loaded %d words, skipped %d rows. Send /quiz to start.", len(list.Items), list.Skipped))
}

// ParseErrorMessage turns a parse failure into the text shown to the user.
func ParseErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingColumns):
		return "The file needs 『単語』 and 『意味』 columns."
	case errors.Is(err, ErrUndecodable):
		return "Could not read the file. Please save it as UTF-8 or Shift-JIS."
	case errors.Is(err, ErrUnsupportedFile):
		return "Please upload the word list as a CSV or XLSX file."
	default:
		return "Failed to read the file. Please check its format."
	}
}

func downloadDocument(ctx context.Context, b *bot.Bot, fileID string) ([]byte, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", config.AppConfig.Telegram.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("file larger than %d bytes", maxUploadBytes)
	}
	return data, nil
}
