package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-word-quiz/pkg/bot/game"
	"github.com/smith3v/tg-word-quiz/pkg/bot/importexport"
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"github.com/smith3v/tg-word-quiz/pkg/ui"
)

const resultNotSavedText = "⚠️ The result was not saved. The quiz goes on."

func HandleQuizStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleQuizStart")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if update.Message.Chat.Type != models.ChatTypePrivate {
		sendText(ctx, b, chatID, "The /quiz command works only in private chat.")
		return
	}

	studentID, err := db.StudentID(userID)
	if err != nil {
		logger.Error("failed to load student id", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the quiz. Please try again later.")
		return
	}
	if studentID == 0 {
		sendText(ctx, b, chatID, "Set your student number first, for example: /id 1234567")
		return
	}

	items, err := importexport.LoadItems(userID)
	if err != nil {
		logger.Error("failed to load word list", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the quiz. Please try again later.")
		return
	}

	step, err := game.DefaultManager.StartOrRestart(chatID, userID, studentID, items)
	if errors.Is(err, quiz.ErrNoItems) {
		sendText(ctx, b, chatID, "You have no words yet. Upload a CSV or XLSX file with 『単語』 and 『意味』 columns.")
		return
	}
	if err != nil {
		logger.Error("failed to start quiz", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the quiz. Please try again later.")
		return
	}
	sendNextStep(ctx, b, chatID, userID, step)
}

func HandleStop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleStop")
		return
	}
	statsText, ok := game.DefaultManager.Stop(update.Message.Chat.ID, update.Message.From.ID)
	if !ok {
		sendText(ctx, b, update.Message.Chat.ID, "No quiz is running. Send /quiz to start one.")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, "Quiz stopped.\n"+statsText)
}

func HandleQuizCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleQuizCallback")
		return
	}

	callbackID := update.CallbackQuery.ID
	answerCallback := func(text string) {
		if callbackID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer quiz callback query", "error", err)
		}
	}

	action, err := ui.ParseCallbackData(update.CallbackQuery.Data)
	if err != nil {
		answerCallback(game.NoticeNotActive)
		return
	}

	message := update.CallbackQuery.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil || message.Message.Chat.ID == 0 {
		answerCallback("Message missing")
		return
	}
	chatID := message.Message.Chat.ID
	userID := update.CallbackQuery.From.ID

	var step game.Step
	switch action.Verb {
	case ui.VerbSkip:
		step = game.DefaultManager.Skip(ctx, chatID, userID, action.Token)
	case ui.VerbNext:
		step = game.DefaultManager.Acknowledge(chatID, userID, action.Token)
	case ui.VerbRestart:
		step = game.DefaultManager.Restart(chatID, userID, action.Token)
	}
	if !step.Handled {
		answerCallback(step.Notice)
		if step.Notice == game.NoticeStale {
			clearKeyboard(ctx, b, chatID, message.Message.ID)
		}
		return
	}
	if step.Replay && step.Outcome != nil {
		// The pressed message may have lost its Next button to a late edit.
		answerCallback(step.Notice)
		showFeedback(ctx, b, chatID, message.Message.ID, *step.Outcome, step.Token)
		return
	}
	answerCallback("")

	if step.Outcome != nil {
		showFeedback(ctx, b, chatID, step.PromptMessageID, *step.Outcome, step.Token)
		if step.LogErr != nil {
			sendText(ctx, b, chatID, resultNotSavedText)
		}
		return
	}

	clearKeyboard(ctx, b, chatID, message.Message.ID)
	sendNextStep(ctx, b, chatID, userID, step)
}

// handleQuizTextAttempt treats plain text as an answer when a quiz is
// running. It reports false when the user has no quiz.
func handleQuizTextAttempt(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		return false
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	step := game.DefaultManager.Submit(ctx, chatID, userID, update.Message.Text)
	if !step.Handled {
		return false
	}

	switch {
	case step.Invalid:
		sendText(ctx, b, chatID, game.InvalidAnswerText(game.DefaultManager.AnswerLength()))
	case step.Replay:
		sendNextReminder(ctx, b, chatID, step.Token)
	case step.Outcome != nil:
		showFeedback(ctx, b, chatID, step.PromptMessageID, *step.Outcome, step.Token)
		if step.LogErr != nil {
			sendText(ctx, b, chatID, resultNotSavedText)
		}
	case step.Notice != "":
		sendText(ctx, b, chatID, step.Notice)
	}
	return true
}

// DeliverTickEvents shows hints and timeouts produced by GameManager.Tick.
func DeliverTickEvents(ctx context.Context, b *bot.Bot, events []game.TickEvent) {
	for _, event := range events {
		if event.Outcome != nil {
			showFeedback(ctx, b, event.ChatID, event.PromptMessageID, *event.Outcome, event.Token)
			if event.LogErr != nil {
				sendText(ctx, b, event.ChatID, resultNotSavedText)
			}
			continue
		}
		if event.Hint == "" || event.PromptMessageID == 0 {
			continue
		}
		// An answer may have arrived since the tick; its verdict owns the
		// message now.
		item, hint, open := game.DefaultManager.Prompt(event.ChatID, event.UserID, event.Token)
		if !open {
			continue
		}
		keyboard, err := ui.PromptKeyboard(event.Token)
		if err != nil {
			logger.Error("failed to build prompt keyboard", "user_id", event.UserID, "error", err)
			continue
		}
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      event.ChatID,
			MessageID:   event.PromptMessageID,
			Text:        game.PromptText(item, game.DefaultManager.AnswerLength(), hint),
			ReplyMarkup: keyboard,
		}); err != nil {
			logger.Error("failed to show hint", "user_id", event.UserID, "error", err)
		}
	}
}

// sendNextStep sends the question in step, or the summary when the run is
// done.
func sendNextStep(ctx context.Context, b *bot.Bot, chatID, userID int64, step game.Step) {
	if step.Done {
		keyboard, err := ui.DoneKeyboard(step.Token)
		if err != nil {
			logger.Error("failed to build done keyboard", "user_id", userID, "error", err)
			return
		}
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        game.DoneText(step.StatsText),
			ReplyMarkup: keyboard,
		}); err != nil {
			logger.Error("failed to send quiz summary", "user_id", userID, "error", err)
		}
		return
	}
	if step.Question == nil {
		return
	}

	msg, err := sendQuestion(ctx, b, chatID, *step.Question, step.Token)
	if err != nil {
		logger.Error("failed to send quiz question", "user_id", userID, "error", err)
		return
	}
	game.DefaultManager.SetPromptMessageID(chatID, userID, step.Token, msg.ID)
}

func sendQuestion(ctx context.Context, b *bot.Bot, chatID int64, item quiz.Item, token string) (*models.Message, error) {
	keyboard, err := ui.PromptKeyboard(token)
	if err != nil {
		return nil, fmt.Errorf("build prompt keyboard: %w", err)
	}
	return b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        game.PromptText(item, game.DefaultManager.AnswerLength(), ""),
		ReplyMarkup: keyboard,
	})
}

// showFeedback turns the question message into the verdict with a Next
// button. Without a known message id the verdict is sent as a new message.
func showFeedback(ctx context.Context, b *bot.Bot, chatID int64, messageID int, outcome quiz.Outcome, token string) {
	keyboard, err := ui.FeedbackKeyboard(token)
	if err != nil {
		logger.Error("failed to build feedback keyboard", "chat_id", chatID, "error", err)
		return
	}
	text := game.FeedbackText(outcome)
	if messageID != 0 {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: keyboard,
		})
		if err == nil {
			return
		}
		logger.Warn("failed to edit quiz prompt, sending feedback instead", "chat_id", chatID, "error", err)
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send quiz feedback", "chat_id", chatID, "error", err)
	}
}

// sendNextReminder posts a fresh Next button for the verdict still open
// under token.
func sendNextReminder(ctx context.Context, b *bot.Bot, chatID int64, token string) {
	keyboard, err := ui.FeedbackKeyboard(token)
	if err != nil {
		logger.Error("failed to build feedback keyboard", "chat_id", chatID, "error", err)
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        game.NoticeNextFirst,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send next reminder", "chat_id", chatID, "error", err)
	}
}

func clearKeyboard(ctx context.Context, b *bot.Bot, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: ui.EmptyKeyboard(),
	}); err != nil {
		logger.Error("failed to clear quiz buttons", "chat_id", chatID, "error", err)
	}
}
