package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/smith3v/tg-word-quiz/pkg/bot/game"
	"github.com/smith3v/tg-word-quiz/pkg/bot/handlers"
	"github.com/smith3v/tg-word-quiz/pkg/bot/resultlog"
	"github.com/smith3v/tg-word-quiz/pkg/config"
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/scheduler"
	"github.com/smith3v/tg-word-quiz/pkg/ui"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := configOptions(cmd)
			if err != nil {
				return err
			}
			if err := config.LoadConfig(opts); err != nil {
				return err
			}
			return serve(cmd.Context(), config.AppConfig)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	if err := logger.Configure(logger.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(cfg.Database); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	game.ResetDefaultManager(nil, cfg.Quiz.SessionOptions(), resultlog.New(cfg.Results.Enabled))
	resumed, err := game.DefaultManager.ResumeAll()
	if err != nil {
		logger.Error("failed to resume quiz sessions", "error", err)
	} else if resumed > 0 {
		logger.Info("resumed quiz sessions", "count", resumed)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := bot.New(cfg.Telegram.Token, bot.WithDefaultHandler(handlers.DefaultHandler))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	registerHandlers(b)

	jobs := scheduler.New(cfg.Quiz.TickInterval, db.SessionCleanupInterval, scheduler.Jobs{
		Tick: func(ctx context.Context) {
			handlers.DeliverTickEvents(ctx, b, game.DefaultManager.Tick(ctx))
		},
		Cleanup: db.CleanupExpiredSessions,
	})
	if err := jobs.Start(ctx); err != nil {
		return err
	}
	defer jobs.Stop()

	logger.Info("Starting bot...")
	b.Start(ctx)
	return nil
}

func registerHandlers(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/id", bot.MatchTypePrefix, handlers.HandleStudentID)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/quiz", bot.MatchTypeExact, handlers.HandleQuizStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stop", bot.MatchTypeExact, handlers.HandleStop)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypeExact, handlers.HandleExport)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/results", bot.MatchTypeExact, handlers.HandleResults)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.CallbackPrefix, bot.MatchTypePrefix, handlers.HandleQuizCallback)
}
