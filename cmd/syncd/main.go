package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nate-dsc/finsync/internal/config"
	"github.com/nate-dsc/finsync/internal/database"
	"github.com/nate-dsc/finsync/internal/notify"
	"github.com/nate-dsc/finsync/internal/recurring"
	"github.com/nate-dsc/finsync/internal/repository"
	"github.com/nate-dsc/finsync/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.LogLevel)

	if cfg.DatabaseURI == "" {
		log.Fatal().Msg("DATABASE_URI is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	recurringRepo := repository.NewRecurringRepository(db)
	cardRepo := repository.NewCardRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	warningRepo := repository.NewWarningRepository(db)

	var sink recurring.WarningSink = warningRepo
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Telegram API")
		}
		sink = notify.NewTelegramSink(warningRepo, api, cfg.TelegramChatID, log.Logger)
		log.Info().Int64("chat_id", cfg.TelegramChatID).Msg("Telegram warning forwarding enabled")
	}

	svc := recurring.NewService(recurringRepo, cardRepo, categoryRepo, sink, log.Logger)
	sched := scheduler.New(svc, cfg.SyncInterval, log.Logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	sched.Start(ctx)
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
