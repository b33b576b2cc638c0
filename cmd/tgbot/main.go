package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MyGens/internal/config"
	"MyGens/internal/logger"
	"MyGens/internal/notify"
	"MyGens/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if !cfg.TelegramEnabled() {
		slog.Error("TOKEN_BOT or ADMIN_PEER_ID missing")
		os.Exit(1)
	}
	if cfg.DatabaseDriver == repo.DriverNone {
		slog.Error("ticket callbacks need DATABASE_DRIVER postgres or sqlite")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, db, err := repo.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bot := notify.NewTelegram(cfg.TokenBot, cfg.AdminPeerID)
	run(ctx, bot, store)
}

// run long-polls for inline button presses until ctx is done.
func run(ctx context.Context, bot *notify.Telegram, store repo.Repository) {
	offset := 0
	for ctx.Err() == nil {
		updates, err := bot.GetUpdates(ctx, offset)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Warn("getUpdates", "error", err)
			sleep(ctx, 2*time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.CallbackQuery == nil {
				continue
			}
			if err := bot.HandleCallback(ctx, store, u.CallbackQuery); err != nil {
				slog.Error("callback", "data", u.CallbackQuery.Data, "error", err)
			}
		}
		sleep(ctx, time.Second)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
