package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gatekeeper-tg-bot/internal/config"
	"gatekeeper-tg-bot/internal/history"
	"gatekeeper-tg-bot/internal/registry"
	"gatekeeper-tg-bot/internal/scheduler"
	"gatekeeper-tg-bot/internal/session"
	"gatekeeper-tg-bot/internal/tracker"
)

// Bot represents the Telegram bot
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	cfg     config.TelegramConfig
	logger  *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(
	cfg config.TelegramConfig,
	moderation config.ModerationConfig,
	reg *registry.Registry,
	trk *tracker.Tracker,
	sessions *session.Store,
	sched *scheduler.Scheduler,
	grace *scheduler.Grace,
	hist history.Store,
	logger *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	gate := NewAdminGate(cfg.AdminUsername)
	handler := NewHandler(api, api.Self, gate, reg, trk, sessions, sched, grace, hist,
		moderation.AdDeleteDelay(), logger)

	return &Bot{
		api:     api,
		handler: handler,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run starts the bot and blocks until context is cancelled. Updates are
// dispatched one at a time: handlers never run concurrently with each
// other, only with armed timers.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollingTimeout

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping bot")
			b.api.StopReceivingUpdates()

			// Drain whatever the poller already buffered so no
			// received event is silently dropped.
			deadline := time.After(5 * time.Second)
			for {
				select {
				case update, ok := <-updates:
					if !ok {
						return ctx.Err()
					}
					b.handler.HandleUpdate(update)
				case <-deadline:
					return ctx.Err()
				}
			}

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handler.HandleUpdate(update)
		}
	}
}

// GetBotInfo returns information about the bot
func (b *Bot) GetBotInfo() tgbotapi.User {
	return b.api.Self
}
