package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gatekeeper-tg-bot/internal/config"
	"gatekeeper-tg-bot/internal/history"
	"gatekeeper-tg-bot/internal/registry"
	"gatekeeper-tg-bot/internal/scheduler"
	"gatekeeper-tg-bot/internal/session"
	"gatekeeper-tg-bot/internal/telegram"
	"gatekeeper-tg-bot/internal/tracker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	var logLevel slog.Level
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if cfg.Logging.JSONFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Create root context with cancellation
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// WaitGroup for tracking active goroutines
	var wg sync.WaitGroup

	// Approval audit log (optional)
	var hist history.Store
	if cfg.History.DBPath != "" {
		store, err := history.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			logger.Error("failed to open history store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		hist = store
	} else {
		hist = history.Disabled()
	}

	// Volatile process state: all of it is rebuilt from scratch on
	// every start, which is what the startup grace window covers for.
	reg := registry.New()
	trk := tracker.New()
	sessions := session.NewStore()
	sched := scheduler.New()
	grace := scheduler.StartGrace(cfg.Moderation.GracePeriod)

	// Initialize Telegram bot
	bot, err := telegram.NewBot(cfg.Telegram, cfg.Moderation, reg, trk, sessions, sched, grace, hist, logger)
	if err != nil {
		logger.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	// Start bot in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bot.Run(rootCtx); err != nil && err != context.Canceled {
			logger.Error("bot error", "error", err)
		}
	}()

	logger.Info("bot started",
		"admin", cfg.Telegram.AdminUsername,
		"grace_period", cfg.Moderation.GracePeriod,
		"ad_delete_delay", cfg.Moderation.AdDeleteDelay(),
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig)

	// Cancel root context to signal all goroutines
	rootCancel()

	// Wait for graceful shutdown with timeout
	shutdownTimeout := 30 * time.Second
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timeout exceeded, forcing exit")
	}
}
