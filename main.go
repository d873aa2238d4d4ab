package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/config"
	"github.com/BatmanBruc/handy-image-converter/internal/conversion"
	"github.com/BatmanBruc/handy-image-converter/internal/converter"
	"github.com/BatmanBruc/handy-image-converter/internal/handlers"
	"github.com/BatmanBruc/handy-image-converter/internal/logging"
	"github.com/BatmanBruc/handy-image-converter/internal/middleware"
	"github.com/BatmanBruc/handy-image-converter/internal/scheduler"
	"github.com/BatmanBruc/handy-image-converter/store"
	"github.com/BatmanBruc/handy-image-converter/types"
)

func main() {
	cfg, err := config.Load("config.env")
	if err != nil {
		slog.Error("failed to load config", slog.String("event", "startup"), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		slog.Error("failed to build logger", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var conversations types.ConversationStore
	switch cfg.StateBackend {
	case config.BackendRedis:
		rdb, err := store.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("addr", cfg.Redis.Addr()), slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
		conversations = store.NewRedisConversationStore(rdb, cfg.PendingTTL)
	default:
		conversations = store.NewMemoryConversationStore(cfg.PendingTTL)
	}

	conv, err := conversion.NewHandler(conversations, converter.NewDefaultConverter(converter.Config{}), cfg.ScratchDir, log)
	if err != nil {
		log.Error("failed to prepare scratch dir", slog.String("dir", cfg.ScratchDir), slog.String("err", err.Error()))
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}

	h := handlers.NewHandlers(conv, httpClient, log)
	mw := middleware.New(log)

	b, err := bot.New(
		cfg.Token,
		bot.WithHTTPClient(cfg.PollTimeout, httpClient),
		bot.WithErrorsHandler(func(err error) {
			log.Error("telegram error", slog.String("event", "tg.error"), slog.String("err", err.Error()))
		}),
	)
	if err != nil {
		log.Error("failed to create bot", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			log.Warn("failed to drop pending updates", slog.String("err", err.Error()))
		}
	}

	janitor := scheduler.NewJanitor(conversations, conv.ScratchDir(), scheduler.Config{
		Interval: cfg.SweepInterval,
		MaxAge:   cfg.PendingTTL,
	}, log)
	janitor.Start()
	defer janitor.Stop()

	handlerChain := middleware.Chain(h.MainHandler,
		mw.RecoverMiddleware,
		mw.AnalyzeMessageMiddleware,
		mw.LoggingMiddleware,
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	log.Info("bot started",
		slog.String("event", "startup"),
		slog.String("backend", cfg.StateBackend),
		slog.String("scratch_dir", conv.ScratchDir()),
	)
	b.Start(ctx)
	log.Info("bot stopped", slog.String("event", "shutdown"))
}
