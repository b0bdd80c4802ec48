package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-relay-bot/internal/config"
	"telegram-relay-bot/internal/domain/ports/adapter"
	"telegram-relay-bot/internal/domain/ports/repository"
	tele "telegram-relay-bot/internal/infra/adapters/telegram"
	"telegram-relay-bot/internal/infra/api"
	"telegram-relay-bot/internal/infra/i18n"
	"telegram-relay-bot/internal/infra/logging"
	"telegram-relay-bot/internal/infra/memory"
	"telegram-relay-bot/internal/infra/metrics"
	red "telegram-relay-bot/internal/infra/redis"
	"telegram-relay-bot/internal/infra/sched"
	"telegram-relay-bot/internal/infra/worker"
	"telegram-relay-bot/internal/usecase"
)

// Set via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

// telegramBot is what the relay needs from a bot adapter.
type telegramBot interface {
	adapter.MessageSender
	adapter.WebhookRegistrar
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to optional YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted texts, noop bot with token=dev)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Str("version", version).Str("commit", commit).Bool("dev", cfg.Runtime.Dev).Msg("starting relay bot")

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Telegram ----
	var bot telegramBot
	if cfg.Runtime.Dev && cfg.Bot.Token == "dev" {
		logger.Warn().Msg("[DEV MODE] using noop telegram adapter")
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
	}

	// ---- Relay state ----
	relayStore := memory.NewRelayStore(cfg.Relay.MaxEntries, cfg.Relay.TTL)
	pruners := []sched.Pruner{}

	var guard repository.UpdateGuard
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		guard = red.NewUpdateGuard(redisClient, cfg.Redis.TTL, logger)
	} else {
		memGuard := memory.NewUpdateGuard(cfg.Redis.TTL, 10000)
		pruners = append(pruners, memGuard)
		guard = memGuard
	}

	relayUC := usecase.NewRelayUseCase(relayStore, bot, translator, usecase.RelayOptions{
		AdminID:     cfg.Bot.AdminID,
		SendTimeout: cfg.Bot.SendTimeout,
		Dev:         cfg.Runtime.Dev,
	}, logger)

	// Dispatches run on their own context so shutdown drains them instead of cutting sends short.
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	pool.Start(context.Background())

	// ---- HTTP webhook server ----
	srv := api.NewServer(relayUC, guard, pool, cfg.Webhook.Path, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Webhook.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("path", cfg.Webhook.Path).Msg("webhook server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	regCtx, regCancel := context.WithTimeout(ctx, cfg.Bot.SendTimeout)
	err = bot.RegisterWebhook(regCtx, cfg.WebhookURL())
	regCancel()
	if err != nil {
		logger.Fatal().Err(err).Str("url", cfg.WebhookURL()).Msg("register webhook")
	}

	// ---- Relay sweeper ----
	sweeper := sched.NewRelaySweeper(cfg.Relay.SweepInterval, relayStore, logger, pruners...)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Webhook.ShutdownTimeout)
	defer shutdownCancel()
	if err := bot.DeleteWebhook(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("delete webhook")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	pool.Stop()
	logger.Info().Msg("stopped")
}
