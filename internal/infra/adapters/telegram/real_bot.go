package telegram

import (
	"context"
	"errors"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-relay-bot/internal/config"
	"telegram-relay-bot/internal/domain/ports/adapter"
)

// maxMessageRunes is Telegram's limit for a single text message.
const maxMessageRunes = 4096

var (
	_ adapter.MessageSender    = (*RealTelegramBotAdapter)(nil)
	_ adapter.WebhookRegistrar = (*RealTelegramBotAdapter)(nil)
)

// RealTelegramBotAdapter sends messages and manages the webhook through the Bot API.
type RealTelegramBotAdapter struct {
	bot *tgbotapi.BotAPI
	cfg *config.BotConfig
	log *zerolog.Logger
}

// NewRealTelegramBotAdapter authenticates with Telegram (getMe). Every API call
// made by the adapter is bounded by cfg.SendTimeout.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &http.Client{Timeout: cfg.SendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, err
	}

	botLog := logger.With().Str("component", "TelegramBot").Logger()
	botLog.Info().Str("username", bot.Self.UserName).Int64("id", bot.Self.ID).Msg("telegram bot authorized")

	return &RealTelegramBotAdapter{bot: bot, cfg: cfg, log: &botLog}, nil
}

// SendMessage sends text to chatID and returns the id Telegram assigned to it.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageRunes))
	sent, err := callWithContext(ctx, func() (tgbotapi.Message, error) {
		return r.bot.Send(msg)
	})
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// RegisterWebhook points Telegram at url.
func (r *RealTelegramBotAdapter) RegisterWebhook(ctx context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	if _, err := callWithContext(ctx, func() (*tgbotapi.APIResponse, error) {
		return r.bot.Request(wh)
	}); err != nil {
		return err
	}
	r.log.Info().Str("url", url).Msg("webhook registered")
	return nil
}

// DeleteWebhook removes the webhook. Pending updates are kept so nothing is
// lost between deployments.
func (r *RealTelegramBotAdapter) DeleteWebhook(ctx context.Context) error {
	if _, err := callWithContext(ctx, func() (*tgbotapi.APIResponse, error) {
		return r.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false})
	}); err != nil {
		return err
	}
	r.log.Info().Msg("webhook deleted")
	return nil
}

// callWithContext runs a blocking tgbotapi call and gives up when ctx is done.
// The call itself is still bounded by the HTTP client timeout.
func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.v, res.err
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
