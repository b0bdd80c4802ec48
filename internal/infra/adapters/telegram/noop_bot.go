package telegram

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"telegram-relay-bot/internal/domain/ports/adapter"
)

var (
	_ adapter.MessageSender    = (*NoopBotAdapter)(nil)
	_ adapter.WebhookRegistrar = (*NoopBotAdapter)(nil)
)

// NoopBotAdapter implements the Telegram ports for local/dev runs.
// It logs messages instead of sending them and hands out increasing message ids.
type NoopBotAdapter struct {
	lastID atomic.Int64
	log    *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	noopLog := logger.With().Str("component", "NoopTelegram").Logger()
	return &NoopBotAdapter{log: &noopLog}
}

// SendMessage logs the message and simulates a small delay.
func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	select {
	case <-time.After(10 * time.Millisecond):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	id := int(b.lastID.Add(1))
	b.log.Info().Int64("chat_id", chatID).Int("message_id", id).Str("text", text).Msg("send")
	return id, nil
}

func (b *NoopBotAdapter) RegisterWebhook(_ context.Context, url string) error {
	b.log.Info().Str("url", url).Msg("RegisterWebhook called")
	return nil
}

func (b *NoopBotAdapter) DeleteWebhook(_ context.Context) error {
	b.log.Info().Msg("DeleteWebhook called")
	return nil
}
