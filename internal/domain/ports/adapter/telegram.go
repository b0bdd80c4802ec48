// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// MessageSender delivers a text message to a Telegram chat and returns the
// provider-assigned id of the sent message.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
}

// WebhookRegistrar registers and removes the bot webhook with Telegram.
type WebhookRegistrar interface {
	RegisterWebhook(ctx context.Context, url string) error
	DeleteWebhook(ctx context.Context) error
}
