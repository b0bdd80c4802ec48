//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"telegram-relay-bot/internal/domain/ports/adapter"
	"telegram-relay-bot/internal/infra/i18n"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("load translator: %v", err)
	}
	return tr
}

// ---- Mock MessageSender ----

type SentMessage struct {
	ChatID int64
	Text   string
	ID     int
}

// MockSender records every send and hands out increasing message ids.
type MockSender struct {
	mu     sync.Mutex
	Sent   []SentMessage
	nextID int

	// FailFor makes sends to the given chat fail with the error.
	FailFor map[int64]error
	// SendFunc overrides the default behavior when set.
	SendFunc func(ctx context.Context, chatID int64, text string) (int, error)
}

var _ adapter.MessageSender = (*MockSender)(nil)

func NewMockSender() *MockSender {
	return &MockSender{nextID: 1000, FailFor: map[int64]error{}}
}

func (m *MockSender) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, chatID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[chatID]; ok {
		return 0, err
	}
	m.nextID++
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text, ID: m.nextID})
	return m.nextID, nil
}

// To returns the messages sent to chatID, in order.
func (m *MockSender) To(chatID int64) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, s := range m.Sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
