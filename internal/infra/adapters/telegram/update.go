package telegram

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-relay-bot/internal/domain"
	"telegram-relay-bot/internal/domain/model"
)

// DecodeUpdate parses a webhook body. Errors wrap domain.ErrMalformedUpdate.
func DecodeUpdate(body io.Reader) (*tgbotapi.Update, error) {
	var up tgbotapi.Update
	if err := json.NewDecoder(body).Decode(&up); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpdate, err)
	}
	return &up, nil
}

// ToInboundMessage extracts the relay-relevant fields of a new message.
// Updates without a message or without a sender are reported as false.
func ToInboundMessage(up *tgbotapi.Update) (*model.InboundMessage, bool) {
	if up == nil || up.Message == nil || up.Message.From == nil {
		return nil, false
	}
	m := up.Message
	in := &model.InboundMessage{
		UpdateID:   up.UpdateID,
		MessageID:  m.MessageID,
		ChatID:     m.From.ID,
		SenderID:   m.From.ID,
		SenderName: displayName(m.From),
		Text:       m.Text,
	}
	if m.Chat != nil {
		in.ChatID = m.Chat.ID
	}
	if m.ReplyToMessage != nil {
		in.ReplyToMessageID = m.ReplyToMessage.MessageID
	}
	return in, true
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.UserName != "" {
		name = "@" + u.UserName
	}
	return name
}
