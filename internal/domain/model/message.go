package model

import "strings"

// InboundMessage is a decoded user message received through the webhook.
// It lives for the duration of one dispatch and is never stored.
type InboundMessage struct {
	UpdateID         int
	MessageID        int
	ChatID           int64
	SenderID         int64
	SenderName       string
	Text             string
	ReplyToMessageID int // 0 when the message is not a reply
}

// IsReply reports whether the message replies to another message.
func (m *InboundMessage) IsReply() bool { return m.ReplyToMessageID != 0 }

// HasText reports whether the message carries non-blank text.
func (m *InboundMessage) HasText() bool { return strings.TrimSpace(m.Text) != "" }

// Command returns the bot command of the message without the leading slash
// and without an @botname suffix, or "" when the text is not a command.
func (m *InboundMessage) Command() string {
	fields := strings.Fields(m.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

// RelayEntry correlates the copy forwarded to the admin with the original sender.
type RelayEntry struct {
	ForwardedID int
	SenderID    int64
}
