package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"telegram-relay-bot/internal/domain"
	"telegram-relay-bot/internal/domain/model"
	"telegram-relay-bot/internal/domain/ports/adapter"
	"telegram-relay-bot/internal/domain/ports/repository"
	"telegram-relay-bot/internal/infra/i18n"
	"telegram-relay-bot/internal/infra/logging"
	"telegram-relay-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Route names the branch a message was dispatched to.
type Route string

const (
	RouteStart       Route = "start"
	RouteAdminReply  Route = "admin_reply"
	RouteAdminDirect Route = "admin_direct"
	RouteSubmission  Route = "submission"
)

// Send targets, used as metric labels.
const (
	targetAdmin = "admin"
	targetUser  = "user"
	targetAck   = "ack"
)

// addressed matches the "user_id: reply text" form the admin can use instead of a reply.
var addressed = regexp.MustCompile(`(?s)^\s*(\d+)\s*:\s*(.*)$`)

// RelayUseCase routes one inbound message between end users and the admin.
type RelayUseCase interface {
	// Dispatch handles msg completely. The returned error describes why the
	// message could not be relayed; the affected party has already been told
	// where possible, so callers only need to log it.
	Dispatch(ctx context.Context, msg *model.InboundMessage) (Route, error)
}

type RelayOptions struct {
	AdminID     int64
	SendTimeout time.Duration
	Dev         bool // log message texts unredacted
}

type relayUC struct {
	relay  repository.RelayRepository
	sender adapter.MessageSender
	tr     *i18n.Translator
	opts   RelayOptions
	log    *zerolog.Logger
}

func NewRelayUseCase(
	relay repository.RelayRepository,
	sender adapter.MessageSender,
	tr *i18n.Translator,
	opts RelayOptions,
	logger *zerolog.Logger,
) RelayUseCase {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	relayLog := logger.With().Str("component", "RelayUseCase").Logger()
	return &relayUC{
		relay:  relay,
		sender: sender,
		tr:     tr,
		opts:   opts,
		log:    &relayLog,
	}
}

func (uc *relayUC) Dispatch(ctx context.Context, msg *model.InboundMessage) (Route, error) {
	if msg == nil {
		return "", domain.ErrInvalidArgument
	}
	ctx = logging.WithTgID(ctx, msg.SenderID)
	defer logging.TraceDuration(logging.With(ctx, uc.log), "RelayUseCase.Dispatch")()

	var route Route
	var err error
	switch {
	case msg.Command() == "start":
		route, err = RouteStart, uc.ack(ctx, msg.ChatID, uc.tr.T("welcome_message"))
	case msg.SenderID == uc.opts.AdminID && msg.IsReply():
		route, err = RouteAdminReply, uc.handleAdminReply(ctx, msg)
	case msg.SenderID == uc.opts.AdminID:
		route, err = RouteAdminDirect, uc.handleAdminDirect(ctx, msg)
	default:
		route, err = RouteSubmission, uc.handleSubmission(ctx, msg)
	}
	metrics.IncUpdate(string(route))
	return route, err
}

func (uc *relayUC) handleAdminReply(ctx context.Context, msg *model.InboundMessage) error {
	if !msg.HasText() {
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_admin_empty_reply"))
		return domain.ErrEmptyText
	}
	userID, ok := uc.relay.Lookup(msg.ReplyToMessageID)
	if !ok {
		metrics.IncRoutingMiss()
		logging.With(ctx, uc.log).Info().Int("reply_to", msg.ReplyToMessageID).Msg("admin replied to an untracked message")
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_relay_miss"))
		return fmt.Errorf("reply to %d: %w", msg.ReplyToMessageID, domain.ErrRelayMiss)
	}
	return uc.deliverToUser(ctx, msg.ChatID, userID, msg.Text)
}

func (uc *relayUC) handleAdminDirect(ctx context.Context, msg *model.InboundMessage) error {
	m := addressed.FindStringSubmatch(msg.Text)
	if m == nil {
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_admin_usage"))
		return domain.ErrBadAddress
	}
	userID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || userID == 0 {
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_admin_usage"))
		return domain.ErrBadAddress
	}
	if strings.TrimSpace(m[2]) == "" {
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_admin_empty_reply"))
		return domain.ErrEmptyText
	}
	return uc.deliverToUser(ctx, msg.ChatID, userID, m[2])
}

func (uc *relayUC) deliverToUser(ctx context.Context, adminChatID, userID int64, text string) error {
	log := logging.With(ctx, uc.log)
	reply := uc.tr.T("admin_reply_template", strings.TrimSpace(text))
	if _, err := uc.send(ctx, userID, reply, targetUser); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to deliver admin reply")
		_ = uc.ack(ctx, adminChatID, uc.tr.T("error_send_failed", errors.Unwrap(err)))
		return err
	}
	metrics.IncRelayed("to_user")
	log.Info().Int64("user_id", userID).Str("text", logging.Redact(text, uc.opts.Dev)).Msg("admin reply delivered")
	_ = uc.ack(ctx, adminChatID, uc.tr.T("admin_reply_sent"))
	return nil
}

func (uc *relayUC) handleSubmission(ctx context.Context, msg *model.InboundMessage) error {
	log := logging.With(ctx, uc.log)
	if !msg.HasText() {
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_text_required"))
		return domain.ErrEmptyText
	}

	forward := uc.tr.T("forward_template", msg.SenderName, msg.SenderID, msg.Text)
	forwardedID, err := uc.send(ctx, uc.opts.AdminID, forward, targetAdmin)
	if err != nil {
		log.Error().Err(err).Msg("failed to forward submission to admin")
		_ = uc.ack(ctx, msg.ChatID, uc.tr.T("error_submission_failed"))
		return err
	}

	uc.relay.Record(forwardedID, msg.SenderID)
	metrics.SetRelayMapEntries(uc.relay.Len())
	metrics.IncRelayed("to_admin")
	log.Info().
		Int("forwarded_id", forwardedID).
		Str("text", logging.Redact(msg.Text, uc.opts.Dev)).
		Msg("submission forwarded to admin")

	return uc.ack(ctx, msg.ChatID, uc.tr.T("receipt_confirmation"))
}

// ack sends a notice back to the chat that triggered the dispatch. Failures
// are logged and returned but never retried.
func (uc *relayUC) ack(ctx context.Context, chatID int64, text string) error {
	if _, err := uc.send(ctx, chatID, text, targetAck); err != nil {
		logging.With(ctx, uc.log).Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send notice")
		return err
	}
	return nil
}

// send performs one bounded outbound send. Errors wrap domain.ErrSendFailed
// around the provider error.
func (uc *relayUC) send(ctx context.Context, chatID int64, text, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.SendTimeout)
	defer cancel()

	start := time.Now()
	id, err := uc.sender.SendMessage(ctx, chatID, text)
	metrics.ObserveSend(time.Since(start), err == nil)
	if err != nil {
		metrics.IncSendFailure(target)
		return 0, &sendError{cause: err}
	}
	return id, nil
}

type sendError struct{ cause error }

func (e *sendError) Error() string { return domain.ErrSendFailed.Error() + ": " + e.cause.Error() }

// Unwrap exposes the provider error; Is matches domain.ErrSendFailed.
func (e *sendError) Unwrap() error { return e.cause }

func (e *sendError) Is(target error) bool { return target == domain.ErrSendFailed }
