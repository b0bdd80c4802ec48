package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-relay-bot/internal/domain"
	"telegram-relay-bot/internal/domain/model"
	"telegram-relay-bot/internal/domain/ports/repository"
	tele "telegram-relay-bot/internal/infra/adapters/telegram"
	"telegram-relay-bot/internal/infra/logging"
	"telegram-relay-bot/internal/infra/metrics"
	"telegram-relay-bot/internal/infra/worker"
	"telegram-relay-bot/internal/usecase"
)

// maxUpdateBytes bounds a single webhook body.
const maxUpdateBytes = 1 << 20

// Server receives Telegram webhook deliveries and hands them to the relay.
type Server struct {
	relay       usecase.RelayUseCase
	guard       repository.UpdateGuard
	pool        *worker.Pool
	webhookPath string
	log         *zerolog.Logger
}

// NewServer wires the webhook endpoint. guard and pool are optional: without a
// guard every delivery is processed, without a pool dispatch runs inline.
func NewServer(relay usecase.RelayUseCase, guard repository.UpdateGuard, pool *worker.Pool, webhookPath string, logger *zerolog.Logger) *Server {
	if webhookPath == "" {
		webhookPath = "/webhook"
	}
	apiLog := logger.With().Str("component", "WebhookServer").Logger()
	return &Server{
		relay:       relay,
		guard:       guard,
		pool:        pool,
		webhookPath: webhookPath,
		log:         &apiLog,
	}
}

// Router returns the HTTP handler with all routes attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID, RequestLog(s.log), Recover(s.log))

	r.Post(s.webhookPath, s.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// handleWebhook always answers 200 so Telegram does not redeliver updates the
// relay cannot or will not process.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// the dispatch may outlive the request
	ctx := context.WithoutCancel(r.Context())
	log := logging.With(ctx, s.log)

	up, err := tele.DecodeUpdate(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err != nil {
		metrics.IncMalformedUpdate()
		log.Warn().Err(err).Msg("webhook payload rejected")
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx = logging.WithUpdateID(ctx, up.UpdateID)

	if s.guard != nil && up.UpdateID != 0 && s.guard.Seen(ctx, up.UpdateID) {
		metrics.IncDuplicateUpdate()
		logging.With(ctx, s.log).Info().Msg("duplicate update skipped")
		w.WriteHeader(http.StatusOK)
		return
	}

	msg, ok := tele.ToInboundMessage(up)
	if !ok {
		metrics.IncUpdate("ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	task := func(context.Context) error {
		s.dispatch(ctx, msg)
		return nil
	}
	if s.pool == nil {
		_ = task(ctx)
	} else if err := s.pool.Submit(task); err != nil {
		logging.With(ctx, s.log).Debug().Err(err).Msg("dispatching inline")
		_ = task(ctx)
	}
	w.WriteHeader(http.StatusOK)
}

// dispatch is the per-event error boundary: nothing that happens while
// handling one message escapes to the caller.
func (s *Server) dispatch(ctx context.Context, msg *model.InboundMessage) {
	log := logging.With(ctx, s.log)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("dispatch panic recovered")
		}
	}()

	route, err := s.relay.Dispatch(ctx, msg)
	switch {
	case err == nil:
		log.Debug().Str("route", string(route)).Msg("update dispatched")
	case errors.Is(err, domain.ErrSendFailed):
		log.Error().Err(err).Str("route", string(route)).Msg("update dispatched with send failure")
	default:
		log.Info().Err(err).Str("route", string(route)).Msg("update rejected")
	}
}
