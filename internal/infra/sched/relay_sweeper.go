package sched

import (
	"context"
	"time"

	"telegram-relay-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Pruner drops expired in-memory entries and reports how many were removed.
type Pruner interface {
	Prune(ctx context.Context) int
}

// RelayStore is the relay map as seen by the sweeper.
type RelayStore interface {
	Pruner
	Len() int
}

// RelaySweeper periodically prunes expired relay correlations (and any other
// in-memory TTL sets) and publishes the relay map size.
type RelaySweeper struct {
	interval time.Duration
	relay    RelayStore
	others   []Pruner
	log      *zerolog.Logger
}

func NewRelaySweeper(interval time.Duration, relay RelayStore, logger *zerolog.Logger, others ...Pruner) *RelaySweeper {
	sweepLog := logger.With().Str("component", "RelaySweeper").Logger()
	return &RelaySweeper{
		interval: interval,
		relay:    relay,
		others:   others,
		log:      &sweepLog,
	}
}

func (w *RelaySweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting relay sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping relay sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RelaySweeper) sweep(ctx context.Context) {
	n := w.relay.Prune(ctx)
	for _, p := range w.others {
		p.Prune(ctx)
	}
	metrics.SetRelayMapEntries(w.relay.Len())
	if n > 0 {
		metrics.AddRelayMapPruned(n)
		w.log.Info().Int("count", n).Msg("expired relay entries pruned")
	}
}
