package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-relay-bot/internal/domain/ports/repository"
)

var _ repository.UpdateGuard = (*UpdateGuard)(nil)

// UpdateGuard marks processed update ids with SETNX so redeliveries are
// recognized across instances sharing the same Redis.
type UpdateGuard struct {
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewUpdateGuard(client RedisClient, ttl time.Duration, logger *zerolog.Logger) *UpdateGuard {
	guardLog := logger.With().Str("component", "RedisUpdateGuard").Logger()
	return &UpdateGuard{client: client, ttl: ttl, log: &guardLog}
}

// Seen fails open: a Redis error is logged and the update is processed.
func (g *UpdateGuard) Seen(ctx context.Context, updateID int) bool {
	fresh, err := g.client.SetNX(ctx, UpdateKey(updateID), 1, g.ttl)
	if err != nil {
		g.log.Warn().Err(err).Int("update_id", updateID).Msg("update guard unavailable")
		return false
	}
	return !fresh
}

func UpdateKey(updateID int) string {
	return fmt.Sprintf("relay:update:%d", updateID)
}
