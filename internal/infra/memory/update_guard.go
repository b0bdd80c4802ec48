package memory

import (
	"context"
	"sync"
	"time"

	"telegram-relay-bot/internal/domain/ports/repository"
)

var _ repository.UpdateGuard = (*UpdateGuard)(nil)

// UpdateGuard remembers recently processed update ids in process memory.
type UpdateGuard struct {
	mu   sync.Mutex
	seen *lru[int, struct{}]
}

func NewUpdateGuard(ttl time.Duration, maxSize int) *UpdateGuard {
	return &UpdateGuard{seen: newLRU[int, struct{}](ttl, maxSize)}
}

// Seen atomically checks and marks updateID.
func (g *UpdateGuard) Seen(_ context.Context, updateID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen.get(updateID); ok {
		return true
	}
	g.seen.put(updateID, struct{}{})
	return false
}

func (g *UpdateGuard) Prune(_ context.Context) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seen.prune()
}
