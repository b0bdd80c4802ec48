package memory

import (
	"context"
	"sync"
	"time"

	"telegram-relay-bot/internal/domain/ports/repository"
)

var _ repository.RelayRepository = (*RelayStore)(nil)

// RelayStore is the process-lifetime map from forwarded message id to the
// original sender id. Access is serialized by a mutex.
type RelayStore struct {
	mu    sync.Mutex
	cache *lru[int, int64]
}

// NewRelayStore creates an empty store. maxEntries <= 0 disables the size cap,
// ttl <= 0 disables expiry.
func NewRelayStore(maxEntries int, ttl time.Duration) *RelayStore {
	return &RelayStore{cache: newLRU[int, int64](ttl, maxEntries)}
}

func (s *RelayStore) Record(forwardedID int, senderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.put(forwardedID, senderID)
}

func (s *RelayStore) Lookup(forwardedID int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.get(forwardedID)
}

func (s *RelayStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.len()
}

// Prune removes expired correlations and returns how many were dropped.
func (s *RelayStore) Prune(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.prune()
}
