package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "oauth:state:"

// StateStore holds single-use OAuth state tokens.
type StateStore struct {
	rc *redis.Client

	mu      sync.Mutex
	entries map[string]time.Time
}

func NewStateStore(rc *redis.Client) *StateStore {
	return &StateStore{rc: rc, entries: map[string]time.Time{}}
}

// Save stores an OAuth state token with TTL to mitigate CSRF.
func (s *StateStore) Save(ctx context.Context, state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if s.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		if err := s.rc.Set(rctx, statePrefix+state, "1", ttl).Err(); err == nil {
			return
		}
	}
	s.mu.Lock()
	s.entries[state] = time.Now().Add(ttl)
	s.mu.Unlock()
}

// Consume validates and removes a state token.
func (s *StateStore) Consume(ctx context.Context, state string) bool {
	if state == "" {
		return false
	}
	if s.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		if v, err := s.rc.GetDel(rctx, statePrefix+state).Result(); err == nil {
			return v != ""
		}
	}

	s.mu.Lock()
	expiresAt, ok := s.entries[state]
	if ok {
		delete(s.entries, state)
	}
	s.mu.Unlock()
	return ok && time.Now().Before(expiresAt)
}

// Sweep drops OAuth states that were never consumed.
func (s *StateStore) Sweep(now time.Time) int {
	if s == nil {
		return 0
	}
	removed := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for state, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, state)
			removed++
		}
	}
	return removed
}
