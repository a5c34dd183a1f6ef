package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "jwt:blacklist:"

// TokenBlacklist remembers revoked token ids until their natural expiry.
// It uses Redis when available and a process-local map otherwise.
type TokenBlacklist struct {
	rc *redis.Client

	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, entries: map[string]time.Time{}}
}

// Revoke stores the token id until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return
	}
	if b.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		if err := b.rc.Set(rctx, blacklistPrefix+tokenID, "1", ttl).Err(); err == nil {
			return
		}
	}
	b.mu.Lock()
	b.entries[tokenID] = expiresAt
	b.mu.Unlock()
}

// IsRevoked reports whether the token id was revoked before natural expiration.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) bool {
	if b.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		n, err := b.rc.Exists(rctx, blacklistPrefix+tokenID).Result()
		if err == nil && n > 0 {
			return true
		}
		// fail open on redis errors and fall through to the local map
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[tokenID]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		b.mu.Lock()
		delete(b.entries, tokenID)
		b.mu.Unlock()
		return false
	}
	return true
}

// Sweep forgets locally revoked tokens that have expired anyway.
func (b *TokenBlacklist) Sweep(now time.Time) int {
	if b == nil {
		return 0
	}
	removed := 0
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, expiresAt := range b.entries {
		if now.After(expiresAt) {
			delete(b.entries, id)
			removed++
		}
	}
	return removed
}
