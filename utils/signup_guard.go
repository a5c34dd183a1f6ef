package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

func signupKey(parts ...string) string {
	key := "signup"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// SignupGuard throttles account creation per client IP: a short cooldown between
// attempts and a cap on successful signups per day. Redis errors fail open.
type SignupGuard struct {
	rc       *redis.Client
	cooldown time.Duration
	maxDaily int
	now      func() time.Time

	mu        sync.Mutex
	attempts  map[string]time.Time
	successes map[string]int
}

func NewSignupGuard(rc *redis.Client, cooldown time.Duration, maxDaily int) *SignupGuard {
	return &SignupGuard{
		rc:        rc,
		cooldown:  cooldown,
		maxDaily:  maxDaily,
		now:       time.Now,
		attempts:  map[string]time.Time{},
		successes: map[string]int{},
	}
}

// TryAttempt starts the cooldown for ip and reports whether the attempt may proceed.
func (g *SignupGuard) TryAttempt(ctx context.Context, ip string) bool {
	if g == nil || g.cooldown <= 0 {
		return true
	}
	if g.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		ok, err := g.rc.SetNX(rctx, signupKey("cooldown", ip), "1", g.cooldown).Result()
		if err == nil {
			return ok
		}
	}

	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()
	if until, ok := g.attempts[ip]; ok && now.Before(until) {
		return false
	}
	g.attempts[ip] = now.Add(g.cooldown)
	return true
}

// UnderDailyLimit reports whether ip may create another account today.
func (g *SignupGuard) UnderDailyLimit(ctx context.Context, ip string) bool {
	if g == nil || g.maxDaily <= 0 {
		return true
	}
	day := g.now().UTC().Format("20060102")
	if g.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		n, err := g.rc.Get(rctx, signupKey("day", ip, day)).Int()
		if err == nil || err == redis.Nil {
			return n < g.maxDaily
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.successes[ip+"|"+day] < g.maxDaily
}

// RecordSuccess counts a created account against ip for today.
func (g *SignupGuard) RecordSuccess(ctx context.Context, ip string) {
	if g == nil || g.maxDaily <= 0 {
		return
	}
	now := g.now().UTC()
	day := now.Format("20060102")
	if g.rc != nil {
		rctx, cancel := redisCtx(ctx)
		defer cancel()
		key := signupKey("day", ip, day)
		if err := g.rc.Incr(rctx, key).Err(); err == nil {
			ttl := time.Until(now.Truncate(24 * time.Hour).Add(24 * time.Hour))
			_ = g.rc.Expire(rctx, key, ttl).Err()
			return
		}
	}

	g.mu.Lock()
	g.successes[ip+"|"+day]++
	g.mu.Unlock()
}

// Sweep drops expired in-memory cooldowns and counters from previous days.
func (g *SignupGuard) Sweep(now time.Time) int {
	if g == nil {
		return 0
	}
	today := "|" + now.UTC().Format("20060102")
	removed := 0
	g.mu.Lock()
	defer g.mu.Unlock()
	for ip, until := range g.attempts {
		if !now.Before(until) {
			delete(g.attempts, ip)
			removed++
		}
	}
	for key := range g.successes {
		if len(key) < len(today) || key[len(key)-len(today):] != today {
			delete(g.successes, key)
			removed++
		}
	}
	return removed
}
