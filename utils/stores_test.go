package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlacklistMemoryFallback(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist(nil)

	assert.False(t, bl.IsRevoked(ctx, "jti-1"))
	bl.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	assert.True(t, bl.IsRevoked(ctx, "jti-1"))
	assert.False(t, bl.IsRevoked(ctx, "jti-2"))

	// already expired tokens are not worth remembering
	bl.Revoke(ctx, "jti-3", time.Now().Add(-time.Minute))
	assert.False(t, bl.IsRevoked(ctx, "jti-3"))
}

func TestStateStoreSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(nil)

	store.Save(ctx, "abc", time.Minute)
	assert.True(t, store.Consume(ctx, "abc"))
	assert.False(t, store.Consume(ctx, "abc"))
	assert.False(t, store.Consume(ctx, ""))
	assert.False(t, store.Consume(ctx, "unknown"))
}

func TestCacheDisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	var nilCache *Cache
	assert.False(t, nilCache.Enabled())

	c := NewCache(nil)
	c.SetJSON(ctx, "k", []int{1}, time.Minute)
	var out []int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.BumpGeneration(ctx, "gen", time.Minute)
	assert.Zero(t, c.Generation(ctx, "gen"))
}

func TestCacheWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.True(t, c.Enabled())

	c.SetJSON(ctx, "k", []int{1, 2}, time.Minute)
	var out []int
	require.True(t, c.GetJSON(ctx, "k", &out))
	assert.Equal(t, []int{1, 2}, out)

	assert.Zero(t, c.Generation(ctx, "gen"))
	c.BumpGeneration(ctx, "gen", time.Hour)
	c.BumpGeneration(ctx, "gen", time.Hour)
	assert.EqualValues(t, 2, c.Generation(ctx, "gen"))
	assert.Equal(t, time.Hour, mr.TTL("gen"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, "k", &out))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("  <b>hello</b> "))
	assert.Equal(t, []string{"go", "sql"}, SanitizeList([]string{"go", "<script></script>", " sql "}))
	assert.Equal(t, "<em>ok</em>", SanitizeRich(`<em>ok</em><script>alert(1)</script>`))
}

func TestSignupGuardMemoryFallback(t *testing.T) {
	ctx := context.Background()
	guard := NewSignupGuard(nil, time.Minute, 2)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	assert.True(t, guard.TryAttempt(ctx, "10.0.0.1"))
	assert.False(t, guard.TryAttempt(ctx, "10.0.0.1"))
	assert.True(t, guard.TryAttempt(ctx, "10.0.0.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, guard.TryAttempt(ctx, "10.0.0.1"))

	assert.True(t, guard.UnderDailyLimit(ctx, "10.0.0.1"))
	guard.RecordSuccess(ctx, "10.0.0.1")
	guard.RecordSuccess(ctx, "10.0.0.1")
	assert.False(t, guard.UnderDailyLimit(ctx, "10.0.0.1"))
	assert.True(t, guard.UnderDailyLimit(ctx, "10.0.0.2"))

	// the cap resets with the calendar day
	now = now.Add(24 * time.Hour)
	assert.True(t, guard.UnderDailyLimit(ctx, "10.0.0.1"))
}

func TestSignupGuardDisabled(t *testing.T) {
	ctx := context.Background()
	guard := NewSignupGuard(nil, 0, 0)
	for i := 0; i < 5; i++ {
		assert.True(t, guard.TryAttempt(ctx, "ip"))
		guard.RecordSuccess(ctx, "ip")
	}
	assert.True(t, guard.UnderDailyLimit(ctx, "ip"))

	var none *SignupGuard
	assert.True(t, none.TryAttempt(ctx, "ip"))
}

func TestSweepAll(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	bl := NewTokenBlacklist(nil)
	bl.Revoke(ctx, "short", now.Add(time.Minute))
	bl.Revoke(ctx, "long", now.Add(time.Hour))

	states := NewStateStore(nil)
	states.Save(ctx, "s1", time.Minute)

	guard := NewSignupGuard(nil, time.Minute, 3)
	guard.TryAttempt(ctx, "ip")
	guard.RecordSuccess(ctx, "ip")

	var nilGuard *SignupGuard
	removed := SweepAll(now.Add(30*time.Minute), bl, states, guard, nilGuard)
	// the short token, the unconsumed state and the expired cooldown at least
	assert.GreaterOrEqual(t, removed, 3)
	assert.True(t, bl.IsRevoked(ctx, "long"))
	assert.False(t, states.Consume(ctx, "s1"))
}
