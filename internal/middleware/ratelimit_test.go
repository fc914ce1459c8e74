package middleware

import (
	"context"
	"testing"
	"time"

	"shardit/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestCheckRateLimitEnforcesLimit(t *testing.T) {
	prev := cfg
	InitMiddleware(&config.Config{Env: "production"})
	t.Cleanup(func() { cfg = prev })

	rdb, mr := limiterTestClient(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "create_request", "user:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "create_request", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "third request should be rejected")

	// counters live under the namespaced key and expire with the window
	require.True(t, mr.Exists("shardit:rl:create_request:user:1"))
	assert.Greater(t, mr.TTL("shardit:rl:create_request:user:1"), time.Duration(0))
}

func TestCheckRateLimitSkippedOutsideProduction(t *testing.T) {
	prev := cfg
	InitMiddleware(&config.Config{Env: "development"})
	t.Cleanup(func() { cfg = prev })

	// No Redis needed: development traffic is never throttled.
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimitIsolatesCallers(t *testing.T) {
	prev := cfg
	InitMiddleware(&config.Config{Env: "production"})
	t.Cleanup(func() { cfg = prev })

	rdb, _ := limiterTestClient(t)
	ctx := context.Background()

	allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "signup", "ip:10.0.0.1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "signup", "ip:10.0.0.2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "a different caller must not share the counter")
}
