package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowLimiter_Allow(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", 2, time.Minute)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 12, 0, 15, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "tns")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx, "tns")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, retryAfter, err := limiter.Allow(ctx, "tns")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 45*time.Second, retryAfter)

	allowed, _, err = limiter.Allow(ctx, "hermes")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are counted independently")

	now = now.Add(time.Minute)
	allowed, _, err = limiter.Allow(ctx, "tns")
	require.NoError(t, err)
	assert.True(t, allowed, "a new window resets the count")
}

func TestFixedWindowLimiter_FailClosed(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", 1, time.Second)
	require.NoError(t, err)
	server.Close()

	allowed, _, err := limiter.Allow(context.Background(), "tns")

	require.Error(t, err)
	assert.False(t, allowed)
}

func TestNewFixedWindowLimiter_Invalid(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})

	_, err := NewFixedWindowLimiter(client, "test", 0, time.Second)
	require.EqualError(t, err, "rate limiter requires positive limit and window")

	_, err = NewFixedWindowLimiter(nil, "test", 1, time.Second)
	require.EqualError(t, err, "rate limiter requires a redis client")
}
