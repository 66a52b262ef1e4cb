package ratelimit

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisLimiter_Allow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisLimiter(client)
	ctx := context.Background()

	t.Run("allows up to the per minute cap", func(t *testing.T) {
		limit := Limit{PerMinute: 3}

		for i := 0; i < 3; i++ {
			allowed, err := limiter.Allow(ctx, "user:1", limit)
			require.NoError(t, err)
			assert.True(t, allowed, "attempt %d should pass", i+1)
		}

		allowed, err := limiter.Allow(ctx, "user:1", limit)
		require.NoError(t, err)
		assert.False(t, allowed, "fourth attempt within a minute should be blocked")
	})

	t.Run("keys are independent", func(t *testing.T) {
		limit := Limit{PerMinute: 1}

		allowed, err := limiter.Allow(ctx, "user:2", limit)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "user:3", limit)
		require.NoError(t, err)
		assert.True(t, allowed, "a different user is not affected")
	})

	t.Run("hourly cap blocks even when minute cap passes", func(t *testing.T) {
		limit := Limit{PerMinute: 100, PerHour: 2}

		for i := 0; i < 2; i++ {
			allowed, err := limiter.Allow(ctx, "user:4", limit)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := limiter.Allow(ctx, "user:4", limit)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("zero windows disable limiting", func(t *testing.T) {
		limit := Limit{}

		for i := 0; i < 10; i++ {
			allowed, err := limiter.Allow(ctx, "user:5", limit)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})
}

func TestRedisLimiter_Reset(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisLimiter(client)
	ctx := context.Background()

	limit := Limit{PerMinute: 1}

	allowed, err := limiter.Allow(ctx, "user:6", limit)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "user:6", limit)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "user:6"))

	allowed, err = limiter.Allow(ctx, "user:6", limit)
	require.NoError(t, err)
	assert.True(t, allowed, "reset clears all windows for the key")
}

func TestRedisLimiter_ManyKeys(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisLimiter(client)
	ctx := context.Background()

	limit := Limit{PerMinute: 2}

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("user:%d", 100+i)
		allowed, err := limiter.Allow(ctx, key, limit)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
