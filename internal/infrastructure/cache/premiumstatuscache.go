package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const (
	premiumStatusKeyPrefix = "user:premium:"
	defaultPremiumTTL      = 5 * time.Minute
)

// RedisPremiumStatusCache stores the resolved premium status per user as a
// JSON value with a short TTL. The payment callback resolver and the expiry
// sweep invalidate a user's entry after their premium flag commits, so the TTL
// only bounds staleness when an invalidation is lost.
type RedisPremiumStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisPremiumStatusCache creates a Redis-backed implementation of
// usecases.PremiumStatusCache.
func NewRedisPremiumStatusCache(client *redis.Client, ttl time.Duration, logger logger.Interface) *RedisPremiumStatusCache {
	if ttl <= 0 {
		ttl = defaultPremiumTTL
	}
	return &RedisPremiumStatusCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

var _ usecases.PremiumStatusCache = (*RedisPremiumStatusCache)(nil)

func (c *RedisPremiumStatusCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", premiumStatusKeyPrefix, userID)
}

// Get returns the cached status, or nil on a miss.
func (c *RedisPremiumStatusCache) Get(ctx context.Context, userID uint) (*usecases.PremiumStatus, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get premium status from cache: %w", err)
	}

	var status usecases.PremiumStatus
	if err := json.Unmarshal(data, &status); err != nil {
		// A corrupt entry is treated as a miss so the caller reloads it.
		c.logger.Warnw("dropping corrupt premium status cache entry",
			"user_id", userID,
			"error", err)
		if delErr := c.client.Del(ctx, c.key(userID)).Err(); delErr != nil {
			c.logger.Warnw("failed to drop corrupt cache entry",
				"user_id", userID,
				"error", delErr)
		}
		return nil, nil
	}

	return &status, nil
}

func (c *RedisPremiumStatusCache) Set(ctx context.Context, userID uint, status *usecases.PremiumStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal premium status: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache premium status: %w", err)
	}

	return nil
}

func (c *RedisPremiumStatusCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate premium status cache: %w", err)
	}
	return nil
}
