package ratelimit

import (
	"context"
	"time"
)

// Limit caps attempts per key within sliding windows. A zero value for a
// window disables that window.
type Limit struct {
	PerMinute int
	PerHour   int
}

// Limiter answers whether another attempt is allowed for the given key.
// Payment creation is the primary consumer; every call opens a pending
// order against the gateway, so the quota being protected is external.
type Limiter interface {
	Allow(ctx context.Context, key string, limit Limit) (bool, error)
	Reset(ctx context.Context, key string) error
}

// PaymentCreationLimit is the default cap on new payment orders per user.
var PaymentCreationLimit = Limit{
	PerMinute: 5,
	PerHour:   20,
}

type limitWindow struct {
	duration time.Duration
	max      int
}

func windowsFor(limit Limit) []limitWindow {
	return []limitWindow{
		{time.Minute, limit.PerMinute},
		{time.Hour, limit.PerHour},
	}
}
