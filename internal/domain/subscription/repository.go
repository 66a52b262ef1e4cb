package subscription

import (
	"context"
	"time"
)

// Repository defines persistence operations for subscriptions.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	ListByUserID(ctx context.Context, userID uint) ([]*Subscription, error)

	// GetCurrentByUserID returns the subscription that currently governs
	// the user's access: the active, unexpired row with the priciest tier,
	// latest end date winning ties. Nil when the user has none.
	GetCurrentByUserID(ctx context.Context, userID uint) (*Subscription, error)

	// ListActiveExpiredBefore returns ACTIVE rows whose end date is at or
	// before the cutoff, oldest first, capped at limit.
	ListActiveExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Subscription, error)

	// MarkExpiredIfActive flips a row to EXPIRED only when it is still
	// ACTIVE. Returns false when another worker got there first.
	MarkExpiredIfActive(ctx context.Context, sub *Subscription) (bool, error)

	// MarkCancelledIfActive persists cancellation intent (autoRenew off,
	// cancelledAt, reason) only when the row is still ACTIVE and not yet
	// cancelled.
	MarkCancelledIfActive(ctx context.Context, sub *Subscription) (bool, error)

	// HasActivePaid reports whether the user holds an ACTIVE subscription
	// on a paid tier whose end date is after the given time.
	HasActivePaid(ctx context.Context, userID uint, at time.Time) (bool, error)
}

// TierRepository defines persistence operations for tiers.
type TierRepository interface {
	Create(ctx context.Context, tier *Tier) error
	GetByID(ctx context.Context, id uint) (*Tier, error)
	GetByPlan(ctx context.Context, plan string) (*Tier, error)
	ListActive(ctx context.Context) ([]*Tier, error)
}
