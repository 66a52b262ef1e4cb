package user

import (
	"context"
	"time"
)

// PremiumUpdate is a partial update touching only the entitlement columns.
// Nil PremiumUntil clears the expiry explicitly rather than leaving it
// untouched.
type PremiumUpdate struct {
	IsPremium    bool
	PremiumUntil *time.Time
}

// Repository defines persistence operations the billing side needs on users.
type Repository interface {
	GetByID(ctx context.Context, id uint) (*User, error)
	UpdatePremium(ctx context.Context, userID uint, update PremiumUpdate) error
}
