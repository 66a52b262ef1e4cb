package payment

import (
	"context"
)

// Repository defines persistence operations for payments.
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Payment, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*Payment, int64, error)

	// MarkSucceededIfPending promotes a PENDING payment to SUCCESS in a
	// single conditional update. It returns true when this call performed
	// the transition and false when the row was no longer PENDING, which
	// lets concurrent callback deliveries race safely.
	MarkSucceededIfPending(ctx context.Context, payment *Payment) (bool, error)

	// MarkFailedIfPending records a failure only when the payment is still
	// PENDING, so a late failure callback never clobbers a success.
	MarkFailedIfPending(ctx context.Context, payment *Payment) (bool, error)
}
