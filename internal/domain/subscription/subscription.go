package subscription

import (
	"fmt"
	"time"

	vo "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
)

// Subscription is one period of tier access for a user. Activation always
// inserts a new row so prior periods survive as history.
type Subscription struct {
	id        uint
	userID    uint
	tierID    uint
	paymentID *uint
	status    vo.SubscriptionStatus
	startDate time.Time
	endDate   time.Time
	autoRenew bool

	cancelledAt        *time.Time
	cancellationReason string

	createdAt time.Time
	updatedAt time.Time
}

// NewSubscription starts an ACTIVE period of durationDays from now.
func NewSubscription(userID, tierID uint, paymentID *uint, durationDays int) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if tierID == 0 {
		return nil, fmt.Errorf("tier ID is required")
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}

	now := biztime.NowUTC()

	return &Subscription{
		userID:    userID,
		tierID:    tierID,
		paymentID: paymentID,
		status:    vo.SubscriptionStatusActive,
		startDate: now,
		endDate:   now.AddDate(0, 0, durationDays),
		autoRenew: false,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// MarkAsExpired closes an active period whose end date has passed.
func (s *Subscription) MarkAsExpired() error {
	if s.status != vo.SubscriptionStatusActive {
		return fmt.Errorf("cannot expire subscription with status %s", s.status)
	}

	s.status = vo.SubscriptionStatusExpired
	s.updatedAt = biztime.NowUTC()

	return nil
}

// Cancel records the user's intent to stop. Access is kept until the end
// date; the row stays ACTIVE with autoRenew off and the reason kept for
// support and churn analysis.
func (s *Subscription) Cancel(reason string) error {
	if s.status != vo.SubscriptionStatusActive {
		return fmt.Errorf("cannot cancel subscription with status %s", s.status)
	}
	if s.cancelledAt != nil {
		return fmt.Errorf("subscription is already cancelled")
	}

	now := biztime.NowUTC()
	s.cancelledAt = &now
	s.cancellationReason = reason
	s.autoRenew = false
	s.updatedAt = now

	return nil
}

// IsCancelled reports whether the owner already asked to stop renewing.
func (s *Subscription) IsCancelled() bool {
	return s.cancelledAt != nil
}

func (s *Subscription) SetAutoRenew(enabled bool) {
	s.autoRenew = enabled
	s.updatedAt = biztime.NowUTC()
}

// IsExpiredAt reports whether the period has ended as of the given time.
func (s *Subscription) IsExpiredAt(at time.Time) bool {
	return !s.endDate.After(at)
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) UserID() uint {
	return s.userID
}

func (s *Subscription) TierID() uint {
	return s.tierID
}

func (s *Subscription) PaymentID() *uint {
	return s.paymentID
}

func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) StartDate() time.Time {
	return s.startDate
}

func (s *Subscription) EndDate() time.Time {
	return s.endDate
}

func (s *Subscription) AutoRenew() bool {
	return s.autoRenew
}

func (s *Subscription) CancelledAt() *time.Time {
	return s.cancelledAt
}

func (s *Subscription) CancellationReason() string {
	return s.cancellationReason
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

func (s *Subscription) SetID(id uint) {
	s.id = id
}

// ReconstructParams carries persisted state back into the aggregate.
type ReconstructParams struct {
	ID                 uint
	UserID             uint
	TierID             uint
	PaymentID          *uint
	Status             vo.SubscriptionStatus
	StartDate          time.Time
	EndDate            time.Time
	AutoRenew          bool
	CancelledAt        *time.Time
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Reconstruct rebuilds a Subscription from persistence.
func Reconstruct(params ReconstructParams) *Subscription {
	return &Subscription{
		id:                 params.ID,
		userID:             params.UserID,
		tierID:             params.TierID,
		paymentID:          params.PaymentID,
		status:             params.Status,
		startDate:          params.StartDate,
		endDate:            params.EndDate,
		autoRenew:          params.AutoRenew,
		cancelledAt:        params.CancelledAt,
		cancellationReason: params.CancellationReason,
		createdAt:          params.CreatedAt,
		updatedAt:          params.UpdatedAt,
	}
}
