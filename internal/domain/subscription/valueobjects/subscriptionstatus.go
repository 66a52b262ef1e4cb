package valueobjects

// SubscriptionStatus is the lifecycle state of a subscription row.
// Cancellation is not a status of its own: a cancelled subscription stays
// ACTIVE until its end date with autoRenew off and cancelledAt recorded.
type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusExpired:
		return true
	default:
		return false
	}
}

func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive
}

func (s SubscriptionStatus) String() string {
	return string(s)
}
