package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
)

func TestNewSubscription(t *testing.T) {
	paymentID := uint(9)

	tests := []struct {
		name         string
		userID       uint
		tierID       uint
		paymentID    *uint
		durationDays int
		wantErr      bool
	}{
		{"valid monthly", 1, 2, &paymentID, 30, false},
		{"valid yearly without payment", 1, 3, nil, 365, false},
		{"missing user", 0, 2, nil, 30, true},
		{"missing tier", 1, 0, nil, 30, true},
		{"zero duration", 1, 2, nil, 0, true},
		{"negative duration", 1, 2, nil, -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := NewSubscription(tt.userID, tt.tierID, tt.paymentID, tt.durationDays)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, sub)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, vo.SubscriptionStatusActive, sub.Status())
			assert.Equal(t, tt.paymentID, sub.PaymentID())
			assert.False(t, sub.AutoRenew())

			wantEnd := sub.StartDate().AddDate(0, 0, tt.durationDays)
			assert.Equal(t, wantEnd, sub.EndDate())
		})
	}
}

func TestSubscription_MarkAsExpired(t *testing.T) {
	t.Run("active expires", func(t *testing.T) {
		sub, err := NewSubscription(1, 2, nil, 30)
		require.NoError(t, err)

		require.NoError(t, sub.MarkAsExpired())
		assert.Equal(t, vo.SubscriptionStatusExpired, sub.Status())
	})

	t.Run("expired cannot expire again", func(t *testing.T) {
		sub, err := NewSubscription(1, 2, nil, 30)
		require.NoError(t, err)
		require.NoError(t, sub.MarkAsExpired())

		assert.Error(t, sub.MarkAsExpired())
	})

	t.Run("cancelled subscription still expires at end date", func(t *testing.T) {
		sub, err := NewSubscription(1, 2, nil, 30)
		require.NoError(t, err)
		require.NoError(t, sub.Cancel("no longer needed"))

		require.NoError(t, sub.MarkAsExpired())
		assert.Equal(t, vo.SubscriptionStatusExpired, sub.Status())
	})
}

func TestSubscription_Cancel(t *testing.T) {
	t.Run("active cancels with reason and keeps access", func(t *testing.T) {
		sub, err := NewSubscription(1, 2, nil, 30)
		require.NoError(t, err)
		sub.SetAutoRenew(true)

		require.NoError(t, sub.Cancel("too expensive"))

		assert.Equal(t, vo.SubscriptionStatusActive, sub.Status())
		assert.True(t, sub.IsCancelled())
		assert.Equal(t, "too expensive", sub.CancellationReason())
		assert.NotNil(t, sub.CancelledAt())
		assert.False(t, sub.AutoRenew())
	})

	t.Run("cancelled cannot cancel again", func(t *testing.T) {
		sub, err := NewSubscription(1, 2, nil, 30)
		require.NoError(t, err)
		require.NoError(t, sub.Cancel("first"))

		assert.Error(t, sub.Cancel("second"))
		assert.Equal(t, "first", sub.CancellationReason())
	})

	t.Run("expired cannot cancel", func(t *testing.T) {
		sub, err := NewSubscription(1, 2, nil, 30)
		require.NoError(t, err)
		require.NoError(t, sub.MarkAsExpired())

		assert.Error(t, sub.Cancel("late"))
	})
}

func TestSubscription_IsExpiredAt(t *testing.T) {
	sub, err := NewSubscription(1, 2, nil, 30)
	require.NoError(t, err)

	assert.False(t, sub.IsExpiredAt(sub.EndDate().Add(-time.Hour)))
	assert.True(t, sub.IsExpiredAt(sub.EndDate()))
	assert.True(t, sub.IsExpiredAt(sub.EndDate().Add(time.Hour)))
}

func TestNewTier(t *testing.T) {
	tests := []struct {
		name         string
		tierName     string
		plan         vo.TierPlan
		price        int64
		durationDays int
		wantErr      bool
	}{
		{"premium monthly", "Premium Monthly", vo.TierPlanPremiumMonthly, 99000, 30, false},
		{"premium yearly", "Premium Yearly", vo.TierPlanPremiumYearly, 990000, 365, false},
		{"free tier", "Free", vo.TierPlanFree, 0, 0, false},
		{"missing name", "", vo.TierPlanPremiumMonthly, 99000, 30, true},
		{"invalid plan", "Mystery", vo.TierPlan("MYSTERY"), 99000, 30, true},
		{"negative price", "Premium Monthly", vo.TierPlanPremiumMonthly, -1, 30, true},
		{"paid tier priced at zero", "Premium Monthly", vo.TierPlanPremiumMonthly, 0, 30, true},
		{"paid tier without duration", "Premium Monthly", vo.TierPlanPremiumMonthly, 99000, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := NewTier(tt.tierName, tt.plan, tt.price, tt.durationDays, []string{"ad_free"})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tier)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tier)
			assert.True(t, tier.IsActive())
		})
	}
}

func TestTier_IsPurchasable(t *testing.T) {
	free, err := NewTier("Free", vo.TierPlanFree, 0, 0, nil)
	require.NoError(t, err)
	assert.False(t, free.IsPurchasable())

	monthly, err := NewTier("Premium Monthly", vo.TierPlanPremiumMonthly, 99000, 30, nil)
	require.NoError(t, err)
	assert.True(t, monthly.IsPurchasable())

	monthly.Deactivate()
	assert.False(t, monthly.IsPurchasable())
}
