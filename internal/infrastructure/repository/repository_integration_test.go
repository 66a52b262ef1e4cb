package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	paymentVO "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/subscription"
	subVO "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/mappers"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
	"github.com/melodia-inc/melodia/internal/shared/db"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = database.AutoMigrate(
		&models.UserModel{},
		&models.TierModel{},
		&models.PaymentModel{},
		&models.SubscriptionModel{},
	)
	require.NoError(t, err)

	return database
}

func seedUser(t *testing.T, database *gorm.DB, email string) uint {
	t.Helper()
	account, err := user.NewUser(email, "Listener")
	require.NoError(t, err)
	model := mappers.UserToModel(account)
	require.NoError(t, database.Create(model).Error)
	return model.ID
}

func seedTier(t *testing.T, database *gorm.DB, name string, plan subVO.TierPlan, price int64, days int) uint {
	t.Helper()
	tier, err := subscription.NewTier(name, plan, price, days, []string{"ad_free", "offline"})
	require.NoError(t, err)
	model, err := mappers.TierToModel(tier)
	require.NoError(t, err)
	require.NoError(t, database.Create(model).Error)
	return model.ID
}

func newPendingPayment(t *testing.T, userID, tierID uint, orderID string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(userID, tierID, 99000, paymentVO.PaymentMethodVNPay, orderID, "203.0.113.5", "ua", "Premium Monthly")
	require.NoError(t, err)
	return p
}

func TestPaymentRepository(t *testing.T) {
	database := setupTestDB(t)
	repo := NewPaymentRepository(database)
	ctx := context.Background()

	userID := seedUser(t, database, "payer@example.com")
	tierID := seedTier(t, database, "Premium Monthly", subVO.TierPlanPremiumMonthly, 99000, 30)

	t.Run("create and load round trip", func(t *testing.T) {
		p := newPendingPayment(t, userID, tierID, "ORD1700000000000100")

		require.NoError(t, repo.Create(ctx, p))
		assert.NotZero(t, p.ID())

		found, err := repo.GetByGatewayOrderID(ctx, "ORD1700000000000100")
		require.NoError(t, err)
		assert.Equal(t, p.ID(), found.ID())
		assert.Equal(t, paymentVO.PaymentStatusPending, found.Status())
		assert.Equal(t, int64(99000), found.Amount())
	})

	t.Run("duplicate order id conflicts", func(t *testing.T) {
		first := newPendingPayment(t, userID, tierID, "ORD1700000000000101")
		require.NoError(t, repo.Create(ctx, first))

		dup := newPendingPayment(t, userID, tierID, "ORD1700000000000101")
		err := repo.Create(ctx, dup)

		require.Error(t, err)
		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("unknown order id is not found", func(t *testing.T) {
		_, err := repo.GetByGatewayOrderID(ctx, "ORD0000000000000000")
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("conditional success update wins exactly once", func(t *testing.T) {
		p := newPendingPayment(t, userID, tierID, "ORD1700000000000102")
		require.NoError(t, repo.Create(ctx, p))
		require.NoError(t, p.MarkAsSucceeded("VNP777", map[string]interface{}{"vnp_ResponseCode": "00"}))

		updated, err := repo.MarkSucceededIfPending(ctx, p)
		require.NoError(t, err)
		assert.True(t, updated)

		again, err := repo.MarkSucceededIfPending(ctx, p)
		require.NoError(t, err)
		assert.False(t, again, "second conditional update must be a no-op")

		found, err := repo.GetByID(ctx, p.ID())
		require.NoError(t, err)
		assert.Equal(t, paymentVO.PaymentStatusSuccess, found.Status())
		require.NotNil(t, found.TransactionID())
		assert.Equal(t, "VNP777", *found.TransactionID())
		assert.NotNil(t, found.PaidAt())
		assert.Equal(t, "00", found.GatewayResponse()["vnp_ResponseCode"])
	})

	t.Run("failure cannot overwrite success", func(t *testing.T) {
		p := newPendingPayment(t, userID, tierID, "ORD1700000000000103")
		require.NoError(t, repo.Create(ctx, p))
		require.NoError(t, p.MarkAsSucceeded("VNP778", nil))

		updated, err := repo.MarkSucceededIfPending(ctx, p)
		require.NoError(t, err)
		require.True(t, updated)

		late := newPendingPayment(t, userID, tierID, "ignored")
		late.SetID(p.ID())
		require.NoError(t, late.MarkAsFailed(map[string]interface{}{"vnp_ResponseCode": "24"}))

		flipped, err := repo.MarkFailedIfPending(ctx, late)
		require.NoError(t, err)
		assert.False(t, flipped)

		found, err := repo.GetByID(ctx, p.ID())
		require.NoError(t, err)
		assert.Equal(t, paymentVO.PaymentStatusSuccess, found.Status())
	})

	t.Run("history is paginated newest first", func(t *testing.T) {
		payments, total, err := repo.ListByUserID(ctx, userID, 2, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, int64(4))
		assert.Len(t, payments, 2)
	})
}

func TestSubscriptionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("current row is highest price then latest end date", func(t *testing.T) {
		database := setupTestDB(t)
		repo := NewSubscriptionRepository(database)

		userID := seedUser(t, database, "listener@example.com")
		freeID := seedTier(t, database, "Free", subVO.TierPlanFree, 0, 0)
		monthlyID := seedTier(t, database, "Premium Monthly", subVO.TierPlanPremiumMonthly, 99000, 30)

		free, err := subscription.NewSubscription(userID, freeID, nil, 36500)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, free))

		paid, err := subscription.NewSubscription(userID, monthlyID, nil, 30)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, paid))

		current, err := repo.GetCurrentByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, paid.ID(), current.ID(), "paid tier outranks the long-lived free row")
	})

	t.Run("lapsed selection and conditional expiry", func(t *testing.T) {
		database := setupTestDB(t)
		repo := NewSubscriptionRepository(database)

		userID := seedUser(t, database, "lapsed@example.com")
		monthlyID := seedTier(t, database, "Premium Monthly", subVO.TierPlanPremiumMonthly, 99000, 30)

		sub, err := subscription.NewSubscription(userID, monthlyID, nil, 30)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, sub))

		// Push the end date into the past directly; the domain never
		// creates an already-lapsed row.
		yesterday := time.Now().UTC().Add(-24 * time.Hour)
		require.NoError(t, database.Model(&models.SubscriptionModel{}).
			Where("id = ?", sub.ID()).
			Update("end_date", yesterday).Error)

		lapsed, err := repo.ListActiveExpiredBefore(ctx, time.Now().UTC(), 100)
		require.NoError(t, err)
		require.Len(t, lapsed, 1)

		require.NoError(t, lapsed[0].MarkAsExpired())
		updated, err := repo.MarkExpiredIfActive(ctx, lapsed[0])
		require.NoError(t, err)
		assert.True(t, updated)

		again, err := repo.MarkExpiredIfActive(ctx, lapsed[0])
		require.NoError(t, err)
		assert.False(t, again)

		remaining, err := repo.ListActiveExpiredBefore(ctx, time.Now().UTC(), 100)
		require.NoError(t, err)
		assert.Empty(t, remaining, "expired rows leave the selection")

		stillPaid, err := repo.HasActivePaid(ctx, userID, time.Now().UTC())
		require.NoError(t, err)
		assert.False(t, stillPaid)
	})

	t.Run("cancellation is conditional and keeps the row active", func(t *testing.T) {
		database := setupTestDB(t)
		repo := NewSubscriptionRepository(database)

		userID := seedUser(t, database, "cancel@example.com")
		monthlyID := seedTier(t, database, "Premium Monthly", subVO.TierPlanPremiumMonthly, 99000, 30)

		sub, err := subscription.NewSubscription(userID, monthlyID, nil, 30)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, sub))
		require.NoError(t, sub.Cancel("too expensive"))

		updated, err := repo.MarkCancelledIfActive(ctx, sub)
		require.NoError(t, err)
		assert.True(t, updated)

		again, err := repo.MarkCancelledIfActive(ctx, sub)
		require.NoError(t, err)
		assert.False(t, again, "already cancelled row is left alone")

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, subVO.SubscriptionStatusActive, found.Status())
		assert.True(t, found.IsCancelled())
		assert.Equal(t, "too expensive", found.CancellationReason())

		// Cancellation alone does not end paid access.
		stillPaid, err := repo.HasActivePaid(ctx, userID, time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, stillPaid)
	})
}

func TestUserRepository_UpdatePremium(t *testing.T) {
	database := setupTestDB(t)
	repo := NewUserRepository(database)
	ctx := context.Background()

	userID := seedUser(t, database, "premium@example.com")

	until := time.Now().UTC().Add(30 * 24 * time.Hour)
	require.NoError(t, repo.UpdatePremium(ctx, userID, user.PremiumUpdate{
		IsPremium:    true,
		PremiumUntil: &until,
	}))

	found, err := repo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, found.IsPremium())
	require.NotNil(t, found.PremiumUntil())

	require.NoError(t, repo.UpdatePremium(ctx, userID, user.PremiumUpdate{IsPremium: false}))

	found, err = repo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, found.IsPremium())
	assert.Nil(t, found.PremiumUntil(), "clearing premium also clears the cached expiry")

	err = repo.UpdatePremium(ctx, 99999, user.PremiumUpdate{IsPremium: true})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRunInTransaction_RollsBackActivation(t *testing.T) {
	database := setupTestDB(t)
	paymentRepo := NewPaymentRepository(database)
	subscriptionRepo := NewSubscriptionRepository(database)
	txManager := db.NewTransactionManager(database)
	ctx := context.Background()

	userID := seedUser(t, database, "rollback@example.com")
	tierID := seedTier(t, database, "Premium Monthly", subVO.TierPlanPremiumMonthly, 99000, 30)

	p := newPendingPayment(t, userID, tierID, "ORD1700000000000200")
	require.NoError(t, paymentRepo.Create(ctx, p))
	require.NoError(t, p.MarkAsSucceeded("VNP900", nil))

	wantErr := errors.New("activation failed")
	err := txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		updated, err := paymentRepo.MarkSucceededIfPending(txCtx, p)
		require.NoError(t, err)
		require.True(t, updated)

		paymentID := p.ID()
		sub, err := subscription.NewSubscription(userID, tierID, &paymentID, 30)
		require.NoError(t, err)
		require.NoError(t, subscriptionRepo.Create(txCtx, sub))

		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	found, err := paymentRepo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, paymentVO.PaymentStatusPending, found.Status(), "payment flip rolled back with the failed activation")

	subs, err := subscriptionRepo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, subs, "no subscription row survives the rollback")
}

func TestTierRepository(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTierRepository(database)
	ctx := context.Background()

	seedTier(t, database, "Free", subVO.TierPlanFree, 0, 0)
	seedTier(t, database, "Premium Monthly", subVO.TierPlanPremiumMonthly, 99000, 30)
	seedTier(t, database, "Premium Yearly", subVO.TierPlanPremiumYearly, 990000, 365)

	t.Run("list active ordered by price", func(t *testing.T) {
		tiers, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, tiers, 3)
		assert.Equal(t, subVO.TierPlanFree, tiers[0].Plan())
		assert.Equal(t, subVO.TierPlanPremiumYearly, tiers[2].Plan())
		assert.Equal(t, []string{"ad_free", "offline"}, tiers[1].Features())
	})

	t.Run("get by plan", func(t *testing.T) {
		tier, err := repo.GetByPlan(ctx, subVO.TierPlanPremiumMonthly.String())
		require.NoError(t, err)
		assert.Equal(t, int64(99000), tier.Price())
		assert.Equal(t, 30, tier.DurationDays())
	})

	t.Run("duplicate plan conflicts", func(t *testing.T) {
		tier, err := subscription.NewTier("Premium Monthly v2", subVO.TierPlanPremiumMonthly, 89000, 30, nil)
		require.NoError(t, err)

		err = repo.Create(ctx, tier)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflictError(err))
	})
}
