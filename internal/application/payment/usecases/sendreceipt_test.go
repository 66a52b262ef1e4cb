package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	paymentVO "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/subscription"
	subVO "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/user"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

func succeededPayment() *payment.Payment {
	txnID := "VNP123"
	paidAt := time.Now().UTC()
	return payment.Reconstruct(payment.ReconstructParams{
		ID:             11,
		UserID:         7,
		TierID:         2,
		Amount:         99000,
		Status:         paymentVO.PaymentStatusSuccess,
		PaymentMethod:  paymentVO.PaymentMethodVNPay,
		GatewayOrderID: "ORD1700000000000011",
		TransactionID:  &txnID,
		PaidAt:         &paidAt,
		CreatedAt:      paidAt.Add(-time.Minute),
		UpdatedAt:      paidAt,
	})
}

func TestSendReceiptUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("sends receipt with user email and premium expiry", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		userRepo := new(mockUserRepository)
		tierRepo := new(mockTierRepository)
		sender := new(mockReceiptSender)

		until := time.Now().UTC().Add(30 * 24 * time.Hour)
		account := user.Reconstruct(user.ReconstructParams{
			ID:           7,
			Email:        "listener@example.com",
			DisplayName:  "Listener",
			IsPremium:    true,
			PremiumUntil: &until,
		})
		tier := subscription.ReconstructTier(subscription.TierReconstructParams{
			ID:           2,
			Name:         "Premium Monthly",
			Plan:         subVO.TierPlanPremiumMonthly,
			Price:        99000,
			DurationDays: 30,
			IsActive:     true,
		})

		paymentRepo.On("GetByID", ctx, uint(11)).Return(succeededPayment(), nil)
		userRepo.On("GetByID", ctx, uint(7)).Return(account, nil)
		tierRepo.On("GetByID", ctx, uint(2)).Return(tier, nil)
		sender.On("SendPaymentReceipt",
			"listener@example.com", "Premium Monthly", "ORD1700000000000011", int64(99000), until,
		).Return(nil)

		uc := NewSendReceiptUseCase(paymentRepo, userRepo, tierRepo, sender, newMockLogger())
		err := uc.Execute(ctx, 11)

		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("unknown payment aborts before any mail", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		sender := new(mockReceiptSender)

		paymentRepo.On("GetByID", ctx, uint(99)).
			Return(nil, apperrors.NewNotFoundError("payment not found"))

		uc := NewSendReceiptUseCase(paymentRepo, new(mockUserRepository), new(mockTierRepository), sender, newMockLogger())
		err := uc.Execute(ctx, 99)

		require.Error(t, err)
		sender.AssertNotCalled(t, "SendPaymentReceipt",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delivery failure is reported to the caller", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		userRepo := new(mockUserRepository)
		tierRepo := new(mockTierRepository)
		sender := new(mockReceiptSender)

		account := user.Reconstruct(user.ReconstructParams{ID: 7, Email: "listener@example.com"})
		tier := subscription.ReconstructTier(subscription.TierReconstructParams{
			ID: 2, Name: "Premium Monthly", Plan: subVO.TierPlanPremiumMonthly,
			Price: 99000, DurationDays: 30, IsActive: true,
		})

		paymentRepo.On("GetByID", ctx, uint(11)).Return(succeededPayment(), nil)
		userRepo.On("GetByID", ctx, uint(7)).Return(account, nil)
		tierRepo.On("GetByID", ctx, uint(2)).Return(tier, nil)
		sender.On("SendPaymentReceipt",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		).Return(errors.New("smtp unreachable"))

		uc := NewSendReceiptUseCase(paymentRepo, userRepo, tierRepo, sender, newMockLogger())
		err := uc.Execute(ctx, 11)

		assert.ErrorContains(t, err, "failed to send receipt")
	})
}
