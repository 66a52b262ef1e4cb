package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	subusecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	"github.com/melodia-inc/melodia/internal/domain/payment"
	paymentVO "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

func pendingPayment(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(7, 2, 99000, paymentVO.PaymentMethodVNPay, "ORD1700000000000123", "203.0.113.5", "ua", "")
	require.NoError(t, err)
	p.SetID(11)
	return p
}

func successCommand() ResolveCallbackCommand {
	return ResolveCallbackCommand{
		Verified:      true,
		OrderID:       "ORD1700000000000123",
		Amount:        99000,
		TransactionID: "VNP555",
		Succeeded:     true,
		RawData:       map[string]interface{}{"vnp_ResponseCode": "00"},
	}
}

func TestResolveCallbackUseCase_Execute(t *testing.T) {
	t.Run("unverified signature rejected without touching state", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, nil, newMockLogger())

		cmd := successCommand()
		cmd.Verified = false
		result, err := uc.Execute(context.Background(), cmd)

		require.NoError(t, err)
		assert.Equal(t, OutcomeRejectedInvalidSig, result.Outcome)
		paymentRepo.AssertNotCalled(t, "GetByGatewayOrderID", mock.Anything, mock.Anything)
		activator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("payment not found", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").
			Return(nil, apperrors.NewNotFoundError("payment not found"))

		uc := NewResolveCallbackUseCase(paymentRepo, new(mockActivator), fakeTxManager{}, nil, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeRejectedNotFound, result.Outcome)
	})

	t.Run("success path flips payment and activates subscription", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		p := pendingPayment(t)

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)
		paymentRepo.On("MarkSucceededIfPending", mock.Anything, p).Return(true, nil)
		activator.On("Execute", mock.Anything, mock.MatchedBy(func(cmd subusecases.ActivateSubscriptionCommand) bool {
			return cmd.UserID == 7 && cmd.TierID == 2 && cmd.PaymentID != nil && *cmd.PaymentID == 11
		})).Return(&subusecases.ActivateSubscriptionResult{}, nil)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, nil, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, result.Outcome)
		assert.Equal(t, paymentVO.PaymentStatusSuccess, p.Status())
		require.NotNil(t, p.TransactionID())
		assert.Equal(t, "VNP555", *p.TransactionID())
		activator.AssertExpectations(t)
	})

	t.Run("second identical callback is a no-op", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		p := pendingPayment(t)
		require.NoError(t, p.MarkAsSucceeded("VNP555", nil))

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, nil, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, result.Outcome)
		paymentRepo.AssertNotCalled(t, "MarkSucceededIfPending", mock.Anything, mock.Anything)
		activator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("concurrent callback loses the conditional update", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		p := pendingPayment(t)

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)
		paymentRepo.On("MarkSucceededIfPending", mock.Anything, p).Return(false, nil)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, nil, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, result.Outcome)
		activator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("amount mismatch leaves payment pending", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		p := pendingPayment(t)

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, nil, newMockLogger())

		cmd := successCommand()
		cmd.Amount = 10000
		result, err := uc.Execute(context.Background(), cmd)

		require.NoError(t, err)
		assert.Equal(t, OutcomeRejectedAmountMismatch, result.Outcome)
		assert.Equal(t, paymentVO.PaymentStatusPending, p.Status())
		paymentRepo.AssertNotCalled(t, "MarkSucceededIfPending", mock.Anything, mock.Anything)
		paymentRepo.AssertNotCalled(t, "MarkFailedIfPending", mock.Anything, mock.Anything)
		activator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("committed grant drops the cached premium flag", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		invalidator := new(mockPremiumInvalidator)
		p := pendingPayment(t)

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)
		paymentRepo.On("MarkSucceededIfPending", mock.Anything, p).Return(true, nil)
		activator.On("Execute", mock.Anything, mock.Anything).
			Return(&subusecases.ActivateSubscriptionResult{}, nil)
		invalidator.On("Invalidate", mock.Anything, uint(7)).Return(nil)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, invalidator, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, result.Outcome)
		invalidator.AssertExpectations(t)
	})

	t.Run("duplicate callback does not touch the premium cache", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		invalidator := new(mockPremiumInvalidator)
		p := pendingPayment(t)
		require.NoError(t, p.MarkAsSucceeded("VNP555", nil))

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)

		uc := NewResolveCallbackUseCase(paymentRepo, new(mockActivator), fakeTxManager{}, invalidator, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, result.Outcome)
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("cache invalidation failure does not fail the callback", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		invalidator := new(mockPremiumInvalidator)
		p := pendingPayment(t)

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)
		paymentRepo.On("MarkSucceededIfPending", mock.Anything, p).Return(true, nil)
		activator.On("Execute", mock.Anything, mock.Anything).
			Return(&subusecases.ActivateSubscriptionResult{}, nil)
		invalidator.On("Invalidate", mock.Anything, uint(7)).
			Return(errors.New("redis: connection refused"))

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, invalidator, newMockLogger())

		result, err := uc.Execute(context.Background(), successCommand())

		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, result.Outcome)
	})

	t.Run("gateway failure code marks payment failed even with odd amount", func(t *testing.T) {
		paymentRepo := new(mockPaymentRepository)
		activator := new(mockActivator)
		p := pendingPayment(t)

		paymentRepo.On("GetByGatewayOrderID", mock.Anything, "ORD1700000000000123").Return(p, nil)
		paymentRepo.On("MarkFailedIfPending", mock.Anything, p).Return(true, nil)

		uc := NewResolveCallbackUseCase(paymentRepo, activator, fakeTxManager{}, nil, newMockLogger())

		cmd := successCommand()
		cmd.Succeeded = false
		cmd.Amount = 1
		result, err := uc.Execute(context.Background(), cmd)

		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, result.Outcome)
		assert.Equal(t, paymentVO.PaymentStatusFailed, p.Status())
		assert.NotNil(t, p.FailedAt())
		activator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}
