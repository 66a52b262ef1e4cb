package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	subusecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

// Outcome classifies what a callback resolution did. Rejections leave the
// payment untouched; only Succeeded and Failed commit a terminal state.
type Outcome string

const (
	OutcomeSucceeded              Outcome = "SUCCEEDED"
	OutcomeFailed                 Outcome = "FAILED"
	OutcomeDuplicate              Outcome = "DUPLICATE"
	OutcomeRejectedInvalidSig     Outcome = "REJECTED_INVALID_SIGNATURE"
	OutcomeRejectedNotFound       Outcome = "REJECTED_NOT_FOUND"
	OutcomeRejectedAmountMismatch Outcome = "REJECTED_AMOUNT_MISMATCH"
)

type ResolveCallbackCommand struct {
	// Verified must carry the signature engine's verdict. When false no
	// other field is trusted and no state changes.
	Verified      bool
	OrderID       string
	Amount        float64
	TransactionID string
	Succeeded     bool
	RawData       map[string]interface{}
}

type ResolveCallbackResult struct {
	Outcome Outcome
	Payment *payment.Payment
}

// subscriptionActivator is the slice of the activation use case the ledger
// needs, kept narrow so tests can substitute it.
type subscriptionActivator interface {
	Execute(ctx context.Context, cmd subusecases.ActivateSubscriptionCommand) (*subusecases.ActivateSubscriptionResult, error)
}

// transactionManager matches db.TransactionManager.
type transactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// premiumCacheInvalidator drops a user's cached premium status once a grant
// has committed, so reads never serve the pre-payment flag for a full TTL.
type premiumCacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

type ResolveCallbackUseCase struct {
	paymentRepo  payment.Repository
	activator    subscriptionActivator
	txManager    transactionManager
	premiumCache premiumCacheInvalidator
	logger       logger.Interface
}

// NewResolveCallbackUseCase builds the ledger resolution use case.
// premiumCache may be nil when no cache is deployed.
func NewResolveCallbackUseCase(
	paymentRepo payment.Repository,
	activator subscriptionActivator,
	txManager transactionManager,
	premiumCache premiumCacheInvalidator,
	logger logger.Interface,
) *ResolveCallbackUseCase {
	return &ResolveCallbackUseCase{
		paymentRepo:  paymentRepo,
		activator:    activator,
		txManager:    txManager,
		premiumCache: premiumCache,
		logger:       logger,
	}
}

// Execute resolves one gateway notification against the ledger. The status
// flip, subscription insert and premium grant commit in one transaction, and
// the flip is conditional on the row still being PENDING so retried or
// concurrent callbacks cannot double-credit.
func (uc *ResolveCallbackUseCase) Execute(ctx context.Context, cmd ResolveCallbackCommand) (*ResolveCallbackResult, error) {
	if !cmd.Verified {
		uc.logger.Warnw("callback rejected: invalid signature", "order_id", cmd.OrderID)
		return &ResolveCallbackResult{Outcome: OutcomeRejectedInvalidSig}, nil
	}

	paymentOrder, err := uc.paymentRepo.GetByGatewayOrderID(ctx, cmd.OrderID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			uc.logger.Warnw("callback rejected: payment not found", "order_id", cmd.OrderID)
			return &ResolveCallbackResult{Outcome: OutcomeRejectedNotFound}, nil
		}
		uc.logger.Errorw("failed to load payment for callback", "error", err, "order_id", cmd.OrderID)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	if paymentOrder.Status().IsTerminal() {
		uc.logger.Infow("duplicate callback ignored",
			"order_id", cmd.OrderID,
			"status", paymentOrder.Status().String())
		return &ResolveCallbackResult{Outcome: OutcomeDuplicate, Payment: paymentOrder}, nil
	}

	// The gateway's own failure code is authoritative and recorded even if
	// the reported amount is off.
	if !cmd.Succeeded {
		return uc.recordFailure(ctx, paymentOrder, cmd)
	}

	if !paymentOrder.AmountMatches(cmd.Amount) {
		// Left PENDING on purpose: a mismatch may mean tampering and is
		// worth a human look, not a silent FAILED.
		uc.logger.Errorw("callback rejected: amount mismatch",
			"order_id", cmd.OrderID,
			"expected", paymentOrder.Amount(),
			"received", cmd.Amount)
		return &ResolveCallbackResult{Outcome: OutcomeRejectedAmountMismatch, Payment: paymentOrder}, nil
	}

	if err := paymentOrder.MarkAsSucceeded(cmd.TransactionID, cmd.RawData); err != nil {
		return nil, fmt.Errorf("failed to mark payment succeeded: %w", err)
	}

	outcome := OutcomeSucceeded
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		updated, err := uc.paymentRepo.MarkSucceededIfPending(txCtx, paymentOrder)
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if !updated {
			outcome = OutcomeDuplicate
			return nil
		}

		paymentID := paymentOrder.ID()
		if _, err := uc.activator.Execute(txCtx, subusecases.ActivateSubscriptionCommand{
			UserID:    paymentOrder.UserID(),
			TierID:    paymentOrder.TierID(),
			PaymentID: &paymentID,
		}); err != nil {
			return fmt.Errorf("failed to activate subscription: %w", err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Errorw("callback resolution transaction failed", "error", err, "order_id", cmd.OrderID)
		return nil, err
	}

	if outcome == OutcomeDuplicate {
		uc.logger.Infow("concurrent callback lost the pending transition", "order_id", cmd.OrderID)
		return &ResolveCallbackResult{Outcome: OutcomeDuplicate, Payment: paymentOrder}, nil
	}

	// The grant is committed; a cached is_premium=false must not outlive it.
	if uc.premiumCache != nil {
		if err := uc.premiumCache.Invalidate(ctx, paymentOrder.UserID()); err != nil {
			uc.logger.Warnw("failed to invalidate premium cache",
				"error", err, "user_id", paymentOrder.UserID())
		}
	}

	uc.logger.Infow("payment succeeded",
		"order_id", cmd.OrderID,
		"payment_id", paymentOrder.ID(),
		"user_id", paymentOrder.UserID(),
		"transaction_id", cmd.TransactionID)

	return &ResolveCallbackResult{Outcome: OutcomeSucceeded, Payment: paymentOrder}, nil
}

func (uc *ResolveCallbackUseCase) recordFailure(ctx context.Context, paymentOrder *payment.Payment, cmd ResolveCallbackCommand) (*ResolveCallbackResult, error) {
	if err := paymentOrder.MarkAsFailed(cmd.RawData); err != nil {
		return nil, fmt.Errorf("failed to mark payment failed: %w", err)
	}

	updated, err := uc.paymentRepo.MarkFailedIfPending(ctx, paymentOrder)
	if err != nil {
		uc.logger.Errorw("failed to record payment failure", "error", err, "order_id", cmd.OrderID)
		return nil, fmt.Errorf("failed to record payment failure: %w", err)
	}
	if !updated {
		return &ResolveCallbackResult{Outcome: OutcomeDuplicate, Payment: paymentOrder}, nil
	}

	uc.logger.Infow("payment failed by gateway report", "order_id", cmd.OrderID)
	return &ResolveCallbackResult{Outcome: OutcomeFailed, Payment: paymentOrder}, nil
}
