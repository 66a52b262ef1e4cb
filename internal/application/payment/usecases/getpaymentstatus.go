package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type GetPaymentStatusUseCase struct {
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewGetPaymentStatusUseCase(paymentRepo payment.Repository, logger logger.Interface) *GetPaymentStatusUseCase {
	return &GetPaymentStatusUseCase{
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// Execute returns one payment by order id, scoped to its owner.
func (uc *GetPaymentStatusUseCase) Execute(ctx context.Context, userID uint, orderID string) (*payment.Payment, error) {
	paymentOrder, err := uc.paymentRepo.GetByGatewayOrderID(ctx, orderID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		uc.logger.Errorw("failed to get payment", "error", err, "order_id", orderID)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if paymentOrder.UserID() != userID {
		// Hidden rather than forbidden so order ids cannot be probed.
		return nil, apperrors.NewNotFoundError("payment not found")
	}

	return paymentOrder, nil
}
