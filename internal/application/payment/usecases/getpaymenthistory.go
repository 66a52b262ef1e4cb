package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const defaultHistoryPageSize = 20

type GetPaymentHistoryCommand struct {
	UserID   uint
	Page     int
	PageSize int
}

type GetPaymentHistoryResult struct {
	Payments []*payment.Payment
	Total    int64
	Page     int
	PageSize int
}

type GetPaymentHistoryUseCase struct {
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewGetPaymentHistoryUseCase(paymentRepo payment.Repository, logger logger.Interface) *GetPaymentHistoryUseCase {
	return &GetPaymentHistoryUseCase{
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (uc *GetPaymentHistoryUseCase) Execute(ctx context.Context, cmd GetPaymentHistoryCommand) (*GetPaymentHistoryResult, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = defaultHistoryPageSize
	}

	offset := (cmd.Page - 1) * cmd.PageSize

	payments, total, err := uc.paymentRepo.ListByUserID(ctx, cmd.UserID, cmd.PageSize, offset)
	if err != nil {
		uc.logger.Errorw("failed to list payments", "error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &GetPaymentHistoryResult{
		Payments: payments,
		Total:    total,
		Page:     cmd.Page,
		PageSize: cmd.PageSize,
	}, nil
}
