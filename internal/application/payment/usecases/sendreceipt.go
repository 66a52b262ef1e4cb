package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/logger"
	"github.com/melodia-inc/melodia/internal/shared/utils"
)

// ReceiptSender delivers the payment confirmation mail.
type ReceiptSender interface {
	SendPaymentReceipt(to, tierName, orderID string, amount int64, premiumUntil time.Time) error
}

// SendReceiptUseCase mails a receipt for a succeeded payment. Delivery is
// best effort and never affects the ledger; callers invoke it after the
// activation transaction has committed.
type SendReceiptUseCase struct {
	paymentRepo payment.Repository
	userRepo    user.Repository
	tierRepo    subscription.TierRepository
	sender      ReceiptSender
	logger      logger.Interface
}

func NewSendReceiptUseCase(
	paymentRepo payment.Repository,
	userRepo user.Repository,
	tierRepo subscription.TierRepository,
	sender ReceiptSender,
	logger logger.Interface,
) *SendReceiptUseCase {
	return &SendReceiptUseCase{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		tierRepo:    tierRepo,
		sender:      sender,
		logger:      logger,
	}
}

// Execute sends the receipt for the given payment.
func (uc *SendReceiptUseCase) Execute(ctx context.Context, paymentID uint) error {
	p, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment for receipt: %w", err)
	}

	account, err := uc.userRepo.GetByID(ctx, p.UserID())
	if err != nil {
		return fmt.Errorf("failed to load user for receipt: %w", err)
	}

	tier, err := uc.tierRepo.GetByID(ctx, p.TierID())
	if err != nil {
		return fmt.Errorf("failed to load tier for receipt: %w", err)
	}

	premiumUntil := biztime.NowUTC().AddDate(0, 0, tier.DurationDays())
	if account.PremiumUntil() != nil {
		premiumUntil = *account.PremiumUntil()
	}

	if err := uc.sender.SendPaymentReceipt(
		account.Email(),
		tier.Name(),
		p.GatewayOrderID(),
		p.Amount(),
		premiumUntil,
	); err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}

	uc.logger.Infow("payment receipt sent",
		"payment_id", p.ID(),
		"order_id", p.GatewayOrderID(),
		"recipient", utils.MaskEmail(account.Email()))

	return nil
}
