package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	"github.com/melodia-inc/melodia/internal/domain/payment"
	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
	"github.com/melodia-inc/melodia/internal/shared/id"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type CreatePaymentCommand struct {
	UserID        uint
	TierID        uint
	PaymentMethod string
	ClientIP      string
	UserAgent     string
}

type CreatePaymentResult struct {
	PaymentID  uint
	OrderID    string
	PaymentURL string
	Amount     int64
	TierName   string
}

type CreatePaymentUseCase struct {
	paymentRepo      payment.Repository
	subscriptionRepo subscription.Repository
	tierRepo         subscription.TierRepository
	gateways         map[vo.PaymentMethod]gateway.Gateway
	logger           logger.Interface
}

func NewCreatePaymentUseCase(
	paymentRepo payment.Repository,
	subscriptionRepo subscription.Repository,
	tierRepo subscription.TierRepository,
	gateways map[vo.PaymentMethod]gateway.Gateway,
	logger logger.Interface,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		tierRepo:         tierRepo,
		gateways:         gateways,
		logger:           logger,
	}
}

// Execute creates a PENDING payment and the gateway artifact the client is
// redirected to. The PENDING row is written before the gateway is contacted
// so a crash mid-flight still leaves an auditable record.
func (uc *CreatePaymentUseCase) Execute(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	method, err := vo.NewPaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported payment method: %s", cmd.PaymentMethod))
	}

	gw, ok := uc.gateways[method]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("payment method %s is not configured", method))
	}

	tier, err := uc.tierRepo.GetByID(ctx, cmd.TierID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("subscription tier not found")
		}
		uc.logger.Errorw("failed to get tier", "error", err, "tier_id", cmd.TierID)
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	if !tier.IsPurchasable() {
		return nil, apperrors.NewValidationError("tier is not available for purchase")
	}

	hasActive, err := uc.subscriptionRepo.HasActivePaid(ctx, cmd.UserID, biztime.NowUTC())
	if err != nil {
		uc.logger.Errorw("failed to check active subscriptions", "error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to check active subscriptions: %w", err)
	}
	if hasActive {
		return nil, apperrors.NewConflictError("user already has an active premium subscription")
	}

	orderID := id.NewOrderID()
	description := fmt.Sprintf("Melodia %s subscription", tier.Name())

	paymentOrder, err := payment.NewPayment(cmd.UserID, tier.ID(), tier.Price(), method, orderID, cmd.ClientIP, cmd.UserAgent, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := uc.paymentRepo.Create(ctx, paymentOrder); err != nil {
		uc.logger.Errorw("failed to save payment", "error", err, "order_id", orderID)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	gatewayResp, err := gw.CreateOrder(ctx, gateway.CreateOrderRequest{
		OrderID:     orderID,
		Amount:      tier.Price(),
		Description: description,
		ClientIP:    cmd.ClientIP,
		UserID:      cmd.UserID,
	})
	if err != nil {
		// The PENDING row stays behind for later reconciliation; it is not
		// auto-retried.
		uc.logger.Errorw("gateway order creation failed",
			"error", err,
			"order_id", orderID,
			"method", method.String())
		return nil, apperrors.NewUpstreamError("payment gateway rejected the order")
	}

	uc.logger.Infow("payment created",
		"payment_id", paymentOrder.ID(),
		"order_id", orderID,
		"user_id", cmd.UserID,
		"tier", tier.Name(),
		"amount", tier.Price(),
		"method", method.String())

	return &CreatePaymentResult{
		PaymentID:  paymentOrder.ID(),
		OrderID:    orderID,
		PaymentURL: gatewayResp.PaymentURL,
		Amount:     tier.Price(),
		TierName:   tier.Name(),
	}, nil
}
