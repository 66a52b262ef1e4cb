package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type ActivateSubscriptionCommand struct {
	UserID    uint
	TierID    uint
	PaymentID *uint
}

type ActivateSubscriptionResult struct {
	Subscription *subscription.Subscription
}

// ActivateSubscriptionUseCase grants tier access after a confirmed payment.
// It is the only writer that sets a user's premium flag to true; the caller
// provides the transactional context.
type ActivateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	tierRepo         subscription.TierRepository
	userRepo         user.Repository
	logger           logger.Interface
}

func NewActivateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	tierRepo subscription.TierRepository,
	userRepo user.Repository,
	logger logger.Interface,
) *ActivateSubscriptionUseCase {
	return &ActivateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		tierRepo:         tierRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// Execute inserts a new ACTIVE subscription row and flips the owner's
// premium flag. History is additive: prior rows are never updated here.
func (uc *ActivateSubscriptionUseCase) Execute(ctx context.Context, cmd ActivateSubscriptionCommand) (*ActivateSubscriptionResult, error) {
	tier, err := uc.tierRepo.GetByID(ctx, cmd.TierID)
	if err != nil {
		uc.logger.Errorw("failed to get tier for activation", "error", err, "tier_id", cmd.TierID)
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	sub, err := subscription.NewSubscription(cmd.UserID, tier.ID(), cmd.PaymentID, tier.DurationDays())
	if err != nil {
		return nil, fmt.Errorf("failed to build subscription: %w", err)
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		uc.logger.Errorw("failed to save subscription", "error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	if tier.Plan().IsPaid() {
		endDate := sub.EndDate()
		if err := uc.userRepo.UpdatePremium(ctx, cmd.UserID, user.PremiumUpdate{
			IsPremium:    true,
			PremiumUntil: &endDate,
		}); err != nil {
			uc.logger.Errorw("failed to update premium flag", "error", err, "user_id", cmd.UserID)
			return nil, fmt.Errorf("failed to update premium flag: %w", err)
		}
	}

	uc.logger.Infow("subscription activated",
		"subscription_id", sub.ID(),
		"user_id", cmd.UserID,
		"tier", tier.Name(),
		"end_date", sub.EndDate())

	return &ActivateSubscriptionResult{Subscription: sub}, nil
}
