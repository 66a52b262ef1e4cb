package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type GetCurrentSubscriptionResult struct {
	Subscription *subscription.Subscription
	Tier         *subscription.Tier
}

type GetCurrentSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	tierRepo         subscription.TierRepository
	logger           logger.Interface
}

func NewGetCurrentSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	tierRepo subscription.TierRepository,
	logger logger.Interface,
) *GetCurrentSubscriptionUseCase {
	return &GetCurrentSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		tierRepo:         tierRepo,
		logger:           logger,
	}
}

// Execute returns the subscription governing the user's access right now.
// When history holds several ACTIVE rows the repository picks one
// deterministically: highest tier price first, then latest end date.
func (uc *GetCurrentSubscriptionUseCase) Execute(ctx context.Context, userID uint) (*GetCurrentSubscriptionResult, error) {
	sub, err := uc.subscriptionRepo.GetCurrentByUserID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("no active subscription")
		}
		uc.logger.Errorw("failed to get current subscription", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get current subscription: %w", err)
	}

	tier, err := uc.tierRepo.GetByID(ctx, sub.TierID())
	if err != nil {
		uc.logger.Errorw("failed to get tier for subscription", "error", err, "tier_id", sub.TierID())
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	return &GetCurrentSubscriptionResult{
		Subscription: sub,
		Tier:         tier,
	}, nil
}
