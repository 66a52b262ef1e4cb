package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type SubscriptionWithTier struct {
	Subscription *subscription.Subscription
	Tier         *subscription.Tier
}

type ListSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	tierRepo         subscription.TierRepository
	logger           logger.Interface
}

func NewListSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	tierRepo subscription.TierRepository,
	logger logger.Interface,
) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		tierRepo:         tierRepo,
		logger:           logger,
	}
}

// Execute returns the user's full subscription history, newest first, with
// each row's tier resolved.
func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, userID uint) ([]SubscriptionWithTier, error) {
	subs, err := uc.subscriptionRepo.ListByUserID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	tiers := make(map[uint]*subscription.Tier, 2)
	result := make([]SubscriptionWithTier, 0, len(subs))
	for _, sub := range subs {
		tier, ok := tiers[sub.TierID()]
		if !ok {
			tier, err = uc.tierRepo.GetByID(ctx, sub.TierID())
			if err != nil {
				uc.logger.Errorw("failed to get tier", "error", err, "tier_id", sub.TierID())
				return nil, fmt.Errorf("failed to get tier: %w", err)
			}
			tiers[sub.TierID()] = tier
		}
		result = append(result, SubscriptionWithTier{Subscription: sub, Tier: tier})
	}

	return result, nil
}
