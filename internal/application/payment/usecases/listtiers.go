package usecases

import (
	"context"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type ListTiersCommand struct {
	// IncludeFree keeps the zero-price tier in the listing. Purchase flows
	// pass false.
	IncludeFree bool
}

type ListTiersUseCase struct {
	tierRepo subscription.TierRepository
	logger   logger.Interface
}

func NewListTiersUseCase(tierRepo subscription.TierRepository, logger logger.Interface) *ListTiersUseCase {
	return &ListTiersUseCase{
		tierRepo: tierRepo,
		logger:   logger,
	}
}

func (uc *ListTiersUseCase) Execute(ctx context.Context, cmd ListTiersCommand) ([]*subscription.Tier, error) {
	tiers, err := uc.tierRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list tiers", "error", err)
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}

	if cmd.IncludeFree {
		return tiers, nil
	}

	paid := make([]*subscription.Tier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Plan().IsPaid() {
			paid = append(paid, tier)
		}
	}
	return paid, nil
}
