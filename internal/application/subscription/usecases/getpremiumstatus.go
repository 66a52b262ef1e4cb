package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	vo "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

// PremiumStatusCache is a short-lived lookaside for the premium check that
// fronts every stream request. A miss or cache outage falls through to the
// store.
type PremiumStatusCache interface {
	Get(ctx context.Context, userID uint) (*PremiumStatus, error)
	Set(ctx context.Context, userID uint, status *PremiumStatus) error
	Invalidate(ctx context.Context, userID uint) error
}

type PremiumStatus struct {
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	Plan         string     `json:"plan"`
}

type GetPremiumStatusUseCase struct {
	userRepo         user.Repository
	subscriptionRepo subscription.Repository
	tierRepo         subscription.TierRepository
	cache            PremiumStatusCache
	logger           logger.Interface
}

func NewGetPremiumStatusUseCase(
	userRepo user.Repository,
	subscriptionRepo subscription.Repository,
	tierRepo subscription.TierRepository,
	cache PremiumStatusCache,
	logger logger.Interface,
) *GetPremiumStatusUseCase {
	return &GetPremiumStatusUseCase{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		tierRepo:         tierRepo,
		cache:            cache,
		logger:           logger,
	}
}

// Execute answers "is this user premium right now". The cached premiumUntil
// is cross-checked against the clock so a stale cache entry can never extend
// access past the paid period.
func (uc *GetPremiumStatusUseCase) Execute(ctx context.Context, userID uint) (*PremiumStatus, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, userID)
		if err != nil {
			uc.logger.Warnw("premium status cache read failed", "error", err, "user_id", userID)
		} else if cached != nil {
			if cached.IsPremium && cached.PremiumUntil != nil && !cached.PremiumUntil.After(biztime.NowUTC()) {
				_ = uc.cache.Invalidate(ctx, userID)
			} else {
				return cached, nil
			}
		}
	}

	status, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, userID, status); err != nil {
			uc.logger.Warnw("premium status cache write failed", "error", err, "user_id", userID)
		}
	}

	return status, nil
}

func (uc *GetPremiumStatusUseCase) load(ctx context.Context, userID uint) (*PremiumStatus, error) {
	account, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	status := &PremiumStatus{
		IsPremium:    account.IsPremium(),
		PremiumUntil: account.PremiumUntil(),
		Plan:         vo.TierPlanFree.String(),
	}

	if !status.IsPremium {
		return status, nil
	}

	sub, err := uc.subscriptionRepo.GetCurrentByUserID(ctx, userID)
	if err != nil {
		// Premium flag without a readable subscription row still answers
		// the entitlement question from the user record.
		uc.logger.Warnw("failed to load current subscription", "error", err, "user_id", userID)
		return status, nil
	}

	tier, err := uc.tierRepo.GetByID(ctx, sub.TierID())
	if err != nil {
		uc.logger.Warnw("failed to load tier for premium status", "error", err, "tier_id", sub.TierID())
		return status, nil
	}

	status.Plan = tier.Plan().String()
	return status, nil
}
