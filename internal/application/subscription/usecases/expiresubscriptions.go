package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

// expiryBatchLimit caps how many rows one run loads at a time.
const expiryBatchLimit = 500

// transactionManager matches db.TransactionManager.
type transactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExpiryNoticeSender mails the user that their premium has lapsed.
type ExpiryNoticeSender interface {
	SendExpiryNotice(to, tierName string) error
}

type ExpireSubscriptionsResult struct {
	Expired int
	Failed  int
}

// ExpireSubscriptionsUseCase demotes ACTIVE subscriptions past their end
// date and clears premium flags that no remaining subscription backs. It is
// one of the two allowed writers of the premium flag.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	userRepo         user.Repository
	tierRepo         subscription.TierRepository
	txManager        transactionManager
	notices          ExpiryNoticeSender
	premiumCache     PremiumStatusCache
	logger           logger.Interface
}

// NewExpireSubscriptionsUseCase builds the expiry job. notices may be nil,
// in which case no lapsed-premium mail is sent; premiumCache may be nil when
// no cache is deployed.
func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	userRepo user.Repository,
	tierRepo subscription.TierRepository,
	txManager transactionManager,
	notices ExpiryNoticeSender,
	premiumCache PremiumStatusCache,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		tierRepo:         tierRepo,
		txManager:        txManager,
		notices:          notices,
		premiumCache:     premiumCache,
		logger:           logger,
	}
}

// Execute processes each lapsed subscription in its own transaction so one
// failure never blocks the rest. Re-running is a no-op for rows already
// expired; the selection predicate excludes them.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (*ExpireSubscriptionsResult, error) {
	now := biztime.NowUTC()

	result := &ExpireSubscriptionsResult{}

	for {
		batch, err := uc.subscriptionRepo.ListActiveExpiredBefore(ctx, now, expiryBatchLimit)
		if err != nil {
			return result, fmt.Errorf("failed to list expired subscriptions: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, sub := range batch {
			premiumEnded, err := uc.expireOne(ctx, sub, now)
			if err != nil {
				uc.logger.Errorw("failed to expire subscription",
					"error", err,
					"subscription_id", sub.ID(),
					"user_id", sub.UserID())
				result.Failed++
				continue
			}
			result.Expired++

			if premiumEnded {
				uc.dropCachedPremium(ctx, sub.UserID())
				uc.sendNotice(ctx, sub)
			}
		}

		// Failed rows stay ACTIVE and would be re-selected immediately;
		// leave them to the next scheduled run instead of looping on them.
		if result.Failed > 0 || len(batch) < expiryBatchLimit {
			break
		}
	}

	uc.logger.Infow("subscription expiry run finished",
		"expired", result.Expired,
		"failed", result.Failed)

	return result, nil
}

func (uc *ExpireSubscriptionsUseCase) expireOne(ctx context.Context, sub *subscription.Subscription, now time.Time) (bool, error) {
	if err := sub.MarkAsExpired(); err != nil {
		return false, err
	}

	premiumEnded := false

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		updated, err := uc.subscriptionRepo.MarkExpiredIfActive(txCtx, sub)
		if err != nil {
			return fmt.Errorf("failed to mark subscription expired: %w", err)
		}
		if !updated {
			// Another worker already flipped it; nothing left to do.
			return nil
		}

		// Premium stays on only while another paid subscription still
		// covers the user.
		stillPaid, err := uc.subscriptionRepo.HasActivePaid(txCtx, sub.UserID(), now)
		if err != nil {
			return fmt.Errorf("failed to check remaining subscriptions: %w", err)
		}
		if stillPaid {
			return nil
		}

		if err := uc.userRepo.UpdatePremium(txCtx, sub.UserID(), user.PremiumUpdate{
			IsPremium:    false,
			PremiumUntil: nil,
		}); err != nil {
			return fmt.Errorf("failed to clear premium flag: %w", err)
		}

		premiumEnded = true
		return nil
	})

	return premiumEnded, err
}

// dropCachedPremium removes the user's cached premium status after the clear
// has committed, so reads never serve the stale flag for a full TTL.
func (uc *ExpireSubscriptionsUseCase) dropCachedPremium(ctx context.Context, userID uint) {
	if uc.premiumCache == nil {
		return
	}
	if err := uc.premiumCache.Invalidate(ctx, userID); err != nil {
		uc.logger.Warnw("failed to invalidate premium cache",
			"error", err, "user_id", userID)
	}
}

// sendNotice mails the lapsed-premium notice. Delivery is best effort; a
// failure never marks the expiry run as failed.
func (uc *ExpireSubscriptionsUseCase) sendNotice(ctx context.Context, sub *subscription.Subscription) {
	if uc.notices == nil {
		return
	}

	account, err := uc.userRepo.GetByID(ctx, sub.UserID())
	if err != nil {
		uc.logger.Warnw("failed to load user for expiry notice",
			"error", err, "user_id", sub.UserID())
		return
	}

	tierName := "Premium"
	if uc.tierRepo != nil {
		if tier, err := uc.tierRepo.GetByID(ctx, sub.TierID()); err == nil {
			tierName = tier.Name()
		}
	}

	if err := uc.notices.SendExpiryNotice(account.Email(), tierName); err != nil {
		uc.logger.Warnw("failed to send expiry notice",
			"error", err, "user_id", sub.UserID())
	}
}
