package usecases

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const maxCancellationReasonLength = 500

type CancelSubscriptionCommand struct {
	UserID         uint
	SubscriptionID uint
	Reason         string
}

type CancelSubscriptionResult struct {
	Subscription *subscription.Subscription
}

// CancelSubscriptionUseCase records cancellation intent. Access is kept
// until the end date; the expiry job handles the demotion.
type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	sanitizer        *bluemonday.Policy
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		sanitizer:        bluemonday.StrictPolicy(),
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*CancelSubscriptionResult, error) {
	sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if sub.UserID() != cmd.UserID {
		return nil, apperrors.NewForbiddenError("subscription belongs to another user")
	}

	// The free-form reason ends up in support tooling; strip any markup
	// before it is stored.
	reason := strings.TrimSpace(uc.sanitizer.Sanitize(cmd.Reason))
	reason = truncateRunes(reason, maxCancellationReasonLength)

	if err := sub.Cancel(reason); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}

	updated, err := uc.subscriptionRepo.MarkCancelledIfActive(ctx, sub)
	if err != nil {
		uc.logger.Errorw("failed to save cancellation", "error", err, "subscription_id", cmd.SubscriptionID)
		return nil, fmt.Errorf("failed to save cancellation: %w", err)
	}
	if !updated {
		return nil, apperrors.NewConflictError("subscription is no longer active")
	}

	uc.logger.Infow("subscription cancelled",
		"subscription_id", sub.ID(),
		"user_id", cmd.UserID,
		"end_date", sub.EndDate())

	return &CancelSubscriptionResult{Subscription: sub}, nil
}

// truncateRunes caps s at max runes. Cutting on a byte index could split a
// multibyte character; Vietnamese reasons are the common case here.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
