package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	vo "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/mappers"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/db"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(database *gorm.DB) subscription.Repository {
	return &subscriptionRepository{db: database}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(sub)

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	sub.SetID(model.ID)
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return mappers.SubscriptionToDomain(&model)
}

func (r *subscriptionRepository) ListByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return r.toDomain(rows)
}

// GetCurrentByUserID resolves the single row governing access right now:
// among the user's ACTIVE, unexpired rows, highest tier price wins, then
// latest end date.
func (r *subscriptionRepository) GetCurrentByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	conn := db.GetTxFromContext(ctx, r.db)
	err := conn.WithContext(ctx).
		Select("user_subscriptions.*").
		Joins("JOIN subscription_tiers ON subscription_tiers.id = user_subscriptions.tier_id").
		Where("user_subscriptions.user_id = ? AND user_subscriptions.status = ? AND user_subscriptions.end_date > ?",
			userID, vo.SubscriptionStatusActive.String(), biztime.NowUTC()).
		Order("subscription_tiers.price DESC, user_subscriptions.end_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("no active subscription")
		}
		return nil, fmt.Errorf("failed to get current subscription: %w", err)
	}

	return mappers.SubscriptionToDomain(&model)
}

func (r *subscriptionRepository) ListActiveExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).
		Where("status = ? AND end_date <= ?", vo.SubscriptionStatusActive.String(), cutoff).
		Order("end_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}

	return r.toDomain(rows)
}

func (r *subscriptionRepository) MarkExpiredIfActive(ctx context.Context, sub *subscription.Subscription) (bool, error) {
	conn := db.GetTxFromContext(ctx, r.db)
	result := conn.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ? AND status = ?", sub.ID(), vo.SubscriptionStatusActive.String()).
		Updates(map[string]interface{}{
			"status":     vo.SubscriptionStatusExpired.String(),
			"updated_at": sub.UpdatedAt(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark subscription expired: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepository) MarkCancelledIfActive(ctx context.Context, sub *subscription.Subscription) (bool, error) {
	conn := db.GetTxFromContext(ctx, r.db)
	result := conn.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ? AND status = ? AND cancelled_at IS NULL", sub.ID(), vo.SubscriptionStatusActive.String()).
		Updates(map[string]interface{}{
			"auto_renew":          false,
			"cancelled_at":        sub.CancelledAt(),
			"cancellation_reason": sub.CancellationReason(),
			"updated_at":          sub.UpdatedAt(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark subscription cancelled: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepository) HasActivePaid(ctx context.Context, userID uint, at time.Time) (bool, error) {
	var count int64

	conn := db.GetTxFromContext(ctx, r.db)
	err := conn.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Joins("JOIN subscription_tiers ON subscription_tiers.id = user_subscriptions.tier_id").
		Where("user_subscriptions.user_id = ? AND user_subscriptions.status = ? AND user_subscriptions.end_date > ? AND subscription_tiers.price > 0",
			userID, vo.SubscriptionStatusActive.String(), at).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count active paid subscriptions: %w", err)
	}

	return count > 0, nil
}

func (r *subscriptionRepository) toDomain(rows []models.SubscriptionModel) ([]*subscription.Subscription, error) {
	subs := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		sub, err := mappers.SubscriptionToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
