package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/mappers"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
	"github.com/melodia-inc/melodia/internal/shared/db"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

type tierRepository struct {
	db *gorm.DB
}

func NewTierRepository(database *gorm.DB) subscription.TierRepository {
	return &tierRepository{db: database}
}

func (r *tierRepository) Create(ctx context.Context, tier *subscription.Tier) error {
	model, err := mappers.TierToModel(tier)
	if err != nil {
		return err
	}

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("tier with this plan already exists")
		}
		return fmt.Errorf("failed to create tier: %w", err)
	}

	tier.SetID(model.ID)
	return nil
}

func (r *tierRepository) GetByID(ctx context.Context, id uint) (*subscription.Tier, error) {
	var model models.TierModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("tier not found")
		}
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	return mappers.TierToDomain(&model)
}

func (r *tierRepository) GetByPlan(ctx context.Context, plan string) (*subscription.Tier, error) {
	var model models.TierModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).Where("plan = ?", plan).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("tier not found")
		}
		return nil, fmt.Errorf("failed to get tier by plan: %w", err)
	}

	return mappers.TierToDomain(&model)
}

func (r *tierRepository) ListActive(ctx context.Context) ([]*subscription.Tier, error) {
	var rows []models.TierModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}

	tiers := make([]*subscription.Tier, 0, len(rows))
	for i := range rows {
		tier, err := mappers.TierToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	return tiers, nil
}
