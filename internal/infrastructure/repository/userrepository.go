package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/mappers"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/db"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) user.Repository {
	return &userRepository{db: database}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mappers.UserToDomain(&model), nil
}

// UpdatePremium writes only the entitlement columns. A nil PremiumUntil in
// the update clears the stored expiry.
func (r *userRepository) UpdatePremium(ctx context.Context, userID uint, update user.PremiumUpdate) error {
	conn := db.GetTxFromContext(ctx, r.db)
	result := conn.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_premium":    update.IsPremium,
			"premium_until": update.PremiumUntil,
			"updated_at":    biztime.NowUTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update premium flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}

	return nil
}
