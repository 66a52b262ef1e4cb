package mappers

import (
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
)

func UserToModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		DisplayName:  u.DisplayName(),
		IsPremium:    u.IsPremium(),
		PremiumUntil: u.PremiumUntil(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

func UserToDomain(model *models.UserModel) *user.User {
	return user.Reconstruct(user.ReconstructParams{
		ID:           model.ID,
		Email:        model.Email,
		DisplayName:  model.DisplayName,
		IsPremium:    model.IsPremium,
		PremiumUntil: model.PremiumUntil,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
}
