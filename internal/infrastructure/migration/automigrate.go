package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

// AutoMigrateModels returns every model the schema migration covers.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.TierModel{},
		&models.PaymentModel{},
		&models.SubscriptionModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the model structs.
// Suitable for development; versioned scripts cover the other environments.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	s.logger.Infow("starting gorm auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	s.logger.Infow("auto migration completed successfully")
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
