package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// AutoMigrateModels lists every persisted model.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.OwnerModel{},
		&models.ProductModel{},
		&models.SubscriptionModel{},
		&models.PoolModel{},
		&models.EntitlementModel{},
		&models.ConsumerModel{},
		&models.GuestMappingModel{},
		&models.JobModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the model structs.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) Strategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.gorm")}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	s.logger.Infow("starting gorm auto migration", "models", len(AutoMigrateModels()))
	if err := db.AutoMigrate(AutoMigrateModels()...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed")
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
