package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

type EntitlementRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.EntitlementMapper
	logger logger.Interface
}

func NewEntitlementRepository(db *gorm.DB, logger logger.Interface) entitlement.Repository {
	return &EntitlementRepositoryImpl{
		db:     db,
		mapper: mappers.NewEntitlementMapper(),
		logger: logger,
	}
}

func (r *EntitlementRepositoryImpl) Create(ctx context.Context, e *entitlement.Entitlement) error {
	model := r.mapper.ToModel(e)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create entitlement", "id", model.ID, "pool_id", model.PoolID, "error", err)
		return fmt.Errorf("failed to create entitlement: %w", err)
	}
	return nil
}

func (r *EntitlementRepositoryImpl) Delete(ctx context.Context, entitlementID string) error {
	result := db.GetTxFromContext(ctx, r.db).Where("id = ?", entitlementID).Delete(&models.EntitlementModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete entitlement", "id", entitlementID, "error", result.Error)
		return fmt.Errorf("failed to delete entitlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entitlement.ErrEntitlementNotFound
	}
	return nil
}

func (r *EntitlementRepositoryImpl) GetByID(ctx context.Context, entitlementID string) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", entitlementID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrEntitlementNotFound
		}
		r.logger.Errorw("failed to get entitlement by ID", "id", entitlementID, "error", err)
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map entitlement: %w", err)
	}
	return entity, nil
}

func (r *EntitlementRepositoryImpl) ListByConsumer(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error) {
	return r.list(ctx, db.GetTxFromContext(ctx, r.db).Where("consumer_uuid = ?", consumerUUID))
}

func (r *EntitlementRepositoryImpl) ListByPool(ctx context.Context, poolID string) ([]*entitlement.Entitlement, error) {
	return r.list(ctx, db.GetTxFromContext(ctx, r.db).Where("pool_id = ?", poolID))
}

func (r *EntitlementRepositoryImpl) ListByConsumerAndPool(ctx context.Context, consumerUUID, poolID string) ([]*entitlement.Entitlement, error) {
	return r.list(ctx, db.GetTxFromContext(ctx, r.db).Where("consumer_uuid = ? AND pool_id = ?", consumerUUID, poolID))
}

func (r *EntitlementRepositoryImpl) list(_ context.Context, query *gorm.DB) ([]*entitlement.Entitlement, error) {
	var modelList []*models.EntitlementModel
	if err := query.Order("created_at ASC, id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list entitlements", "error", err)
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map entitlements: %w", err)
	}
	return entities, nil
}
