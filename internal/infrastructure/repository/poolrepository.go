package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

type PoolRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PoolMapper
	logger logger.Interface
}

func NewPoolRepository(db *gorm.DB, logger logger.Interface) pool.Repository {
	return &PoolRepositoryImpl{
		db:     db,
		mapper: mappers.NewPoolMapper(),
		logger: logger,
	}
}

func (r *PoolRepositoryImpl) Create(ctx context.Context, p *pool.Pool) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map pool entity to model", "error", err)
		return fmt.Errorf("failed to map pool entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create pool in database", "id", model.ID, "error", err)
		return fmt.Errorf("failed to create pool: %w", err)
	}

	r.logger.Debugw("pool created", "id", model.ID, "type", model.Type, "owner_id", model.OwnerID)
	return nil
}

// Update writes the pool if nobody else bumped its version since it was loaded.
func (r *PoolRepositoryImpl) Update(ctx context.Context, p *pool.Pool) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map pool entity to model", "error", err)
		return fmt.Errorf("failed to map pool entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.PoolModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"provided_product_ids":   model.ProvidedProductIDs,
			"quantity":               model.Quantity,
			"consumed":               model.Consumed,
			"attributes":             model.Attributes,
			"source_subscription_id": model.SourceSubscriptionID,
			"source_entitlement_id":  model.SourceEntitlementID,
			"requires_host":          model.RequiresHost,
			"requires_consumer":      model.RequiresConsumer,
			"start_date":             model.StartDate,
			"end_date":               model.EndDate,
			"updated_at":             model.UpdatedAt,
			"version":                model.Version + 1,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update pool", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update pool: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return pool.ErrVersionConflict
	}

	p.IncrementVersion()
	return nil
}

func (r *PoolRepositoryImpl) Delete(ctx context.Context, poolID string) error {
	result := db.GetTxFromContext(ctx, r.db).Where("id = ?", poolID).Delete(&models.PoolModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete pool", "id", poolID, "error", result.Error)
		return fmt.Errorf("failed to delete pool: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return pool.ErrPoolNotFound
	}

	r.logger.Debugw("pool deleted", "id", poolID)
	return nil
}

func (r *PoolRepositoryImpl) GetByID(ctx context.Context, poolID string) (*pool.Pool, error) {
	var model models.PoolModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", poolID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pool.ErrPoolNotFound
		}
		r.logger.Errorw("failed to get pool by ID", "id", poolID, "error", err)
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	return r.toEntity(&model)
}

func (r *PoolRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]*pool.Pool, error) {
	return r.list(ctx, "owner", func(q *gorm.DB) *gorm.DB {
		return q.Scopes(db.OwnedBy(ownerID))
	})
}

func (r *PoolRepositoryImpl) ListByOwnerAndType(ctx context.Context, ownerID string, poolType pool.Type) ([]*pool.Pool, error) {
	return r.list(ctx, "owner and type", func(q *gorm.DB) *gorm.DB {
		return q.Scopes(db.OwnedBy(ownerID)).Where("type = ?", string(poolType))
	})
}

func (r *PoolRepositoryImpl) FindBySourceEntitlement(ctx context.Context, entitlementID string) (*pool.Pool, error) {
	return r.findOne(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ? AND source_entitlement_id = ?", string(pool.TypeDerivedVirt), entitlementID)
	})
}

func (r *PoolRepositoryImpl) FindDerived(ctx context.Context, subscriptionID, hostUUID string) (*pool.Pool, error) {
	return r.findOne(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ? AND source_subscription_id = ? AND requires_host = ?",
			string(pool.TypeDerivedVirt), subscriptionID, hostUUID)
	})
}

func (r *PoolRepositoryImpl) ListDerivedForHost(ctx context.Context, hostUUID string) ([]*pool.Pool, error) {
	return r.list(ctx, "host", func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ? AND requires_host = ?", string(pool.TypeDerivedVirt), hostUUID)
	})
}

func (r *PoolRepositoryImpl) ListDevelopmentForConsumer(ctx context.Context, consumerUUID string) ([]*pool.Pool, error) {
	return r.list(ctx, "consumer", func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ? AND requires_consumer = ?", string(pool.TypeDevelopment), consumerUUID)
	})
}

func (r *PoolRepositoryImpl) ListExpiredDevelopment(ctx context.Context, at time.Time) ([]*pool.Pool, error) {
	return r.list(ctx, "expiry", func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ?", string(pool.TypeDevelopment)).Scopes(db.ExpiredAt(at))
	})
}

func (r *PoolRepositoryImpl) findOne(ctx context.Context, filter func(*gorm.DB) *gorm.DB) (*pool.Pool, error) {
	var modelList []*models.PoolModel
	if err := filter(db.GetTxFromContext(ctx, r.db)).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find pool", "error", err)
		return nil, fmt.Errorf("failed to find pool: %w", err)
	}
	if len(modelList) == 0 {
		return nil, nil
	}
	return r.toEntity(modelList[0])
}

func (r *PoolRepositoryImpl) list(ctx context.Context, by string, filter func(*gorm.DB) *gorm.DB) ([]*pool.Pool, error) {
	var modelList []*models.PoolModel
	if err := filter(db.GetTxFromContext(ctx, r.db)).
		Order("created_at ASC, id ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list pools", "by", by, "error", err)
		return nil, fmt.Errorf("failed to list pools by %s: %w", by, err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map pool models to entities", "by", by, "error", err)
		return nil, fmt.Errorf("failed to map pools: %w", err)
	}
	return entities, nil
}

func (r *PoolRepositoryImpl) toEntity(model *models.PoolModel) (*pool.Pool, error) {
	entity, err := r.mapper.ToEntity(model)
	if err != nil {
		r.logger.Errorw("failed to map pool model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map pool: %w", err)
	}
	return entity, nil
}
