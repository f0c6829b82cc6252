package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

type OwnerRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CatalogMapper
	logger logger.Interface
}

func NewOwnerRepository(db *gorm.DB, logger logger.Interface) catalog.OwnerRepository {
	return &OwnerRepositoryImpl{db: db, mapper: mappers.NewCatalogMapper(), logger: logger}
}

func (r *OwnerRepositoryImpl) Create(ctx context.Context, o *catalog.Owner) error {
	model := r.mapper.OwnerToModel(o)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if sharedErrors.IsDuplicateError(err) {
			return catalog.ErrOwnerExists
		}
		r.logger.Errorw("failed to create owner", "key", model.Key, "error", err)
		return fmt.Errorf("failed to create owner: %w", err)
	}
	return nil
}

func (r *OwnerRepositoryImpl) GetByKey(ctx context.Context, key string) (*catalog.Owner, error) {
	return r.get(ctx, "key = ?", key)
}

func (r *OwnerRepositoryImpl) GetByID(ctx context.Context, ownerID string) (*catalog.Owner, error) {
	return r.get(ctx, "id = ?", ownerID)
}

func (r *OwnerRepositoryImpl) get(ctx context.Context, where string, arg string) (*catalog.Owner, error) {
	var model models.OwnerModel
	if err := db.GetTxFromContext(ctx, r.db).Where(where, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrOwnerNotFound
		}
		r.logger.Errorw("failed to get owner", "lookup", arg, "error", err)
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return r.mapper.OwnerToEntity(&model), nil
}

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CatalogMapper
	logger logger.Interface
}

func NewProductRepository(db *gorm.DB, logger logger.Interface) catalog.ProductRepository {
	return &ProductRepositoryImpl{db: db, mapper: mappers.NewCatalogMapper(), logger: logger}
}

func (r *ProductRepositoryImpl) Save(ctx context.Context, p *catalog.Product) error {
	model, err := r.mapper.ProductToModel(p)
	if err != nil {
		return fmt.Errorf("failed to map product entity: %w", err)
	}

	err = db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "attributes", "provided_product_ids", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to save product", "id", model.ID, "error", err)
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (r *ProductRepositoryImpl) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", productID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		r.logger.Errorw("failed to get product", "id", productID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	entity, err := r.mapper.ProductToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map product: %w", err)
	}
	return entity, nil
}

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CatalogMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) catalog.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db, mapper: mappers.NewCatalogMapper(), logger: logger}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, s *catalog.Subscription) error {
	model := r.mapper.SubscriptionToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription", "id", model.ID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	r.logger.Infow("subscription created successfully", "id", model.ID, "owner_id", model.OwnerID, "product_id", model.ProductID)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, s *catalog.Subscription) error {
	model := r.mapper.SubscriptionToModel(s)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"quantity":   model.Quantity,
			"start_date": model.StartDate,
			"end_date":   model.EndDate,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) Delete(ctx context.Context, subscriptionID string) error {
	result := db.GetTxFromContext(ctx, r.db).Where("id = ?", subscriptionID).Delete(&models.SubscriptionModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete subscription", "id", subscriptionID, "error", result.Error)
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, subscriptionID string) (*catalog.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", subscriptionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrSubscriptionNotFound
		}
		r.logger.Errorw("failed to get subscription", "id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.SubscriptionToEntity(&model), nil
}

func (r *SubscriptionRepositoryImpl) ListSubscriptions(ctx context.Context, ownerID string) ([]*catalog.Subscription, error) {
	var modelList []*models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.OwnedBy(ownerID)).
		Order("id ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs := make([]*catalog.Subscription, 0, len(modelList))
	for _, model := range modelList {
		subs = append(subs, r.mapper.SubscriptionToEntity(model))
	}
	return subs, nil
}
