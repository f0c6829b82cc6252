package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

type ConsumerRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ConsumerMapper
	logger logger.Interface
}

func NewConsumerRepository(db *gorm.DB, logger logger.Interface) consumer.Repository {
	return &ConsumerRepositoryImpl{
		db:     db,
		mapper: mappers.NewConsumerMapper(),
		logger: logger,
	}
}

// Create inserts the consumer and, for a host, one mapping row per reported guest.
func (r *ConsumerRepositoryImpl) Create(ctx context.Context, c *consumer.Consumer) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map consumer entity to model", "error", err)
		return fmt.Errorf("failed to map consumer entity: %w", err)
	}

	err = db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
		return r.addMappings(tx, c.OwnerID(), c.UUID(), c.GuestIDs(), c.CreatedAt())
	})
	if err != nil {
		r.logger.Errorw("failed to create consumer", "uuid", model.UUID, "error", err)
		return err
	}

	r.logger.Debugw("consumer created", "uuid", model.UUID, "owner_id", model.OwnerID, "type", model.Type)
	return nil
}

// Update writes the consumer under optimistic locking and applies the guest
// mapping diff in the same transaction.
func (r *ConsumerRepositoryImpl) Update(ctx context.Context, c *consumer.Consumer, addedGuests, removedGuests []string, at time.Time) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map consumer entity to model", "error", err)
		return fmt.Errorf("failed to map consumer entity: %w", err)
	}

	err = db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ConsumerModel{}).
			Where("uuid = ? AND version = ?", model.UUID, model.Version).
			Updates(map[string]any{
				"name":               model.Name,
				"virt_uuid":          model.VirtUUID,
				"facts":              model.Facts,
				"installed_products": model.InstalledProducts,
				"guest_ids":          model.GuestIDs,
				"updated_at":         model.UpdatedAt,
				"version":            model.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update consumer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return consumer.ErrVersionConflict
		}

		if len(removedGuests) > 0 {
			if err := tx.Where("host_uuid = ? AND guest_id IN ?", c.UUID(), removedGuests).
				Delete(&models.GuestMappingModel{}).Error; err != nil {
				return fmt.Errorf("failed to remove guest mappings: %w", err)
			}
		}
		return r.addMappings(tx, c.OwnerID(), c.UUID(), addedGuests, at)
	})
	if err != nil {
		r.logger.Errorw("failed to update consumer", "uuid", model.UUID, "error", err)
		return err
	}

	c.IncrementVersion()
	return nil
}

func (r *ConsumerRepositoryImpl) addMappings(tx *gorm.DB, ownerID, hostUUID string, guestIDs []string, at time.Time) error {
	if len(guestIDs) == 0 {
		return nil
	}
	rows := make([]models.GuestMappingModel, 0, len(guestIDs))
	for _, guestID := range guestIDs {
		rows = append(rows, models.GuestMappingModel{
			OwnerID:    ownerID,
			HostUUID:   hostUUID,
			GuestID:    guestID,
			ReportedAt: at,
		})
	}
	// Insert one at a time so seq follows the reported order.
	for i := range rows {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows[i]).Error; err != nil {
			return fmt.Errorf("failed to add guest mapping: %w", err)
		}
	}
	return nil
}

func (r *ConsumerRepositoryImpl) GetConsumer(ctx context.Context, consumerUUID string) (*consumer.Consumer, error) {
	model, err := r.getModel(ctx, consumerUUID)
	if err != nil {
		return nil, err
	}
	entity, err := r.mapper.ToEntity(model)
	if err != nil {
		r.logger.Errorw("failed to map consumer model to entity", "uuid", consumerUUID, "error", err)
		return nil, fmt.Errorf("failed to map consumer: %w", err)
	}
	return entity, nil
}

func (r *ConsumerRepositoryImpl) getModel(ctx context.Context, consumerUUID string) (*models.ConsumerModel, error) {
	var model models.ConsumerModel
	if err := db.GetTxFromContext(ctx, r.db).Where("uuid = ?", consumerUUID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, consumer.ErrConsumerNotFound
		}
		r.logger.Errorw("failed to get consumer", "uuid", consumerUUID, "error", err)
		return nil, fmt.Errorf("failed to get consumer: %w", err)
	}
	return &model, nil
}

func (r *ConsumerRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]*consumer.Consumer, error) {
	return r.list(db.GetTxFromContext(ctx, r.db).Scopes(db.OwnedBy(ownerID)))
}

func (r *ConsumerRepositoryImpl) FindByVirtUUID(ctx context.Context, ownerID, guestID string) ([]*consumer.Consumer, error) {
	return r.list(db.GetTxFromContext(ctx, r.db).Scopes(db.OwnedBy(ownerID)).Where("virt_uuid = ?", guestID))
}

func (r *ConsumerRepositoryImpl) list(query *gorm.DB) ([]*consumer.Consumer, error) {
	var modelList []*models.ConsumerModel
	if err := query.Order("created_at ASC, uuid ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list consumers", "error", err)
		return nil, fmt.Errorf("failed to list consumers: %w", err)
	}
	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map consumers: %w", err)
	}
	return entities, nil
}

func (r *ConsumerRepositoryImpl) GetGuestIDs(ctx context.Context, hostUUID string) ([]string, error) {
	c, err := r.GetConsumer(ctx, hostUUID)
	if err != nil {
		return nil, err
	}
	return c.GuestIDs(), nil
}

func (r *ConsumerRepositoryImpl) GetInstalledProducts(ctx context.Context, consumerUUID string) ([]string, error) {
	c, err := r.GetConsumer(ctx, consumerUUID)
	if err != nil {
		return nil, err
	}
	return c.InstalledProducts(), nil
}

func (r *ConsumerRepositoryImpl) ListMappingsForGuest(ctx context.Context, ownerID, guestID string) ([]consumer.GuestMapping, error) {
	var rows []models.GuestMappingModel
	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.OwnedBy(ownerID)).
		Where("guest_id = ?", guestID).
		Order("seq DESC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list guest mappings", "guest_id", guestID, "error", err)
		return nil, fmt.Errorf("failed to list guest mappings: %w", err)
	}

	mappings := make([]consumer.GuestMapping, 0, len(rows))
	for _, row := range rows {
		mappings = append(mappings, consumer.GuestMapping{
			Seq:        row.Seq,
			OwnerID:    row.OwnerID,
			HostUUID:   row.HostUUID,
			GuestID:    row.GuestID,
			ReportedAt: row.ReportedAt.UTC(),
		})
	}
	return mappings, nil
}
