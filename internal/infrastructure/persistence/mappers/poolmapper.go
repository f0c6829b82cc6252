package mappers

import (
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/mapper"
)

type PoolMapper interface {
	ToEntity(model *models.PoolModel) (*pool.Pool, error)
	ToModel(entity *pool.Pool) (*models.PoolModel, error)
	ToEntities(models []*models.PoolModel) ([]*pool.Pool, error)
}

type PoolMapperImpl struct{}

func NewPoolMapper() PoolMapper {
	return &PoolMapperImpl{}
}

func (m *PoolMapperImpl) ToEntity(model *models.PoolModel) (*pool.Pool, error) {
	if model == nil {
		return nil, nil
	}
	provided, err := unmarshalStrings(model.ProvidedProductIDs)
	if err != nil {
		return nil, err
	}
	attrs, err := unmarshalStringMap(model.Attributes)
	if err != nil {
		return nil, err
	}

	entity, err := pool.ReconstructPool(
		model.ID,
		model.OwnerID,
		model.ProductID,
		provided,
		pool.Type(model.Type),
		model.Quantity,
		model.Consumed,
		attrs,
		model.SourceSubscriptionID,
		model.SourceEntitlementID,
		model.StartDate.UTC(),
		model.EndDate.UTC(),
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct pool entity: %w", err)
	}
	return entity, nil
}

func (m *PoolMapperImpl) ToModel(entity *pool.Pool) (*models.PoolModel, error) {
	if entity == nil {
		return nil, nil
	}
	provided, err := marshalJSON(nonNilStrings(entity.ProvidedProductIDs()))
	if err != nil {
		return nil, err
	}
	attrs, err := marshalJSON(entity.Attributes())
	if err != nil {
		return nil, err
	}

	return &models.PoolModel{
		ID:                   entity.ID(),
		OwnerID:              entity.OwnerID(),
		ProductID:            entity.ProductID(),
		ProvidedProductIDs:   provided,
		Type:                 string(entity.Type()),
		Quantity:             entity.Quantity(),
		Consumed:             entity.Consumed(),
		Attributes:           attrs,
		SourceSubscriptionID: entity.SourceSubscriptionID(),
		SourceEntitlementID:  entity.SourceEntitlementID(),
		RequiresHost:         entity.RequiresHost(),
		RequiresConsumer:     entity.RequiresConsumer(),
		StartDate:            entity.StartDate(),
		EndDate:              entity.EndDate(),
		CreatedAt:            entity.CreatedAt(),
		UpdatedAt:            entity.UpdatedAt(),
		Version:              entity.Version(),
	}, nil
}

func (m *PoolMapperImpl) ToEntities(modelList []*models.PoolModel) ([]*pool.Pool, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.PoolModel) string { return model.ID })
}
