package mappers

import (
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/mapper"
)

type ConsumerMapper interface {
	ToEntity(model *models.ConsumerModel) (*consumer.Consumer, error)
	ToModel(entity *consumer.Consumer) (*models.ConsumerModel, error)
	ToEntities(models []*models.ConsumerModel) ([]*consumer.Consumer, error)
}

type ConsumerMapperImpl struct{}

func NewConsumerMapper() ConsumerMapper {
	return &ConsumerMapperImpl{}
}

func (m *ConsumerMapperImpl) ToEntity(model *models.ConsumerModel) (*consumer.Consumer, error) {
	if model == nil {
		return nil, nil
	}
	facts, err := unmarshalStringMap(model.Facts)
	if err != nil {
		return nil, err
	}
	installed, err := unmarshalStrings(model.InstalledProducts)
	if err != nil {
		return nil, err
	}
	guests, err := unmarshalStrings(model.GuestIDs)
	if err != nil {
		return nil, err
	}

	entity, err := consumer.ReconstructConsumer(
		model.UUID,
		model.OwnerID,
		model.Name,
		consumer.Type(model.Type),
		facts,
		installed,
		guests,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct consumer entity: %w", err)
	}
	return entity, nil
}

func (m *ConsumerMapperImpl) ToModel(entity *consumer.Consumer) (*models.ConsumerModel, error) {
	if entity == nil {
		return nil, nil
	}
	facts, err := marshalJSON(entity.Facts())
	if err != nil {
		return nil, err
	}
	installed, err := marshalJSON(nonNilStrings(entity.InstalledProducts()))
	if err != nil {
		return nil, err
	}
	guests, err := marshalJSON(nonNilStrings(entity.GuestIDs()))
	if err != nil {
		return nil, err
	}

	return &models.ConsumerModel{
		UUID:              entity.UUID(),
		OwnerID:           entity.OwnerID(),
		Name:              entity.Name(),
		Type:              string(entity.Type()),
		VirtUUID:          entity.VirtUUID(),
		Facts:             facts,
		InstalledProducts: installed,
		GuestIDs:          guests,
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
		Version:           entity.Version(),
	}, nil
}

func (m *ConsumerMapperImpl) ToEntities(modelList []*models.ConsumerModel) ([]*consumer.Consumer, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.ConsumerModel) string { return model.UUID })
}
