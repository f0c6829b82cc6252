package mappers

import (
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
	"github.com/orris-inc/poolkeeper/internal/shared/mapper"
)

type EntitlementMapper interface {
	ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error)
	ToModel(entity *entitlement.Entitlement) *models.EntitlementModel
	ToEntities(models []*models.EntitlementModel) ([]*entitlement.Entitlement, error)
}

type EntitlementMapperImpl struct{}

func NewEntitlementMapper() EntitlementMapper {
	return &EntitlementMapperImpl{}
}

func (m *EntitlementMapperImpl) ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error) {
	if model == nil {
		return nil, nil
	}
	return entitlement.ReconstructEntitlement(
		model.ID,
		model.OwnerID,
		model.ConsumerUUID,
		model.PoolID,
		model.Quantity,
		model.CreatedAt.UTC(),
	)
}

func (m *EntitlementMapperImpl) ToModel(entity *entitlement.Entitlement) *models.EntitlementModel {
	if entity == nil {
		return nil
	}
	return &models.EntitlementModel{
		ID:           entity.ID(),
		OwnerID:      entity.OwnerID(),
		ConsumerUUID: entity.ConsumerUUID(),
		PoolID:       entity.PoolID(),
		Quantity:     entity.Quantity(),
		CreatedAt:    entity.CreatedAt(),
	}
}

func (m *EntitlementMapperImpl) ToEntities(modelList []*models.EntitlementModel) ([]*entitlement.Entitlement, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.EntitlementModel) string { return model.ID })
}
