package mappers

import (
	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/models"
)

// CatalogMapper converts owners, products and subscriptions.
type CatalogMapper interface {
	OwnerToEntity(model *models.OwnerModel) *catalog.Owner
	OwnerToModel(entity *catalog.Owner) *models.OwnerModel
	ProductToEntity(model *models.ProductModel) (*catalog.Product, error)
	ProductToModel(entity *catalog.Product) (*models.ProductModel, error)
	SubscriptionToEntity(model *models.SubscriptionModel) *catalog.Subscription
	SubscriptionToModel(entity *catalog.Subscription) *models.SubscriptionModel
}

type CatalogMapperImpl struct{}

func NewCatalogMapper() CatalogMapper {
	return &CatalogMapperImpl{}
}

func (m *CatalogMapperImpl) OwnerToEntity(model *models.OwnerModel) *catalog.Owner {
	if model == nil {
		return nil
	}
	return catalog.ReconstructOwner(model.ID, model.Key, model.DisplayName, model.CreatedAt.UTC())
}

func (m *CatalogMapperImpl) OwnerToModel(entity *catalog.Owner) *models.OwnerModel {
	if entity == nil {
		return nil
	}
	return &models.OwnerModel{
		ID:          entity.ID(),
		Key:         entity.Key(),
		DisplayName: entity.DisplayName(),
		CreatedAt:   entity.CreatedAt(),
	}
}

func (m *CatalogMapperImpl) ProductToEntity(model *models.ProductModel) (*catalog.Product, error) {
	if model == nil {
		return nil, nil
	}
	attrs, err := unmarshalStringMap(model.Attributes)
	if err != nil {
		return nil, err
	}
	provided, err := unmarshalStrings(model.ProvidedProductIDs)
	if err != nil {
		return nil, err
	}
	return catalog.NewProduct(model.ID, model.Name, attrs, provided)
}

func (m *CatalogMapperImpl) ProductToModel(entity *catalog.Product) (*models.ProductModel, error) {
	if entity == nil {
		return nil, nil
	}
	attrs, err := marshalJSON(entity.Attributes())
	if err != nil {
		return nil, err
	}
	provided, err := marshalJSON(nonNilStrings(entity.ProvidedProductIDs()))
	if err != nil {
		return nil, err
	}
	return &models.ProductModel{
		ID:                 entity.ID(),
		Name:               entity.Name(),
		Attributes:         attrs,
		ProvidedProductIDs: provided,
	}, nil
}

func (m *CatalogMapperImpl) SubscriptionToEntity(model *models.SubscriptionModel) *catalog.Subscription {
	if model == nil {
		return nil
	}
	return catalog.ReconstructSubscription(
		model.ID,
		model.OwnerID,
		model.ProductID,
		model.Quantity,
		model.StartDate.UTC(),
		model.EndDate.UTC(),
	)
}

func (m *CatalogMapperImpl) SubscriptionToModel(entity *catalog.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}
	return &models.SubscriptionModel{
		ID:        entity.ID(),
		OwnerID:   entity.OwnerID(),
		ProductID: entity.ProductID(),
		Quantity:  entity.Quantity(),
		StartDate: entity.StartDate(),
		EndDate:   entity.EndDate(),
	}
}
