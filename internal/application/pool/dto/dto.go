package dto

import (
	"time"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/shared/mapper"
)

// PoolDTO is the API view of a pool. Quantity -1 means unlimited.
type PoolDTO struct {
	ID                   string            `json:"id"`
	OwnerID              string            `json:"owner_id"`
	Type                 string            `json:"type"`
	ProductID            string            `json:"product_id"`
	ProvidedProducts     []string          `json:"provided_products"`
	Quantity             int64             `json:"quantity"`
	Consumed             int64             `json:"consumed"`
	Attributes           map[string]string `json:"attributes,omitempty"`
	SourceSubscriptionID string            `json:"source_subscription_id,omitempty"`
	SourceEntitlementID  string            `json:"source_entitlement_id,omitempty"`
	StartDate            time.Time         `json:"start_date"`
	EndDate              time.Time         `json:"end_date"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

type EntitlementDTO struct {
	ID           string    `json:"id"`
	ConsumerUUID string    `json:"consumer_uuid"`
	PoolID       string    `json:"pool_id"`
	Quantity     int64     `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

type ConsumerDTO struct {
	UUID              string            `json:"uuid"`
	OwnerID           string            `json:"owner_id"`
	Name              string            `json:"name"`
	Type              string            `json:"type"`
	Facts             map[string]string `json:"facts,omitempty"`
	InstalledProducts []string          `json:"installed_products"`
	GuestIDs          []string          `json:"guest_ids"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func ToPoolDTO(p *pool.Pool) *PoolDTO {
	if p == nil {
		return nil
	}
	return &PoolDTO{
		ID:                   p.ID(),
		OwnerID:              p.OwnerID(),
		Type:                 string(p.Type()),
		ProductID:            p.ProductID(),
		ProvidedProducts:     nonNil(p.ProvidedProductIDs()),
		Quantity:             p.Quantity(),
		Consumed:             p.Consumed(),
		Attributes:           p.Attributes(),
		SourceSubscriptionID: p.SourceSubscriptionID(),
		SourceEntitlementID:  p.SourceEntitlementID(),
		StartDate:            p.StartDate(),
		EndDate:              p.EndDate(),
		CreatedAt:            p.CreatedAt(),
		UpdatedAt:            p.UpdatedAt(),
	}
}

func ToPoolDTOs(pools []*pool.Pool) []*PoolDTO {
	return mapper.MapSlice(pools, ToPoolDTO)
}

func ToEntitlementDTO(e *entitlement.Entitlement) *EntitlementDTO {
	if e == nil {
		return nil
	}
	return &EntitlementDTO{
		ID:           e.ID(),
		ConsumerUUID: e.ConsumerUUID(),
		PoolID:       e.PoolID(),
		Quantity:     e.Quantity(),
		CreatedAt:    e.CreatedAt(),
	}
}

func ToEntitlementDTOs(ents []*entitlement.Entitlement) []*EntitlementDTO {
	return mapper.MapSlice(ents, ToEntitlementDTO)
}

func ToConsumerDTO(c *consumer.Consumer) *ConsumerDTO {
	if c == nil {
		return nil
	}
	return &ConsumerDTO{
		UUID:              c.UUID(),
		OwnerID:           c.OwnerID(),
		Name:              c.Name(),
		Type:              string(c.Type()),
		Facts:             c.Facts(),
		InstalledProducts: nonNil(c.InstalledProducts()),
		GuestIDs:          nonNil(c.GuestIDs()),
		CreatedAt:         c.CreatedAt(),
		UpdatedAt:         c.UpdatedAt(),
	}
}

func ToConsumerDTOs(consumers []*consumer.Consumer) []*ConsumerDTO {
	return mapper.MapSlice(consumers, ToConsumerDTO)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
