package models

import (
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// EntitlementModel is the persistence model for entitlements. Rows are only
// inserted and deleted, never updated.
type EntitlementModel struct {
	ID           string    `gorm:"primaryKey;size:64;comment:Stripe-style ID: ent_xxx"`
	OwnerID      string    `gorm:"not null;size:64;index"`
	ConsumerUUID string    `gorm:"not null;size:36;index:idx_entitlement_consumer_pool,priority:1"`
	PoolID       string    `gorm:"not null;size:64;index:idx_entitlement_pool;index:idx_entitlement_consumer_pool,priority:2"`
	Quantity     int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (EntitlementModel) TableName() string {
	return constants.TableEntitlements
}
