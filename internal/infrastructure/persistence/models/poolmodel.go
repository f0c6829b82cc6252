package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// PoolModel is the persistence model for pools.
// RequiresHost and RequiresConsumer duplicate the attributes of the same name
// so derived and development pools can be looked up by index.
type PoolModel struct {
	ID                   string `gorm:"primaryKey;size:64;comment:Stripe-style ID: pool_xxx"`
	OwnerID              string `gorm:"not null;size:64;index:idx_pool_owner_type,priority:1"`
	ProductID            string `gorm:"not null;size:64"`
	ProvidedProductIDs   datatypes.JSON
	Type                 string `gorm:"not null;size:20;index:idx_pool_owner_type,priority:2"`
	Quantity             int64  `gorm:"not null"`
	Consumed             int64  `gorm:"not null;default:0"`
	Attributes           datatypes.JSON
	SourceSubscriptionID string    `gorm:"size:64;index:idx_pool_source_sub_host,priority:1"`
	SourceEntitlementID  string    `gorm:"size:64;index"`
	RequiresHost         string    `gorm:"size:64;index:idx_pool_source_sub_host,priority:2"`
	RequiresConsumer     string    `gorm:"size:64;index"`
	StartDate            time.Time `gorm:"not null"`
	EndDate              time.Time `gorm:"not null;index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (PoolModel) TableName() string {
	return constants.TablePools
}

// BeforeCreate hook for GORM
func (p *PoolModel) BeforeCreate(tx *gorm.DB) error {
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}
