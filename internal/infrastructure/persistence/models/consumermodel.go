package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// ConsumerModel is the persistence model for consumers
type ConsumerModel struct {
	UUID              string `gorm:"primaryKey;size:36"`
	OwnerID           string `gorm:"not null;size:64;index:idx_consumer_owner_virt,priority:1"`
	Name              string `gorm:"not null;size:255"`
	Type              string `gorm:"not null;size:20"`
	VirtUUID          string `gorm:"size:128;index:idx_consumer_owner_virt,priority:2;comment:virt.uuid fact or the consumer uuid"`
	Facts             datatypes.JSON
	InstalledProducts datatypes.JSON
	GuestIDs          datatypes.JSON
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (ConsumerModel) TableName() string {
	return constants.TableConsumers
}

// BeforeCreate hook for GORM
func (c *ConsumerModel) BeforeCreate(tx *gorm.DB) error {
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}
