package models

import (
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// OwnerModel is the persistence model for owners
type OwnerModel struct {
	ID          string `gorm:"primaryKey;size:64;comment:Stripe-style ID: own_xxx"`
	Key         string `gorm:"uniqueIndex;not null;size:128"`
	DisplayName string `gorm:"size:255"`
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (OwnerModel) TableName() string {
	return constants.TableOwners
}
