package models

import (
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// SubscriptionModel is the persistence model for subscriptions.
// Quantity -1 means unlimited.
type SubscriptionModel struct {
	ID        string    `gorm:"primaryKey;size:64;comment:Stripe-style ID: sub_xxx"`
	OwnerID   string    `gorm:"not null;size:64;index:idx_subscription_owner"`
	ProductID string    `gorm:"not null;size:64"`
	Quantity  int64     `gorm:"not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}
