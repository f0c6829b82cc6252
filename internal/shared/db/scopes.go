package db

import (
	"time"

	"gorm.io/gorm"
)

// OwnedBy is a GORM scope restricting a query to rows of one owner.
//
//	db.Model(&models.PoolModel{}).Scopes(db.OwnedBy(ownerID)).Find(&pools)
func OwnedBy(ownerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

// ExpiredAt filters rows whose end_date is before at.
func ExpiredAt(at time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("end_date IS NOT NULL AND end_date < ?", at)
	}
}
