package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// ProductModel is the persistence model for products
type ProductModel struct {
	ID                 string `gorm:"primaryKey;size:64"`
	Name               string `gorm:"size:255"`
	Attributes         datatypes.JSON
	ProvidedProductIDs datatypes.JSON
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (ProductModel) TableName() string {
	return constants.TableProducts
}
