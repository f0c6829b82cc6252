package models

import (
	"time"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// GuestMappingModel is one host to guest report. Seq is auto-incremented and
// gives mappings a total order.
type GuestMappingModel struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	OwnerID    string    `gorm:"not null;size:64;index:idx_guest_mapping_guest,priority:1"`
	GuestID    string    `gorm:"not null;size:128;index:idx_guest_mapping_guest,priority:2;uniqueIndex:idx_guest_mapping_host_guest,priority:2"`
	HostUUID   string    `gorm:"not null;size:36;uniqueIndex:idx_guest_mapping_host_guest,priority:1"`
	ReportedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (GuestMappingModel) TableName() string {
	return constants.TableGuestMappings
}
