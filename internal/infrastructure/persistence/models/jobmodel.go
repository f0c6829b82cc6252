package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
)

// JobModel is the persistence model for jobs
type JobModel struct {
	ID         string `gorm:"primaryKey;size:64;comment:Stripe-style ID: job_xxx"`
	OwnerKey   string `gorm:"not null;size:128;index"`
	Type       string `gorm:"not null;size:32"`
	State      string `gorm:"not null;size:16;index:idx_job_state_created,priority:1"`
	Principal  string `gorm:"size:128"`
	TargetID   string `gorm:"size:64"`
	Data       datatypes.JSON
	Result     string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index:idx_job_state_created,priority:2"`
	UpdatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// TableName specifies the table name for GORM
func (JobModel) TableName() string {
	return constants.TableJobs
}
