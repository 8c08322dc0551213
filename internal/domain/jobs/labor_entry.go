package jobs

import (
	"time"

	"github.com/google/uuid"
)

type LaborEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID         uuid.UUID `gorm:"type:uuid;column:job_id;not null;index" json:"jobId"`
	UserID        uuid.UUID `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	UserName      string    `gorm:"column:user_name" json:"userName"`
	Hours         float64   `gorm:"column:hours;not null" json:"hours"`
	DateSubmitted time.Time `gorm:"column:date_submitted;not null" json:"dateSubmitted"`
}

func (LaborEntry) TableName() string { return "labor_entry" }
