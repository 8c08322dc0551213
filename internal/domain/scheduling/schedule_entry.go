package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format schedule entries are keyed by.
const DateLayout = "2006-01-02"

type ScheduleEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobID     uuid.UUID  `gorm:"type:uuid;column:job_id;not null;index" json:"jobId"`
	UserID    uuid.UUID  `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	TruckID   *uuid.UUID `gorm:"type:uuid;column:truck_id;index" json:"truckId,omitempty"`
	Date      string     `gorm:"column:date;not null;index" json:"date"`
	Notes     string     `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;column:created_by" json:"createdBy"`
}

func (ScheduleEntry) TableName() string { return "schedule_entry" }

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
