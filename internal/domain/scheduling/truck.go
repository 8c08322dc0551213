package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type TruckStatus string

const (
	TruckAvailable   TruckStatus = "AVAILABLE"
	TruckAssigned    TruckStatus = "ASSIGNED"
	TruckMaintenance TruckStatus = "MAINTENANCE"
	TruckOther       TruckStatus = "OTHER"
)

type Truck struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string      `gorm:"column:name;not null" json:"name"`
	Status    TruckStatus `gorm:"column:status;not null;index" json:"status"`
	Capacity  *int        `gorm:"column:capacity" json:"capacity,omitempty"`
	Notes     string      `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time   `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Truck) TableName() string { return "truck" }
