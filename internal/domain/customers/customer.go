package customers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// String renders the address on one line, skipping empty parts.
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, strings.TrimSpace(a.State + " " + a.Zip)} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Customer struct {
	ID             uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string                       `gorm:"column:name;not null;index" json:"name"`
	ContactPerson  string                       `gorm:"column:contact_person" json:"contactPerson,omitempty"`
	Email          string                       `gorm:"column:email;index" json:"email"`
	Phone          string                       `gorm:"column:phone" json:"phone"`
	PrimaryAddress datatypes.JSONType[Address]  `gorm:"column:primary_address" json:"primaryAddress"`
	BillingAddress datatypes.JSONType[*Address] `gorm:"column:billing_address" json:"billingAddress,omitempty"`
	Notes          string                       `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt      time.Time                    `gorm:"column:created_at;not null;index" json:"createdAt"`
	IsActive       bool                         `gorm:"column:is_active;not null" json:"isActive"`
}

func (Customer) TableName() string { return "customer" }
