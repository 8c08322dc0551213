package users

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOffice   Role = "OFFICE"
	RoleTech     Role = "TECH"
	RoleCustomer Role = "CUSTOMER"
)

// NormalizeRole maps legacy spellings onto the canonical role set.
// Unknown values are returned upper-cased and will fail Valid.
func NormalizeRole(s string) Role {
	r := strings.ToUpper(strings.TrimSpace(s))
	if r == "TECHNICIAN" {
		return RoleTech
	}
	return Role(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOffice, RoleTech, RoleCustomer:
		return true
	}
	return false
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = NormalizeRole(s)
	return nil
}

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName       string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName        string    `gorm:"column:last_name;not null" json:"lastName"`
	Email           string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Role            Role      `gorm:"column:role;not null;index" json:"role"`
	PhoneNumber     string    `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	ProfileImageURL string    `gorm:"column:profile_image_url" json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	IsActive        bool      `gorm:"column:is_active;not null" json:"isActive"`
}

func (User) TableName() string { return "app_user" }

// AfterFind normalizes roles written before TECHNICIAN was folded into TECH.
func (u *User) AfterFind(tx *gorm.DB) error {
	u.Role = NormalizeRole(string(u.Role))
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsOffice reports office-level access, which admins also have.
func (u *User) IsOffice() bool { return u.Role == RoleOffice || u.Role == RoleAdmin }

// IsTech reports whether the user can perform field work. Office staff can.
func (u *User) IsTech() bool { return u.Role == RoleTech || u.IsOffice() }
