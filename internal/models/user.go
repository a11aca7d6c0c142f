package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleTechnician  UserRole = "Technician"
	RoleShopManager UserRole = "ShopManager"
	RoleSystemAdmin UserRole = "SystemAdministrator"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string   `json:"-" gorm:"column:password_hash;not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:50;index" validate:"required,oneof=Technician ShopManager SystemAdministrator"`

	// Profile info
	Mobile  *string `json:"mobile" gorm:"size:30"`
	Address *string `json:"address" gorm:"size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the system administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleSystemAdmin
}
