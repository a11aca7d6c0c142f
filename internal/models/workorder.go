package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "Pending"
	WorkOrderInProgress WorkOrderStatus = "InProgress"
	WorkOrderCompleted  WorkOrderStatus = "Completed"
	WorkOrderCancelled  WorkOrderStatus = "Cancelled"
)

// IsValid reports whether the status is one of the known values.
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderPending, WorkOrderInProgress, WorkOrderCompleted, WorkOrderCancelled:
		return true
	}
	return false
}

// StaffSnapshot preserves the identity of a mechanic or manager at the
// moment they were detached from a work order, so historic orders keep
// their staffing record even after the user row is gone.
type StaffSnapshot struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	DeletedAt time.Time `json:"deleted_at"`
}

type WorkOrder struct {
	ID     uint            `json:"id" gorm:"primaryKey"`
	Status WorkOrderStatus `json:"status" gorm:"default:Pending;index" validate:"omitempty,oneof=Pending InProgress Completed Cancelled"`

	// Customer details
	OwnerName   string  `json:"owner_name" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	OwnerEmail  string  `json:"owner_email" gorm:"not null;size:255;index" validate:"required,email"`
	PhoneNumber string  `json:"phone_number" gorm:"not null;size:30" validate:"required,max=30"`
	Address     *string `json:"address" gorm:"size:255" validate:"omitempty,max=255"`

	// Staffing
	HeadMechanic     string  `json:"head_mechanic" gorm:"size:100;index" validate:"omitempty,max=100"`
	OrderCreatorName string  `json:"order_creator_name" gorm:"size:100;index"`
	Notes            *string `json:"notes" gorm:"type:text" validate:"omitempty,max=2000"`

	StartDate time.Time  `json:"start_date" gorm:"not null;index"`
	EndDate   *time.Time `json:"end_date"`

	// Detached staff are snapshotted here before the association row is removed.
	MechanicHistory datatypes.JSONSlice[StaffSnapshot] `json:"mechanic_history" gorm:"type:jsonb"`
	ManagerHistory  datatypes.JSONSlice[StaffSnapshot] `json:"manager_history" gorm:"type:jsonb"`

	// Metadata
	CarID     uint           `json:"car_id" gorm:"not null;index"`
	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Car          Vehicle  `json:"car" gorm:"foreignKey:CarID"`
	Creator      User     `json:"creator" gorm:"foreignKey:CreatedBy"`
	Mechanics    []User   `json:"mechanics" gorm:"many2many:work_order_mechanics"`
	ShopManagers []User   `json:"shop_managers" gorm:"many2many:work_order_managers"`
	Repairs      []Repair `json:"repairs" gorm:"foreignKey:WorkOrderID"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

// HasMechanic reports whether the given user is currently assigned as a
// mechanic on this order. Relies on Mechanics being preloaded.
func (w *WorkOrder) HasMechanic(userID uint) bool {
	for i := range w.Mechanics {
		if w.Mechanics[i].ID == userID {
			return true
		}
	}
	return false
}

// HasManager reports whether the given user currently manages this order.
func (w *WorkOrder) HasManager(userID uint) bool {
	for i := range w.ShopManagers {
		if w.ShopManagers[i].ID == userID {
			return true
		}
	}
	return false
}
