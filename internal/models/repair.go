package models

import (
	"time"

	"gorm.io/gorm"
)

type Repair struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	WorkOrderID uint `json:"work_order_id" gorm:"not null;index"`

	PartName     string     `json:"part_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	MechanicName string     `json:"mechanic_name" gorm:"size:100" validate:"omitempty,max=100"`
	Price        float64    `json:"price" gorm:"not null;default:0" validate:"min=0"`
	FinishDate   *time.Time `json:"finish_date"`
	Notes        *string    `json:"notes" gorm:"type:text" validate:"omitempty,max=2000"`

	// Object storage keys; signed URLs are derived at read time.
	BeforeImageKey *string `json:"before_image_key" gorm:"size:500"`
	AfterImageKey  *string `json:"after_image_key" gorm:"size:500"`

	// A submitted repair is frozen for technicians; managers and admins
	// may still amend it.
	Submitted bool `json:"submitted" gorm:"not null;default:false;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	WorkOrder *WorkOrder `json:"work_order,omitempty" gorm:"foreignKey:WorkOrderID"`
}

func (Repair) TableName() string {
	return "repairs"
}
