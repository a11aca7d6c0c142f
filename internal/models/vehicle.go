package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

type Vehicle struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	Model          string  `json:"model" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	Variant        string  `json:"variant" gorm:"size:100" validate:"omitempty,max=100"`
	Year           int     `json:"year" gorm:"not null" validate:"required,min=1900,max=2100"`
	RegistrationNo string  `json:"registration_no" gorm:"uniqueIndex;not null;size:30" validate:"required,max=30"`
	VIN            *string `json:"vin" gorm:"size:50" validate:"omitempty,max=50"`
	Color          *string `json:"color" gorm:"size:50"`

	// Photo is stored as an object key; a signed URL is attached on read.
	ImageKey *string `json:"-" gorm:"size:500"`
	ImageURL *string `json:"image_url,omitempty" gorm:"-"`

	// Metadata
	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Creator User `json:"creator" gorm:"foreignKey:CreatedBy"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// DisplayName renders the vehicle as "model variant year", the form used
// in work order reports.
func (v *Vehicle) DisplayName() string {
	name := v.Model
	if v.Variant != "" {
		name += " " + v.Variant
	}
	if v.Year > 0 {
		name += " " + strconv.Itoa(v.Year)
	}
	return name
}
