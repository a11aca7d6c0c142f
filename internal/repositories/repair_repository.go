package repositories

import (
	"context"

	"github.com/macworldgithub/westside-backend/internal/models"
	"gorm.io/gorm"
)

// RepairRepository interface for repair line item operations
type RepairRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, repair *models.Repair) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Repair, error)
	Update(ctx context.Context, tx *gorm.DB, repair *models.Repair) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	GetByWorkOrder(ctx context.Context, tx *gorm.DB, workOrderID uint) ([]*models.Repair, error)

	// Partial updates
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}
