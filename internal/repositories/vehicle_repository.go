package repositories

import (
	"context"

	"github.com/macworldgithub/westside-backend/internal/models"
	"gorm.io/gorm"
)

// VehicleRepository interface for vehicle registry operations
type VehicleRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Vehicle, error)
	GetByRegistration(ctx context.Context, tx *gorm.DB, registrationNo string) (*models.Vehicle, error)
	Update(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters VehicleFilters) ([]*models.Vehicle, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByRegistration(ctx context.Context, tx *gorm.DB, registrationNo string, excludeID *uint) (bool, error)
	HasWorkOrders(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}
