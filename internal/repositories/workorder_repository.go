package repositories

import (
	"context"

	"github.com/macworldgithub/westside-backend/internal/models"
	"gorm.io/gorm"
)

// WorkOrderRepository interface for work order operations
type WorkOrderRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, order *models.WorkOrder) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.WorkOrder, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.WorkOrder, error) // Include car, staff, repairs
	Update(ctx context.Context, tx *gorm.DB, order *models.WorkOrder) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters WorkOrderFilters) ([]*models.WorkOrder, int64, error)
	GetByCar(ctx context.Context, tx *gorm.DB, carID uint) ([]*models.WorkOrder, error)
	GetByAssignedUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.WorkOrder, error)

	// Staffing operations on the association tables
	AddMechanic(ctx context.Context, tx *gorm.DB, orderID uint, user *models.User) error
	RemoveMechanic(ctx context.Context, tx *gorm.DB, orderID, userID uint) error
	AddManager(ctx context.Context, tx *gorm.DB, orderID uint, user *models.User) error
	RemoveManager(ctx context.Context, tx *gorm.DB, orderID, userID uint) error
	IsMechanic(ctx context.Context, tx *gorm.DB, orderID, userID uint) (bool, error)
	IsManager(ctx context.Context, tx *gorm.DB, orderID, userID uint) (bool, error)

	// History snapshots for detached staff
	AppendMechanicHistory(ctx context.Context, tx *gorm.DB, orderID uint, snapshot models.StaffSnapshot) error
	AppendManagerHistory(ctx context.Context, tx *gorm.DB, orderID uint, snapshot models.StaffSnapshot) error

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}
