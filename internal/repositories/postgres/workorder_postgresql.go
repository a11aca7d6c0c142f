package postgres

import (
	"context"
	"fmt"

	"github.com/macworldgithub/westside-backend/internal/cache"
	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type WorkOrderPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewWorkOrderPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.WorkOrderRepository {
	return &WorkOrderPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (w *WorkOrderPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return w.db
}

// Create creates a new work order together with its initial staff associations
func (w *WorkOrderPostgreSQL) Create(ctx context.Context, tx *gorm.DB, order *models.WorkOrder) error {
	if err := w.getDB(tx).WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create work order: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, w.cacheManager.WorkOrder, "list:*")
	cache.SafeInvalidatePattern(ctx, w.cacheManager.WorkOrder, "user:*")

	return nil
}

// GetByID retrieves a work order with its staff associations, cached
func (w *WorkOrderPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.WorkOrder, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var order models.WorkOrder

	err := w.cacheManager.WorkOrder.CacheOrExecute(ctx, cacheKey, &order, cache.WorkOrderCacheConfig.TTL, func() (interface{}, error) {
		var dbOrder models.WorkOrder
		err := w.getDB(tx).WithContext(ctx).
			Preload("Car").
			Preload("Mechanics").
			Preload("ShopManagers").
			First(&dbOrder, id).Error
		if err != nil {
			return nil, err
		}
		return &dbOrder, nil
	})

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// GetByIDWithDetails retrieves a work order with car, staff and repairs
func (w *WorkOrderPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.WorkOrder, error) {
	cacheKey := fmt.Sprintf("details:%d", id)
	var order models.WorkOrder

	err := w.cacheManager.WorkOrder.CacheOrExecute(ctx, cacheKey, &order, cache.WorkOrderCacheConfig.TTL, func() (interface{}, error) {
		var dbOrder models.WorkOrder
		err := w.getDB(tx).WithContext(ctx).
			Preload("Car").
			Preload("Creator").
			Preload("Mechanics").
			Preload("ShopManagers").
			Preload("Repairs", func(db *gorm.DB) *gorm.DB {
				return db.Order("repairs.created_at ASC")
			}).
			First(&dbOrder, id).Error
		if err != nil {
			return nil, err
		}
		return &dbOrder, nil
	})

	return &order, err
}

// Update updates mutable work order fields and invalidates cache
func (w *WorkOrderPostgreSQL) Update(ctx context.Context, tx *gorm.DB, order *models.WorkOrder) error {
	if err := w.getDB(tx).WithContext(ctx).Model(&models.WorkOrder{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":             order.Status,
		"owner_name":         order.OwnerName,
		"owner_email":        order.OwnerEmail,
		"phone_number":       order.PhoneNumber,
		"address":            order.Address,
		"head_mechanic":      order.HeadMechanic,
		"order_creator_name": order.OrderCreatorName,
		"notes":              order.Notes,
		"start_date":         order.StartDate,
		"end_date":           order.EndDate,
		"updated_at":         order.UpdatedAt,
	}).Error; err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, order.ID)

	return nil
}

// Delete soft deletes a work order
func (w *WorkOrderPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := w.getDB(tx).WithContext(ctx).Delete(&models.WorkOrder{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete work order: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, id)

	return nil
}

// List retrieves work orders with filters, scoping and pagination
func (w *WorkOrderPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.WorkOrderFilters) ([]*models.WorkOrder, int64, error) {
	query := w.getDB(tx).WithContext(ctx).Model(&models.WorkOrder{})

	query = w.helpers.ApplyWorkOrderFilters(query, filters)

	// Restrict to orders the user is staffed on or created
	if filters.ScopeUserID != nil {
		userID := *filters.ScopeUserID
		query = query.Where(
			"work_orders.created_by = ? OR work_orders.id IN (?) OR work_orders.id IN (?)",
			userID,
			w.getDB(tx).Table("work_order_mechanics").Select("work_order_id").Where("user_id = ?", userID),
			w.getDB(tx).Table("work_order_managers").Select("work_order_id").Where("user_id = ?", userID),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = w.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var orders []*models.WorkOrder
	err := query.
		Preload("Car").
		Preload("Mechanics").
		Preload("ShopManagers").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetByCar retrieves all work orders for a vehicle
func (w *WorkOrderPostgreSQL) GetByCar(ctx context.Context, tx *gorm.DB, carID uint) ([]*models.WorkOrder, error) {
	var orders []*models.WorkOrder
	err := w.getDB(tx).WithContext(ctx).
		Where("car_id = ?", carID).
		Order("start_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get work orders by car: %w", err)
	}
	return orders, nil
}

// GetByAssignedUser retrieves all orders the user is staffed on or created
func (w *WorkOrderPostgreSQL) GetByAssignedUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.WorkOrder, error) {
	var orders []*models.WorkOrder
	err := w.getDB(tx).WithContext(ctx).
		Where(
			"created_by = ? OR id IN (?) OR id IN (?)",
			userID,
			w.getDB(tx).Table("work_order_mechanics").Select("work_order_id").Where("user_id = ?", userID),
			w.getDB(tx).Table("work_order_managers").Select("work_order_id").Where("user_id = ?", userID),
		).
		Preload("Mechanics").
		Preload("ShopManagers").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get work orders by user: %w", err)
	}
	return orders, nil
}

// AddMechanic attaches a mechanic to the order
func (w *WorkOrderPostgreSQL) AddMechanic(ctx context.Context, tx *gorm.DB, orderID uint, user *models.User) error {
	order := models.WorkOrder{ID: orderID}
	if err := w.getDB(tx).WithContext(ctx).Model(&order).Association("Mechanics").Append(user); err != nil {
		return fmt.Errorf("failed to add mechanic: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, orderID)

	return nil
}

// RemoveMechanic detaches a mechanic from the order
func (w *WorkOrderPostgreSQL) RemoveMechanic(ctx context.Context, tx *gorm.DB, orderID, userID uint) error {
	order := models.WorkOrder{ID: orderID}
	user := models.User{ID: userID}
	if err := w.getDB(tx).WithContext(ctx).Model(&order).Association("Mechanics").Delete(&user); err != nil {
		return fmt.Errorf("failed to remove mechanic: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, orderID)

	return nil
}

// AddManager attaches a shop manager to the order
func (w *WorkOrderPostgreSQL) AddManager(ctx context.Context, tx *gorm.DB, orderID uint, user *models.User) error {
	order := models.WorkOrder{ID: orderID}
	if err := w.getDB(tx).WithContext(ctx).Model(&order).Association("ShopManagers").Append(user); err != nil {
		return fmt.Errorf("failed to add manager: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, orderID)

	return nil
}

// RemoveManager detaches a shop manager from the order
func (w *WorkOrderPostgreSQL) RemoveManager(ctx context.Context, tx *gorm.DB, orderID, userID uint) error {
	order := models.WorkOrder{ID: orderID}
	user := models.User{ID: userID}
	if err := w.getDB(tx).WithContext(ctx).Model(&order).Association("ShopManagers").Delete(&user); err != nil {
		return fmt.Errorf("failed to remove manager: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, orderID)

	return nil
}

// IsMechanic checks the mechanic association table directly
func (w *WorkOrderPostgreSQL) IsMechanic(ctx context.Context, tx *gorm.DB, orderID, userID uint) (bool, error) {
	var count int64
	err := w.getDB(tx).WithContext(ctx).
		Table("work_order_mechanics").
		Where("work_order_id = ? AND user_id = ?", orderID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsManager checks the manager association table directly
func (w *WorkOrderPostgreSQL) IsManager(ctx context.Context, tx *gorm.DB, orderID, userID uint) (bool, error) {
	var count int64
	err := w.getDB(tx).WithContext(ctx).
		Table("work_order_managers").
		Where("work_order_id = ? AND user_id = ?", orderID, userID).
		Count(&count).Error
	return count > 0, err
}

// AppendMechanicHistory records a detached mechanic snapshot on the order
func (w *WorkOrderPostgreSQL) AppendMechanicHistory(ctx context.Context, tx *gorm.DB, orderID uint, snapshot models.StaffSnapshot) error {
	var order models.WorkOrder
	db := w.getDB(tx).WithContext(ctx)
	if err := db.Select("id, mechanic_history").First(&order, orderID).Error; err != nil {
		return fmt.Errorf("failed to load work order history: %w", err)
	}

	order.MechanicHistory = append(order.MechanicHistory, snapshot)
	if err := db.Model(&models.WorkOrder{}).Where("id = ?", orderID).
		Update("mechanic_history", order.MechanicHistory).Error; err != nil {
		return fmt.Errorf("failed to append mechanic history: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, orderID)

	return nil
}

// AppendManagerHistory records a detached manager snapshot on the order
func (w *WorkOrderPostgreSQL) AppendManagerHistory(ctx context.Context, tx *gorm.DB, orderID uint, snapshot models.StaffSnapshot) error {
	var order models.WorkOrder
	db := w.getDB(tx).WithContext(ctx)
	if err := db.Select("id, manager_history").First(&order, orderID).Error; err != nil {
		return fmt.Errorf("failed to load work order history: %w", err)
	}

	order.ManagerHistory = append(order.ManagerHistory, snapshot)
	if err := db.Model(&models.WorkOrder{}).Where("id = ?", orderID).
		Update("manager_history", order.ManagerHistory).Error; err != nil {
		return fmt.Errorf("failed to append manager history: %w", err)
	}

	cache.InvalidateWorkOrderCache(ctx, w.cacheManager, orderID)

	return nil
}

// ExistsByID checks if a work order exists by ID
func (w *WorkOrderPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := w.getDB(tx).WithContext(ctx).
		Model(&models.WorkOrder{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
