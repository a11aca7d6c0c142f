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

type RepairPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewRepairPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.RepairRepository {
	return &RepairPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *RepairPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create creates a new repair line item
func (r *RepairPostgreSQL) Create(ctx context.Context, tx *gorm.DB, repair *models.Repair) error {
	if err := r.getDB(tx).WithContext(ctx).Create(repair).Error; err != nil {
		return fmt.Errorf("failed to create repair: %w", err)
	}

	cache.SafeDelete(ctx, r.cacheManager.WorkOrder, fmt.Sprintf("details:%d", repair.WorkOrderID))

	return nil
}

// GetByID retrieves a repair by ID
func (r *RepairPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Repair, error) {
	var repair models.Repair
	err := r.getDB(tx).WithContext(ctx).First(&repair, id).Error
	if err != nil {
		return nil, err
	}
	return &repair, nil
}

// Update saves a full repair record
func (r *RepairPostgreSQL) Update(ctx context.Context, tx *gorm.DB, repair *models.Repair) error {
	if err := r.getDB(tx).WithContext(ctx).Save(repair).Error; err != nil {
		return fmt.Errorf("failed to update repair: %w", err)
	}

	cache.SafeDelete(ctx, r.cacheManager.WorkOrder, fmt.Sprintf("details:%d", repair.WorkOrderID))

	return nil
}

// Delete hard deletes a repair
func (r *RepairPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var repair models.Repair
	db := r.getDB(tx).WithContext(ctx)
	if err := db.Select("id, work_order_id").First(&repair, id).Error; err != nil {
		return fmt.Errorf("failed to get repair before delete: %w", err)
	}

	if err := db.Unscoped().Delete(&models.Repair{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete repair: %w", err)
	}

	cache.SafeDelete(ctx, r.cacheManager.WorkOrder, fmt.Sprintf("details:%d", repair.WorkOrderID))

	return nil
}

// GetByWorkOrder retrieves all repairs for a work order, oldest first
func (r *RepairPostgreSQL) GetByWorkOrder(ctx context.Context, tx *gorm.DB, workOrderID uint) ([]*models.Repair, error) {
	var repairs []*models.Repair
	err := r.getDB(tx).WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&repairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get repairs by work order: %w", err)
	}
	return repairs, nil
}

// UpdateFields applies a partial patch to a repair
func (r *RepairPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	var repair models.Repair
	db := r.getDB(tx).WithContext(ctx)
	if err := db.Select("id, work_order_id").First(&repair, id).Error; err != nil {
		return fmt.Errorf("failed to get repair before update: %w", err)
	}

	if err := db.Model(&models.Repair{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update repair fields: %w", err)
	}

	cache.SafeDelete(ctx, r.cacheManager.WorkOrder, fmt.Sprintf("details:%d", repair.WorkOrderID))

	return nil
}

// ExistsByID checks if a repair exists by ID
func (r *RepairPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Repair{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
