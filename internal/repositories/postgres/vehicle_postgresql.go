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

type VehiclePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewVehiclePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.VehicleRepository {
	return &VehiclePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (v *VehiclePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

// Create registers a new vehicle and invalidates list caches
func (v *VehiclePostgreSQL) Create(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error {
	if err := v.getDB(tx).WithContext(ctx).Create(vehicle).Error; err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, v.cacheManager.Vehicle, "list:*")

	return nil
}

// GetByID retrieves a vehicle by ID with caching
func (v *VehiclePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Vehicle, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var vehicle models.Vehicle

	err := v.cacheManager.Vehicle.CacheOrExecute(ctx, cacheKey, &vehicle, cache.VehicleCacheConfig.TTL, func() (interface{}, error) {
		var dbVehicle models.Vehicle
		err := v.getDB(tx).WithContext(ctx).First(&dbVehicle, id).Error
		if err != nil {
			return nil, err
		}
		return &dbVehicle, nil
	})

	if err != nil {
		return nil, err
	}

	return &vehicle, nil
}

// GetByRegistration retrieves a vehicle by its registration number
func (v *VehiclePostgreSQL) GetByRegistration(ctx context.Context, tx *gorm.DB, registrationNo string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := v.getDB(tx).WithContext(ctx).
		Where("registration_no = ?", registrationNo).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Update updates a vehicle and invalidates cache
func (v *VehiclePostgreSQL) Update(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error {
	if err := v.getDB(tx).WithContext(ctx).Save(vehicle).Error; err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	cache.InvalidateVehicleCache(ctx, v.cacheManager, vehicle.ID)

	return nil
}

// Delete soft deletes a vehicle
func (v *VehiclePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := v.getDB(tx).WithContext(ctx).Delete(&models.Vehicle{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	cache.InvalidateVehicleCache(ctx, v.cacheManager, id)

	return nil
}

// List retrieves vehicles with filters and pagination
func (v *VehiclePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.VehicleFilters) ([]*models.Vehicle, int64, error) {
	query := v.getDB(tx).WithContext(ctx).Model(&models.Vehicle{})

	query = v.helpers.ApplyVehicleFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = v.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var vehicles []*models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}

	return vehicles, total, nil
}

// ExistsByID checks if a vehicle exists by ID
func (v *VehiclePostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := v.getDB(tx).WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// ExistsByRegistration checks registration uniqueness, optionally excluding one vehicle
func (v *VehiclePostgreSQL) ExistsByRegistration(ctx context.Context, tx *gorm.DB, registrationNo string, excludeID *uint) (bool, error) {
	query := v.getDB(tx).WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("registration_no = ?", registrationNo)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// HasWorkOrders checks whether any work order references the vehicle
func (v *VehiclePostgreSQL) HasWorkOrders(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := v.getDB(tx).WithContext(ctx).
		Model(&models.WorkOrder{}).
		Where("car_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
