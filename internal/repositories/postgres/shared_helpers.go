package postgres

import (
	"context"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyWorkOrderFilters applies common filters to work order queries
func (h *SharedHelpers) ApplyWorkOrderFilters(query *gorm.DB, filters repositories.WorkOrderFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("work_orders.status = ?", *filters.Status)
	}
	if filters.CarID != nil {
		query = query.Where("work_orders.car_id = ?", *filters.CarID)
	}
	if filters.DateFrom != nil {
		query = query.Where("work_orders.start_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("work_orders.start_date <= ?", *filters.DateTo)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where(
			"work_orders.owner_name ILIKE ? OR work_orders.head_mechanic ILIKE ? OR work_orders.order_creator_name ILIKE ? OR work_orders.owner_email ILIKE ? OR work_orders.phone_number ILIKE ? OR work_orders.address ILIKE ?",
			like, like, like, like, like, like)
	}
	return query
}

// ApplyUserFilters applies common filters to user queries
func (h *SharedHelpers) ApplyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}
	return query
}

// ApplyVehicleFilters applies common filters to vehicle queries
func (h *SharedHelpers) ApplyVehicleFilters(query *gorm.DB, filters repositories.VehicleFilters) *gorm.DB {
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("model ILIKE ? OR variant ILIKE ? OR registration_no ILIKE ?", like, like, like)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"status":     true,
		"start_date": true,
		"owner_name": true,
		"name":       true,
		"email":      true,
		"model":      true,
		"year":       true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// CountRepairs counts repairs for a work order
func (h *SharedHelpers) CountRepairs(ctx context.Context, workOrderID uint) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Repair{}).
		Where("work_order_id = ?", workOrderID).
		Count(&count).Error
	return count, err
}

// GetWorkOrderBasicInfo gets basic work order info
func (h *SharedHelpers) GetWorkOrderBasicInfo(ctx context.Context, orderID uint) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := h.db.WithContext(ctx).
		Select("id, status, created_by, owner_email, start_date").
		First(&order, orderID).Error
	return &order, err
}
