package repositories

import (
	"time"

	"github.com/macworldgithub/westside-backend/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type WorkOrderFilters struct {
	Status    *models.WorkOrderStatus `json:"status"`
	CarID     *uint                   `json:"car_id"`
	Search    string                  `json:"search"` // matches owner, staff names, email, phone, address
	DateFrom  *time.Time              `json:"date_from"`
	DateTo    *time.Time              `json:"date_to"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
	SortBy    string                  `json:"sort_by"`    // "created_at", "start_date", "owner_name"
	SortOrder string                  `json:"sort_order"` // "asc", "desc"

	// Visibility scoping. When set, only orders the user is assigned to
	// (as mechanic, manager or creator) are returned.
	ScopeUserID *uint `json:"scope_user_id"`
}

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	Search    string           `json:"search"` // matches name or email
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`
	SortOrder string           `json:"sort_order"`
}

type VehicleFilters struct {
	Search    string `json:"search"` // matches model, variant, registration
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type MessageFilters struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
