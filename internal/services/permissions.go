package services

import (
	"github.com/macworldgithub/westside-backend/internal/models"
)

// Role capability checks shared across services. System administrators
// pass every check.

// CanCreateWorkOrder reports whether the role may open new work orders.
func CanCreateWorkOrder(role models.UserRole) bool {
	return role == models.RoleShopManager || role == models.RoleSystemAdmin
}

// CanManageStaffing reports whether the role may assign or detach
// mechanics and managers on a work order.
func CanManageStaffing(role models.UserRole) bool {
	return role == models.RoleShopManager || role == models.RoleSystemAdmin
}

// CanManageUsers reports whether the role may create or remove accounts.
func CanManageUsers(role models.UserRole) bool {
	return role == models.RoleSystemAdmin
}

// CanViewWorkOrder reports whether the user may read the given order.
// Assigned staff, the creator and administrators qualify.
func CanViewWorkOrder(user *models.User, order *models.WorkOrder) bool {
	if user.IsAdmin() {
		return true
	}
	if order.CreatedBy == user.ID {
		return true
	}
	return order.HasMechanic(user.ID) || order.HasManager(user.ID)
}

// CanMutateRepair reports whether the user may change a repair line.
// A submitted repair is frozen for technicians; managers and
// administrators may still amend it.
func CanMutateRepair(user *models.User, repair *models.Repair) bool {
	if repair.Submitted && user.Role == models.RoleTechnician {
		return false
	}
	return true
}
