package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macworldgithub/westside-backend/internal/models"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role           models.UserRole
		canCreateOrder bool
		canStaff       bool
		canManageUsers bool
	}{
		{models.RoleTechnician, false, false, false},
		{models.RoleShopManager, true, true, false},
		{models.RoleSystemAdmin, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.canCreateOrder, CanCreateWorkOrder(tt.role))
			assert.Equal(t, tt.canStaff, CanManageStaffing(tt.role))
			assert.Equal(t, tt.canManageUsers, CanManageUsers(tt.role))
		})
	}
}

func TestCanViewWorkOrder(t *testing.T) {
	order := &models.WorkOrder{
		ID:        1,
		CreatedBy: 10,
		Mechanics: []models.User{{ID: 20, Role: models.RoleTechnician}},
		ShopManagers: []models.User{
			{ID: 30, Role: models.RoleShopManager},
		},
	}

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"admin sees everything", &models.User{ID: 99, Role: models.RoleSystemAdmin}, true},
		{"creator", &models.User{ID: 10, Role: models.RoleShopManager}, true},
		{"assigned mechanic", &models.User{ID: 20, Role: models.RoleTechnician}, true},
		{"assigned manager", &models.User{ID: 30, Role: models.RoleShopManager}, true},
		{"unrelated technician", &models.User{ID: 40, Role: models.RoleTechnician}, false},
		{"unrelated manager", &models.User{ID: 50, Role: models.RoleShopManager}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewWorkOrder(tt.user, order))
		})
	}
}

func TestCanMutateRepair_SubmittedLock(t *testing.T) {
	open := &models.Repair{ID: 1, Submitted: false}
	submitted := &models.Repair{ID: 2, Submitted: true}

	technician := &models.User{ID: 1, Role: models.RoleTechnician}
	manager := &models.User{ID: 2, Role: models.RoleShopManager}
	admin := &models.User{ID: 3, Role: models.RoleSystemAdmin}

	// Everyone may edit an open repair.
	assert.True(t, CanMutateRepair(technician, open))
	assert.True(t, CanMutateRepair(manager, open))
	assert.True(t, CanMutateRepair(admin, open))

	// The lock only binds technicians.
	assert.False(t, CanMutateRepair(technician, submitted))
	assert.True(t, CanMutateRepair(manager, submitted))
	assert.True(t, CanMutateRepair(admin, submitted))
}
