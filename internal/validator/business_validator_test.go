package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/macworldgithub/westside-backend/internal/models"
)

func TestValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		from    models.WorkOrderStatus
		to      models.WorkOrderStatus
		allowed bool
	}{
		{models.WorkOrderPending, models.WorkOrderInProgress, true},
		{models.WorkOrderPending, models.WorkOrderCancelled, true},
		{models.WorkOrderPending, models.WorkOrderCompleted, false},
		{models.WorkOrderInProgress, models.WorkOrderCompleted, true},
		{models.WorkOrderInProgress, models.WorkOrderCancelled, true},
		{models.WorkOrderInProgress, models.WorkOrderPending, false},
		{models.WorkOrderCompleted, models.WorkOrderInProgress, true},
		{models.WorkOrderCompleted, models.WorkOrderCancelled, false},
		{models.WorkOrderCancelled, models.WorkOrderPending, false},
		{models.WorkOrderCancelled, models.WorkOrderInProgress, false},
		// Same-status updates are a no-op, never an error.
		{models.WorkOrderPending, models.WorkOrderPending, true},
		{models.WorkOrderCancelled, models.WorkOrderCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.from, tt.to)
			if tt.allowed {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateWorkOrderUpdate_EndDate(t *testing.T) {
	bv := NewBusinessValidator()

	start := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	existing := &models.WorkOrder{Status: models.WorkOrderInProgress, StartDate: start}

	early := start.AddDate(0, 0, -1)
	errs := bv.ValidateWorkOrderUpdate(&models.WorkOrderUpdateRequest{EndDate: &early}, existing)
	assert.NotEmpty(t, errs)

	late := start.AddDate(0, 0, 3)
	errs = bv.ValidateWorkOrderUpdate(&models.WorkOrderUpdateRequest{EndDate: &late}, existing)
	assert.Empty(t, errs)
}

func TestValidateRepairUpdate_FinishDate(t *testing.T) {
	bv := NewBusinessValidator()

	bad := "03/05/2025"
	errs := bv.ValidateRepairUpdate(&models.RepairUpdateRequest{FinishDate: &bad})
	assert.NotEmpty(t, errs)

	good := "2025-05-03T10:00:00Z"
	errs = bv.ValidateRepairUpdate(&models.RepairUpdateRequest{FinishDate: &good})
	assert.Empty(t, errs)
}

func TestValidateMessage(t *testing.T) {
	bv := NewBusinessValidator()

	empty := "   "
	text := "hello"

	assert.NotEmpty(t, bv.ValidateMessage(nil, 0))
	assert.NotEmpty(t, bv.ValidateMessage(&empty, 0))
	assert.Empty(t, bv.ValidateMessage(&text, 0))
	assert.Empty(t, bv.ValidateMessage(nil, 2))
}
