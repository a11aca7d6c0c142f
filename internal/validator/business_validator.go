package validator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/macworldgithub/westside-backend/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	registerCustomRules(validate)

	return &BusinessValidator{validate: validate}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateWorkOrderCreate validates work order creation business rules
func (bv *BusinessValidator) ValidateWorkOrderCreate(req *models.WorkOrderCreateRequest) ValidationErrors {
	var errors ValidationErrors

	// Basic struct validation
	errors = append(errors, bv.Validate(req)...)

	if strings.TrimSpace(req.OwnerName) == "" {
		errors = append(errors, ValidationError{
			Field:   "owner_name",
			Message: "cannot be blank",
			Value:   req.OwnerName,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateWorkOrderUpdate validates work order update business rules
func (bv *BusinessValidator) ValidateWorkOrderUpdate(req *models.WorkOrderUpdateRequest, existing *models.WorkOrder) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Status != nil {
		errors = append(errors, bv.ValidateStatusTransition(existing.Status, *req.Status)...)
	}

	if req.EndDate != nil && req.EndDate.Before(existing.StartDate) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "cannot be before the start date",
			Value:   req.EndDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateStatusTransition validates work order status transitions
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.WorkOrderStatus) ValidationErrors {
	var errors ValidationErrors

	if currentStatus == newStatus {
		return nil
	}

	allowedTransitions := map[models.WorkOrderStatus][]models.WorkOrderStatus{
		models.WorkOrderPending:    {models.WorkOrderInProgress, models.WorkOrderCancelled},
		models.WorkOrderInProgress: {models.WorkOrderCompleted, models.WorkOrderCancelled},
		models.WorkOrderCompleted:  {models.WorkOrderInProgress},
		models.WorkOrderCancelled:  {},
	}

	allowed := false
	for _, allowedStatus := range allowedTransitions[currentStatus] {
		if newStatus == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "cannot transition from " + string(currentStatus) + " to " + string(newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateRepairCreate validates repair creation business rules
func (bv *BusinessValidator) ValidateRepairCreate(req *models.RepairCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.FinishDate != nil {
		if _, err := time.Parse(time.RFC3339, *req.FinishDate); err != nil {
			errors = append(errors, ValidationError{
				Field:   "finish_date",
				Message: "must be a valid RFC 3339 timestamp",
				Value:   *req.FinishDate,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateRepairUpdate validates a repair partial patch
func (bv *BusinessValidator) ValidateRepairUpdate(req *models.RepairUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.FinishDate != nil {
		if _, err := time.Parse(time.RFC3339, *req.FinishDate); err != nil {
			errors = append(errors, ValidationError{
				Field:   "finish_date",
				Message: "must be a valid RFC 3339 timestamp",
				Value:   *req.FinishDate,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateVehicleCreate validates vehicle registration business rules
func (bv *BusinessValidator) ValidateVehicleCreate(req *models.VehicleCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if strings.TrimSpace(req.RegistrationNo) == "" {
		errors = append(errors, ValidationError{
			Field:   "registration_no",
			Message: "cannot be blank",
			Value:   req.RegistrationNo,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateMessage validates that an outgoing message carries content
func (bv *BusinessValidator) ValidateMessage(text *string, mediaCount int) ValidationErrors {
	var errors ValidationErrors

	hasText := text != nil && strings.TrimSpace(*text) != ""
	if !hasText && mediaCount == 0 {
		errors = append(errors, ValidationError{
			Field:   "text",
			Message: "message must contain text or media",
			Rule:    "business_logic",
		})
	}

	return errors
}
