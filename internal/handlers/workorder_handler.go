package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

type WorkOrderHandler struct {
	BaseHandler
	service services.WorkOrderService
}

func NewWorkOrderHandler(service services.WorkOrderService, logger utils.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== WORK ORDER ENDPOINTS =====

// CreateWorkOrder opens a work order for a vehicle
// @Summary Create work order
// @Description Open a work order (shop managers and administrators only). Listed mechanics are assigned immediately.
// @Tags work-orders
// @Accept json
// @Produce json
// @Param request body models.WorkOrderCreateRequest true "New work order"
// @Success 201 {object} services.WorkOrderResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Vehicle or mechanic not found"
// @Router /work-orders [post]
func (h *WorkOrderHandler) CreateWorkOrder(c *gin.Context) {
	h.LogRequest(c, "Creating work order")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	order, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetWorkOrder returns a work order with staffing and repairs
// @Summary Get work order
// @Tags work-orders
// @Produce json
// @Param id path uint true "Work order ID"
// @Success 200 {object} services.WorkOrderResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id} [get]
func (h *WorkOrderHandler) GetWorkOrder(c *gin.Context) {
	h.LogRequest(c, "Getting work order")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	order, err := h.service.GetByIDWithDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListWorkOrders returns work orders visible to the caller
// @Summary List work orders
// @Description List work orders. Non-administrators only see orders they created or are staffed on.
// @Tags work-orders
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param status query string false "Filter by status: Pending, InProgress, Completed, Cancelled"
// @Param car_id query int false "Filter by vehicle ID"
// @Param search query string false "Match against owner and staff details"
// @Param date_from query string false "Start date lower bound (RFC3339)"
// @Param date_to query string false "Start date upper bound (RFC3339)"
// @Param sort_by query string false "Sort column (default: created_at)"
// @Param sort_dir query string false "asc or desc (default: desc)"
// @Success 200 {object} services.WorkOrderListResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /work-orders [get]
func (h *WorkOrderHandler) ListWorkOrders(c *gin.Context) {
	h.LogRequest(c, "Listing work orders")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.WorkOrderFilters{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_dir", "desc"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkOrderStatus(statusStr)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status filter",
			})
			return
		}
		filters.Status = &status
	}

	if carIDStr := c.Query("car_id"); carIDStr != "" {
		id, err := strconv.ParseUint(carIDStr, 10, 32)
		if err == nil {
			carID := uint(id)
			filters.CarID = &carID
		}
	}

	if fromStr := c.Query("date_from"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filters.DateFrom = &parsed
		}
	}
	if toStr := c.Query("date_to"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filters.DateTo = &parsed
		}
	}

	page, size := parsePageSize(c)
	filters.Limit = size
	filters.Offset = (page - 1) * size

	resp, err := h.service.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateWorkOrder modifies a work order
// @Summary Update work order
// @Description Update order details or move it through the status flow. Only the creator, an assigned manager or an administrator may edit.
// @Tags work-orders
// @Accept json
// @Produce json
// @Param id path uint true "Work order ID"
// @Param request body models.WorkOrderUpdateRequest true "Fields to change"
// @Success 200 {object} services.WorkOrderResponse
// @Failure 400 {object} ErrorResponse "Bad request or invalid status transition"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id} [put]
func (h *WorkOrderHandler) UpdateWorkOrder(c *gin.Context) {
	h.LogRequest(c, "Updating work order")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	order, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteWorkOrder removes a work order
// @Summary Delete work order
// @Tags work-orders
// @Produce json
// @Param id path uint true "Work order ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id} [delete]
func (h *WorkOrderHandler) DeleteWorkOrder(c *gin.Context) {
	h.LogRequest(c, "Deleting work order")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Work order deleted"})
}

// ===== STAFFING ENDPOINTS =====

// AddMechanic assigns a technician to a work order
// @Summary Assign mechanic
// @Tags work-orders
// @Produce json
// @Param id path uint true "Work order ID"
// @Param userId path uint true "Technician's user ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order or user not found"
// @Failure 409 {object} ErrorResponse "Already assigned or wrong role"
// @Router /work-orders/{id}/mechanics/{userId} [post]
func (h *WorkOrderHandler) AddMechanic(c *gin.Context) {
	h.staffingCall(c, "Assigning mechanic", "Mechanic assigned", h.service.AddMechanic)
}

// RemoveMechanic detaches a technician, snapshotting them into history
// @Summary Detach mechanic
// @Description Detach a technician from the work order. Their identity is preserved in the order's mechanic history.
// @Tags work-orders
// @Produce json
// @Param id path uint true "Work order ID"
// @Param userId path uint true "Technician's user ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order or user not found"
// @Failure 409 {object} ErrorResponse "Not assigned"
// @Router /work-orders/{id}/mechanics/{userId} [delete]
func (h *WorkOrderHandler) RemoveMechanic(c *gin.Context) {
	h.staffingCall(c, "Detaching mechanic", "Mechanic detached", h.service.RemoveMechanic)
}

// AddManager assigns a shop manager to a work order
// @Summary Assign manager
// @Tags work-orders
// @Produce json
// @Param id path uint true "Work order ID"
// @Param userId path uint true "Manager's user ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order or user not found"
// @Failure 409 {object} ErrorResponse "Already assigned or wrong role"
// @Router /work-orders/{id}/managers/{userId} [post]
func (h *WorkOrderHandler) AddManager(c *gin.Context) {
	h.staffingCall(c, "Assigning manager", "Manager assigned", h.service.AddManager)
}

// RemoveManager detaches a shop manager, snapshotting them into history
// @Summary Detach manager
// @Tags work-orders
// @Produce json
// @Param id path uint true "Work order ID"
// @Param userId path uint true "Manager's user ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order or user not found"
// @Failure 409 {object} ErrorResponse "Not assigned"
// @Router /work-orders/{id}/managers/{userId} [delete]
func (h *WorkOrderHandler) RemoveManager(c *gin.Context) {
	h.staffingCall(c, "Detaching manager", "Manager detached", h.service.RemoveManager)
}

func (h *WorkOrderHandler) staffingCall(c *gin.Context, logMsg, okMsg string, call func(ctx context.Context, orderID, userID, actorID uint) error) {
	h.LogRequest(c, logMsg)

	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.parseIDParam(c, "userId")
	if !ok {
		return
	}
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := call(c.Request.Context(), orderID, userID, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: okMsg})
}
