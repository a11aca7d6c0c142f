package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

type VehicleHandler struct {
	BaseHandler
	service services.VehicleService
}

func NewVehicleHandler(service services.VehicleService, logger utils.Logger) *VehicleHandler {
	return &VehicleHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateVehicle registers a vehicle
// @Summary Create vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Param request body models.VehicleCreateRequest true "New vehicle"
// @Success 201 {object} models.Vehicle
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 409 {object} ErrorResponse "Registration already exists"
// @Router /vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	h.LogRequest(c, "Creating vehicle")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	vehicle, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle returns a vehicle by ID
// @Summary Get vehicle
// @Tags vehicles
// @Produce json
// @Param id path uint true "Vehicle ID"
// @Success 200 {object} models.Vehicle
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	h.LogRequest(c, "Getting vehicle")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// ListVehicles returns vehicles matching the search term
// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Match against model, variant or registration"
// @Param sort_by query string false "Sort column (default: created_at)"
// @Param sort_dir query string false "asc or desc (default: desc)"
// @Success 200 {object} services.VehicleListResponse
// @Router /vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	h.LogRequest(c, "Listing vehicles")

	filters := repositories.VehicleFilters{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_dir", "desc"),
	}

	page, size := parsePageSize(c)
	filters.Limit = size
	filters.Offset = (page - 1) * size

	resp, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateVehicle modifies a vehicle
// @Summary Update vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Param id path uint true "Vehicle ID"
// @Param request body models.VehicleUpdateRequest true "Fields to change"
// @Success 200 {object} models.Vehicle
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Failure 409 {object} ErrorResponse "Registration already exists"
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	h.LogRequest(c, "Updating vehicle")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	vehicle, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle removes a vehicle without work orders
// @Summary Delete vehicle
// @Description Delete a vehicle. Vehicles with work orders cannot be deleted.
// @Tags vehicles
// @Produce json
// @Param id path uint true "Vehicle ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Failure 409 {object} ErrorResponse "Vehicle has work orders"
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	h.LogRequest(c, "Deleting vehicle")

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

	c.JSON(http.StatusOK, SuccessResponse{Message: "Vehicle deleted"})
}

// UploadVehicleImage stores a photo for a vehicle
// @Summary Upload vehicle photo
// @Description Upload the vehicle's photo as multipart form data under the "image" field. Replaces any existing photo.
// @Tags vehicles
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Vehicle ID"
// @Param image formData file true "Image file"
// @Success 200 {object} models.Vehicle
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Router /vehicles/{id}/image [post]
func (h *VehicleHandler) UploadVehicleImage(c *gin.Context) {
	h.LogRequest(c, "Uploading vehicle image")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing image file",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxImageUploadBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Image exceeds the upload size limit",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded image")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unreadable image file",
		})
		return
	}
	defer file.Close()

	upload := &services.MediaUpload{
		Kind:        "image",
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	}

	vehicle, err := h.service.UploadImage(c.Request.Context(), id, upload, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicleImage removes a vehicle's photo
// @Summary Delete vehicle photo
// @Tags vehicles
// @Produce json
// @Param id path uint true "Vehicle ID"
// @Success 200 {object} models.Vehicle
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Failure 409 {object} ErrorResponse "Vehicle has no image"
// @Router /vehicles/{id}/image [delete]
func (h *VehicleHandler) DeleteVehicleImage(c *gin.Context) {
	h.LogRequest(c, "Deleting vehicle image")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	vehicle, err := h.service.DeleteImage(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}
