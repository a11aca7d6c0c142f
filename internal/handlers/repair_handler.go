package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

// maxImageUploadBytes caps a single repair photo upload.
const maxImageUploadBytes = 20 << 20 // 20 MiB

type RepairHandler struct {
	BaseHandler
	service services.RepairService
}

func NewRepairHandler(service services.RepairService, logger utils.Logger) *RepairHandler {
	return &RepairHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateRepair adds a repair line to a work order
// @Summary Create repair
// @Tags repairs
// @Accept json
// @Produce json
// @Param request body models.RepairCreateRequest true "New repair line"
// @Success 201 {object} services.RepairResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /repairs [post]
func (h *RepairHandler) CreateRepair(c *gin.Context) {
	h.LogRequest(c, "Creating repair")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	repair, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, repair)
}

// GetRepair returns a repair line with signed image URLs
// @Summary Get repair
// @Tags repairs
// @Produce json
// @Param id path uint true "Repair ID"
// @Success 200 {object} services.RepairResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Repair not found"
// @Router /repairs/{id} [get]
func (h *RepairHandler) GetRepair(c *gin.Context) {
	h.LogRequest(c, "Getting repair")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	repair, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, repair)
}

// ListRepairs returns a work order's repair lines
// @Summary List repairs for a work order
// @Tags repairs
// @Produce json
// @Param id path uint true "Work order ID"
// @Success 200 {array} services.RepairResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id}/repairs [get]
func (h *RepairHandler) ListRepairs(c *gin.Context) {
	h.LogRequest(c, "Listing repairs")

	workOrderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	repairs, err := h.service.GetByWorkOrder(c.Request.Context(), workOrderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, repairs)
}

// UpdateRepair patches a repair line
// @Summary Update repair
// @Description Patch a repair line. Submitted lines cannot be changed by technicians.
// @Tags repairs
// @Accept json
// @Produce json
// @Param id path uint true "Repair ID"
// @Param request body models.RepairUpdateRequest true "Fields to change"
// @Success 200 {object} services.RepairResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden or line submitted"
// @Failure 404 {object} ErrorResponse "Repair not found"
// @Router /repairs/{id} [put]
func (h *RepairHandler) UpdateRepair(c *gin.Context) {
	h.LogRequest(c, "Updating repair")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	repair, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, repair)
}

// DeleteRepair removes a repair line and its stored images
// @Summary Delete repair
// @Tags repairs
// @Produce json
// @Param id path uint true "Repair ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden or line submitted"
// @Failure 404 {object} ErrorResponse "Repair not found"
// @Router /repairs/{id} [delete]
func (h *RepairHandler) DeleteRepair(c *gin.Context) {
	h.LogRequest(c, "Deleting repair")

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

	c.JSON(http.StatusOK, SuccessResponse{Message: "Repair deleted"})
}

// UploadRepairImage stores a before or after photo for a repair line
// @Summary Upload repair photo
// @Description Upload the before or after photo as multipart form data under the "image" field. Replaces any existing photo of that kind.
// @Tags repairs
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Repair ID"
// @Param kind path string true "Photo slot: before or after"
// @Param image formData file true "Image file"
// @Success 200 {object} services.RepairResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden or line submitted"
// @Failure 404 {object} ErrorResponse "Repair not found"
// @Router /repairs/{id}/images/{kind} [post]
func (h *RepairHandler) UploadRepairImage(c *gin.Context) {
	h.LogRequest(c, "Uploading repair image")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	kind := c.Param("kind")
	if kind != "before" && kind != "after" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Image kind must be 'before' or 'after'",
		})
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

	repair, err := h.service.UploadImage(c.Request.Context(), id, kind, upload, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, repair)
}
