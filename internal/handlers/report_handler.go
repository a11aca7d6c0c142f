package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SendReport emails the work order report as a PDF attachment
// @Summary Email work order report
// @Description Render the work order report to PDF and email it. The recipient defaults to the order's owner.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path uint true "Work order ID"
// @Param request body models.SendReportRequest false "Optional recipient override"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id}/report/email [post]
func (h *ReportHandler) SendReport(c *gin.Context) {
	h.LogRequest(c, "Sending work order report")

	workOrderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req models.SendReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request body",
				Details: err.Error(),
			})
			return
		}
	}

	recipient := ""
	if req.Recipient != nil {
		recipient = *req.Recipient
	}

	if err := h.service.SendEmail(c.Request.Context(), workOrderID, recipient, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Report sent"})
}

// DownloadReportPDF streams the rendered report
// @Summary Download work order report as PDF
// @Tags reports
// @Produce application/pdf
// @Param id path uint true "Work order ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id}/report/pdf [get]
func (h *ReportHandler) DownloadReportPDF(c *gin.Context) {
	h.LogRequest(c, "Rendering work order report PDF")

	workOrderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	pdf, err := h.service.GeneratePDF(c.Request.Context(), workOrderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("work-order-%d-report.pdf", workOrderID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// DownloadReportXLSX streams the repair lines as a spreadsheet
// @Summary Download work order repairs as XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Work order ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id}/report/xlsx [get]
func (h *ReportHandler) DownloadReportXLSX(c *gin.Context) {
	h.LogRequest(c, "Exporting work order spreadsheet")

	workOrderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	xlsx, err := h.service.ExportXLSX(c.Request.Context(), workOrderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("work-order-%d-repairs.xlsx", workOrderID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}
