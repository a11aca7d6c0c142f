package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

// maxMediaUploadBytes caps a single chat attachment.
const maxMediaUploadBytes = 100 << 20 // 100 MiB

// mediaFormFields maps multipart field names to attachment kinds.
var mediaFormFields = map[string]string{
	"images": "image",
	"videos": "video",
	"files":  "file",
	"audio":  "audio",
}

type ChatHandler struct {
	BaseHandler
	service services.ChatService
}

func NewChatHandler(service services.ChatService, logger utils.Logger) *ChatHandler {
	return &ChatHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetOrCreateRoom returns the work order's chat room, creating it on first access
// @Summary Get or create work order chat room
// @Description Return the chat room for a work order. On first access the room is created with the order's staff, its creator and all administrators as participants.
// @Tags chat
// @Produce json
// @Param id path uint true "Work order ID"
// @Success 200 {object} models.ChatRoom
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Work order not found"
// @Router /work-orders/{id}/chat [get]
func (h *ChatHandler) GetOrCreateRoom(c *gin.Context) {
	h.LogRequest(c, "Getting chat room")

	workOrderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	room, err := h.service.GetOrCreateRoom(c.Request.Context(), workOrderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListRooms returns the caller's chat rooms sorted by latest activity
// @Summary List chat rooms
// @Tags chat
// @Produce json
// @Success 200 {array} models.ChatRoomSummary
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /chat/rooms [get]
func (h *ChatHandler) ListRooms(c *gin.Context) {
	h.LogRequest(c, "Listing chat rooms")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// SendMessage posts a message with optional media attachments
// @Summary Send message
// @Description Post a message to a room. Accepts multipart form data: a "text" field plus optional "images", "videos", "files" and "audio" file fields. A message needs text or at least one attachment.
// @Tags chat
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Chat room ID"
// @Param text formData string false "Message text"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Not a participant"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /chat/rooms/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	h.LogRequest(c, "Sending message")

	roomID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if text := c.PostForm("text"); text != "" {
		req.Text = &text
	}

	media, cleanup, ok := h.collectMedia(c)
	if !ok {
		return
	}
	defer cleanup()

	msg, err := h.service.SendMessage(c.Request.Context(), roomID, userID, &req, media)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// EditMessage rewrites a message's text
// @Summary Edit message
// @Description Rewrite a message's text. Only the sender may edit, and deleted messages cannot be edited.
// @Tags chat
// @Accept json
// @Produce json
// @Param id path uint true "Message ID"
// @Param request body models.EditMessageRequest true "New text"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Not the sender"
// @Failure 404 {object} ErrorResponse "Message not found"
// @Failure 409 {object} ErrorResponse "Message deleted"
// @Router /chat/messages/{id} [put]
func (h *ChatHandler) EditMessage(c *gin.Context) {
	h.LogRequest(c, "Editing message")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	msg, err := h.service.EditMessage(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// DeleteMessage soft-deletes a message
// @Summary Delete message
// @Description Mark a message deleted. The sender or an administrator may delete; the envelope remains with its content suppressed.
// @Tags chat
// @Produce json
// @Param id path uint true "Message ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Message not found"
// @Router /chat/messages/{id} [delete]
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	h.LogRequest(c, "Deleting message")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Message deleted"})
}

// GetWeekMessages returns one week of room history
// @Summary Get weekly message history
// @Description Return a week of messages. Week 0 is the current week, anchored at the most recent Sunday 00:00 UTC; higher numbers go further back.
// @Tags chat
// @Produce json
// @Param id path uint true "Chat room ID"
// @Param week query int false "Weeks back from the current week (default: 0)"
// @Success 200 {object} models.WeekMessagesResponse
// @Failure 403 {object} ErrorResponse "Not a participant"
// @Failure 404 {object} ErrorResponse "Room not found"
// @Router /chat/rooms/{id}/messages [get]
func (h *ChatHandler) GetWeekMessages(c *gin.Context) {
	h.LogRequest(c, "Getting week messages")

	roomID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	week, err := strconv.Atoi(c.DefaultQuery("week", "0"))
	if err != nil || week < 0 {
		week = 0
	}

	resp, err := h.service.GetWeekMessages(c.Request.Context(), roomID, userID, week)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// collectMedia gathers attachments from the multipart form. The
// returned cleanup closes every opened file.
func (h *ChatHandler) collectMedia(c *gin.Context) ([]*services.MediaUpload, func(), bool) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine, text-only messages arrive
		// as plain form data.
		return nil, func() {}, true
	}

	var media []*services.MediaUpload
	var closers []func() error
	cleanup := func() {
		for _, close := range closers {
			_ = close()
		}
	}

	for field, kind := range mediaFormFields {
		for _, fileHeader := range form.File[field] {
			if fileHeader.Size > maxMediaUploadBytes {
				cleanup()
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Attachment exceeds the upload size limit",
					Details: fileHeader.Filename,
				})
				return nil, nil, false
			}

			file, err := fileHeader.Open()
			if err != nil {
				cleanup()
				h.LogError(c, err, "Failed to open attachment", "filename", fileHeader.Filename)
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Unreadable attachment",
					Details: fileHeader.Filename,
				})
				return nil, nil, false
			}
			closers = append(closers, file.Close)

			media = append(media, &services.MediaUpload{
				Kind:        kind,
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Body:        file,
			})
		}
	}

	return media, cleanup, true
}
