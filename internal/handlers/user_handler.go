package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/services"
	"github.com/macworldgithub/westside-backend/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== AUTH ENDPOINTS =====

// Login authenticates a user and returns a signed token
// @Summary Log in
// @Description Authenticate with email and password, returning a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Logging in user")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== USER ENDPOINTS =====

// CreateTechnician registers a new technician account
// @Summary Create technician
// @Description Register a new technician account (administrators only)
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UserCreateRequest true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /users/technicians [post]
func (h *UserHandler) CreateTechnician(c *gin.Context) {
	h.createUser(c, "technician", h.service.CreateTechnician)
}

// CreateShopManager registers a new shop manager account
// @Summary Create shop manager
// @Description Register a new shop manager account (administrators only)
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UserCreateRequest true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /users/shop-managers [post]
func (h *UserHandler) CreateShopManager(c *gin.Context) {
	h.createUser(c, "shop manager", h.service.CreateShopManager)
}

// CreateSystemAdmin registers a new system administrator account
// @Summary Create system administrator
// @Description Register a new system administrator account (administrators only)
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UserCreateRequest true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /users/system-admins [post]
func (h *UserHandler) CreateSystemAdmin(c *gin.Context) {
	h.createUser(c, "system administrator", h.service.CreateSystemAdmin)
}

func (h *UserHandler) createUser(c *gin.Context, label string, create func(context.Context, *services.CreateUserRequest) (*models.User, error)) {
	h.LogRequest(c, "Creating "+label)

	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	user, err := create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser returns a single user by ID
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	h.LogRequest(c, "Getting user")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetMe returns the authenticated user's own account
// @Summary Get current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	h.LogRequest(c, "Getting current user")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns users filtered by role and search term
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param role query string false "Filter by role: Technician, ShopManager, SystemAdministrator"
// @Param search query string false "Match against name or email"
// @Param sort_by query string false "Sort column (default: created_at)"
// @Param sort_dir query string false "asc or desc (default: desc)"
// @Success 200 {object} services.UserListResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := repositories.UserFilters{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_dir", "desc"),
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if role != models.RoleTechnician && role != models.RoleShopManager && role != models.RoleSystemAdmin {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid role filter",
			})
			return
		}
		filters.Role = &role
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

// UpdateUser modifies a user account
// @Summary Update user
// @Description Update account details. Users may edit themselves; role changes require an administrator.
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param request body models.UserUpdateRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	h.LogRequest(c, "Updating user")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RemoveUser deletes a user, detaching them from all work orders and chats
// @Summary Remove user
// @Description Snapshot the user into every assigned work order's history, remove them from chat rooms, then delete the account (administrators only)
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) RemoveUser(c *gin.Context) {
	h.LogRequest(c, "Removing user")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), id, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User removed"})
}

// ===== HELPERS =====

// parsePageSize reads page/size query parameters with the usual
// defaults and caps.
func parsePageSize(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
