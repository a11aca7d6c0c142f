package services

import (
	"context"
	"io"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request payloads are defined alongside the models they target.
type CreateUserRequest = models.UserCreateRequest
type UpdateUserRequest = models.UserUpdateRequest
type LoginRequest = models.LoginRequest
type LoginResponse = models.LoginResponse

type CreateVehicleRequest = models.VehicleCreateRequest
type UpdateVehicleRequest = models.VehicleUpdateRequest

type CreateWorkOrderRequest = models.WorkOrderCreateRequest
type UpdateWorkOrderRequest = models.WorkOrderUpdateRequest

type CreateRepairRequest = models.RepairCreateRequest
type UpdateRepairRequest = models.RepairUpdateRequest

type SendMessageRequest = models.SendMessageRequest
type EditMessageRequest = models.EditMessageRequest

type WorkOrderResponse struct {
	*models.WorkOrder
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type WorkOrderListResponse struct {
	WorkOrders []*WorkOrderResponse `json:"work_orders"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Size       int                  `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type VehicleListResponse struct {
	Vehicles []*models.Vehicle `json:"vehicles"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

// RepairResponse carries a repair line with its image keys resolved to
// signed URLs.
type RepairResponse struct {
	*models.Repair
	BeforeImageURL *string `json:"before_image_url,omitempty"`
	AfterImageURL  *string `json:"after_image_url,omitempty"`
}

// MediaUpload is one media attachment arriving with a chat message.
// Kind is one of "image", "video", "file" or "audio".
type MediaUpload struct {
	Kind        string
	Filename    string
	ContentType string
	Body        io.Reader
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	// Account creation, one entry point per role
	CreateTechnician(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	CreateShopManager(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	CreateSystemAdmin(ctx context.Context, req *CreateUserRequest) (*models.User, error)

	// Authentication
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// Read operations
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)

	// Mutations
	Update(ctx context.Context, id uint, req *UpdateUserRequest, actorID uint) (*models.User, error)

	// Remove detaches the user from every work order and chat room,
	// snapshotting their identity into order history, then deletes the
	// account.
	Remove(ctx context.Context, id uint, actorID uint) error
}

type VehicleService interface {
	Create(ctx context.Context, req *CreateVehicleRequest, creatorID uint) (*models.Vehicle, error)
	GetByID(ctx context.Context, id uint) (*models.Vehicle, error)
	Update(ctx context.Context, id uint, req *UpdateVehicleRequest, actorID uint) (*models.Vehicle, error)
	Delete(ctx context.Context, id uint, actorID uint) error
	List(ctx context.Context, filters repositories.VehicleFilters) (*VehicleListResponse, error)

	// UploadImage replaces the vehicle's photo; DeleteImage removes it.
	UploadImage(ctx context.Context, id uint, upload *MediaUpload, actorID uint) (*models.Vehicle, error)
	DeleteImage(ctx context.Context, id uint, actorID uint) (*models.Vehicle, error)
}

type WorkOrderService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateWorkOrderRequest, creatorID uint) (*WorkOrderResponse, error)
	GetByID(ctx context.Context, id uint, userID uint) (*WorkOrderResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID uint) (*WorkOrderResponse, error)
	Update(ctx context.Context, id uint, req *UpdateWorkOrderRequest, userID uint) (*WorkOrderResponse, error)
	Delete(ctx context.Context, id uint, userID uint) error

	// Listing is scoped to the caller's assignments unless they are an
	// administrator.
	List(ctx context.Context, filters repositories.WorkOrderFilters, userID uint) (*WorkOrderListResponse, error)

	// Staffing
	AddMechanic(ctx context.Context, orderID, userID, actorID uint) error
	RemoveMechanic(ctx context.Context, orderID, userID, actorID uint) error
	AddManager(ctx context.Context, orderID, userID, actorID uint) error
	RemoveManager(ctx context.Context, orderID, userID, actorID uint) error
}

type RepairService interface {
	Create(ctx context.Context, req *CreateRepairRequest, actorID uint) (*RepairResponse, error)
	GetByID(ctx context.Context, id uint, actorID uint) (*RepairResponse, error)
	GetByWorkOrder(ctx context.Context, workOrderID uint, actorID uint) ([]*RepairResponse, error)
	Update(ctx context.Context, id uint, req *UpdateRepairRequest, actorID uint) (*RepairResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error

	// UploadImage stores a before or after photo for the repair and
	// returns the updated line. Kind is "before" or "after".
	UploadImage(ctx context.Context, id uint, kind string, upload *MediaUpload, actorID uint) (*RepairResponse, error)
}

type ChatService interface {
	// GetOrCreateRoom returns the work order's room, creating it with the
	// derived participant set on first access.
	GetOrCreateRoom(ctx context.Context, workOrderID uint, initiatorID uint) (*models.ChatRoom, error)

	// ListRooms returns the caller's rooms sorted by latest activity.
	ListRooms(ctx context.Context, userID uint) ([]*models.ChatRoomSummary, error)

	// Messaging
	SendMessage(ctx context.Context, roomID uint, senderID uint, req *SendMessageRequest, media []*MediaUpload) (*models.MessageResponse, error)
	EditMessage(ctx context.Context, messageID uint, userID uint, req *EditMessageRequest) (*models.MessageResponse, error)
	DeleteMessage(ctx context.Context, messageID uint, userID uint) error

	// GetWeekMessages returns one week of history. Week 0 starts at the
	// most recent Sunday 00:00 UTC; higher numbers go further back.
	GetWeekMessages(ctx context.Context, roomID uint, userID uint, week int) (*models.WeekMessagesResponse, error)

	// SyncParticipants rebuilds the room membership from the work
	// order's current staffing.
	SyncParticipants(ctx context.Context, workOrderID uint) error
}

type ReportService interface {
	// BuildReportData assembles the printable work order summary,
	// inlining repair photos as base64.
	BuildReportData(ctx context.Context, workOrderID uint) (*models.ReportData, error)

	// RenderPDF renders the report through a headless browser.
	RenderPDF(ctx context.Context, data *models.ReportData) ([]byte, error)

	// GeneratePDF builds and renders the report for download.
	GeneratePDF(ctx context.Context, workOrderID uint, actorID uint) ([]byte, error)

	// SendEmail renders the report and mails it to the recipient.
	SendEmail(ctx context.Context, workOrderID uint, recipient string, actorID uint) error

	// ExportXLSX renders the repair lines as a spreadsheet.
	ExportXLSX(ctx context.Context, workOrderID uint, actorID uint) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	User() UserService
	Vehicle() VehicleService
	WorkOrder() WorkOrderService
	Repair() RepairService
	Chat() ChatService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
