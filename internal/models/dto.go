package models

import (
	"time"
)

// ===== USER DTOs =====

type UserCreateRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Mobile   *string `json:"mobile" validate:"omitempty,max=30"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
}

type UserUpdateRequest struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Email           *string   `json:"email" validate:"omitempty,email"`
	Role            *UserRole `json:"role" validate:"omitempty,oneof=Technician ShopManager SystemAdministrator"`
	Mobile          *string   `json:"mobile" validate:"omitempty,max=30"`
	Address         *string   `json:"address" validate:"omitempty,max=255"`
	Password        *string   `json:"password" validate:"omitempty,min=8,max=72"`
	CurrentPassword *string   `json:"current_password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ===== VEHICLE DTOs =====

type VehicleCreateRequest struct {
	Model          string  `json:"model" validate:"required,min=1,max=100"`
	Variant        string  `json:"variant" validate:"omitempty,max=100"`
	Year           int     `json:"year" validate:"required,min=1900,max=2100"`
	RegistrationNo string  `json:"registration_no" validate:"required,max=30"`
	VIN            *string `json:"vin" validate:"omitempty,max=50"`
	Color          *string `json:"color" validate:"omitempty,max=50"`
}

type VehicleUpdateRequest struct {
	Model          *string `json:"model" validate:"omitempty,min=1,max=100"`
	Variant        *string `json:"variant" validate:"omitempty,max=100"`
	Year           *int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	RegistrationNo *string `json:"registration_no" validate:"omitempty,max=30"`
	VIN            *string `json:"vin" validate:"omitempty,max=50"`
	Color          *string `json:"color" validate:"omitempty,max=50"`
}

// ===== WORK ORDER DTOs =====

type WorkOrderCreateRequest struct {
	CarID        uint       `json:"car_id" validate:"required"`
	OwnerName    string     `json:"owner_name" validate:"required,min=1,max=100"`
	OwnerEmail   string     `json:"owner_email" validate:"required,email"`
	PhoneNumber  string     `json:"phone_number" validate:"required,max=30"`
	Address      *string    `json:"address" validate:"omitempty,max=255"`
	HeadMechanic string     `json:"head_mechanic" validate:"omitempty,max=100"`
	Notes        *string    `json:"notes" validate:"omitempty,max=2000"`
	StartDate    *time.Time `json:"start_date"`
	MechanicIDs  []uint     `json:"mechanic_ids"`
}

type WorkOrderUpdateRequest struct {
	Status       *WorkOrderStatus `json:"status" validate:"omitempty,oneof=Pending InProgress Completed Cancelled"`
	OwnerName    *string          `json:"owner_name" validate:"omitempty,min=1,max=100"`
	OwnerEmail   *string          `json:"owner_email" validate:"omitempty,email"`
	PhoneNumber  *string          `json:"phone_number" validate:"omitempty,max=30"`
	Address      *string          `json:"address" validate:"omitempty,max=255"`
	HeadMechanic *string          `json:"head_mechanic" validate:"omitempty,max=100"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
	StartDate    *time.Time       `json:"start_date"`
	EndDate      *time.Time       `json:"end_date"`
}

// ===== REPAIR DTOs =====

type RepairCreateRequest struct {
	WorkOrderID  uint    `json:"work_order_id" validate:"required"`
	PartName     string  `json:"part_name" validate:"required,min=1,max=100"`
	MechanicName string  `json:"mechanic_name" validate:"omitempty,max=100"`
	Price        float64 `json:"price" validate:"min=0"`
	FinishDate   *string `json:"finish_date"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

// RepairUpdateRequest is a partial patch: nil fields are left untouched.
// FinishDate arrives as a string and is parse-validated in the service.
type RepairUpdateRequest struct {
	PartName     *string  `json:"part_name" validate:"omitempty,min=1,max=100"`
	MechanicName *string  `json:"mechanic_name" validate:"omitempty,max=100"`
	Price        *float64 `json:"price" validate:"omitempty,min=0"`
	FinishDate   *string  `json:"finish_date"`
	Notes        *string  `json:"notes" validate:"omitempty,max=2000"`
	BeforeImage  *string  `json:"before_image"`
	AfterImage   *string  `json:"after_image"`
	Submitted    *bool    `json:"submitted"`
}

// ===== CHAT DTOs =====

type SendMessageRequest struct {
	Text *string `json:"text" validate:"omitempty,max=5000"`
}

type EditMessageRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// MessageResponse carries a message with its media keys resolved to
// signed URLs.
type MessageResponse struct {
	ID         uint      `json:"id"`
	ChatRoomID uint      `json:"chat_room_id"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       *string   `json:"text"`
	ImageURLs  []string  `json:"image_urls"`
	VideoURLs  []string  `json:"video_urls"`
	FileURLs   []string  `json:"file_urls"`
	FileNames  []string  `json:"file_names"`
	AudioURL   *string   `json:"audio_url"`
	IsDeleted  bool      `json:"is_deleted"`
	IsEdited   bool      `json:"is_edited"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatRoomSummary struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	WorkOrderID uint             `json:"work_order_id"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
}

// WeekMessagesResponse holds one week of room history. Week 0 is the
// current week anchored at the most recent Sunday 00:00 UTC.
type WeekMessagesResponse struct {
	Week       int               `json:"week"`
	TotalWeeks int               `json:"total_weeks"`
	WeekStart  time.Time         `json:"week_start"`
	WeekEnd    time.Time         `json:"week_end"`
	Messages   []MessageResponse `json:"messages"`
}

// ===== PAGINATION & FILTERING =====

type ListWorkOrdersParams struct {
	Page      int             `json:"page" validate:"min=0"`
	Size      int             `json:"size" validate:"min=1,max=100"`
	Status    WorkOrderStatus `json:"status"`
	Search    string          `json:"search"`
	CarID     *uint           `json:"car_id"`
	DateFrom  *time.Time      `json:"date_from"`
	DateTo    *time.Time      `json:"date_to"`
	SortBy    string          `json:"sort_by"`
	SortDir   string          `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type ListUsersParams struct {
	Page    int      `json:"page" validate:"min=0"`
	Size    int      `json:"size" validate:"min=1,max=100"`
	Role    UserRole `json:"role"`
	Search  string   `json:"search"`
	SortBy  string   `json:"sort_by"`
	SortDir string   `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type ListVehiclesParams struct {
	Page    int    `json:"page" validate:"min=0"`
	Size    int    `json:"size" validate:"min=1,max=100"`
	Search  string `json:"search"`
	SortBy  string `json:"sort_by"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// ===== REPORT DTOs =====

type ReportRepairItem struct {
	PartName       string  `json:"part_name"`
	MechanicName   string  `json:"mechanic_name"`
	Price          float64 `json:"price"`
	FinishDate     string  `json:"finish_date"`
	Notes          string  `json:"notes"`
	BeforeImageB64 string  `json:"before_image_b64"`
	AfterImageB64  string  `json:"after_image_b64"`
}

type ReportData struct {
	WorkOrderID  uint               `json:"work_order_id"`
	OwnerName    string             `json:"owner_name"`
	OwnerEmail   string             `json:"owner_email"`
	PhoneNumber  string             `json:"phone_number"`
	Address      string             `json:"address"`
	CarName      string             `json:"car_name"`
	CarImageB64  string             `json:"car_image_b64"`
	Registration string             `json:"registration"`
	HeadMechanic string             `json:"head_mechanic"`
	Status       WorkOrderStatus    `json:"status"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Repairs      []ReportRepairItem `json:"repairs"`
	TotalPrice   float64            `json:"total_price"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

type SendReportRequest struct {
	Recipient *string `json:"recipient" validate:"omitempty,email"`
}

// ===== ERROR RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
