package repositories

import (
	"context"
	"time"

	"github.com/macworldgithub/westside-backend/internal/models"
	"gorm.io/gorm"
)

// ChatRoomRepository interface for chat room operations
type ChatRoomRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, room *models.ChatRoom) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ChatRoom, error)
	GetByWorkOrder(ctx context.Context, tx *gorm.DB, workOrderID uint) (*models.ChatRoom, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	ListForUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ChatRoom, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*models.ChatRoom, error)

	// Participant management
	AddParticipant(ctx context.Context, tx *gorm.DB, roomID uint, user *models.User) error
	RemoveParticipant(ctx context.Context, tx *gorm.DB, roomID, userID uint) error
	IsParticipant(ctx context.Context, tx *gorm.DB, roomID, userID uint) (bool, error)

	// Validation and checks
	ExistsByWorkOrder(ctx context.Context, tx *gorm.DB, workOrderID uint) (bool, error)
}

// MessageRepository interface for chat message operations
type MessageRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, message *models.Message) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error)
	Update(ctx context.Context, tx *gorm.DB, message *models.Message) error

	// Soft mutations
	MarkDeleted(ctx context.Context, tx *gorm.DB, id uint) error
	UpdateText(ctx context.Context, tx *gorm.DB, id uint, text string) error

	// Query operations
	GetByRoomInRange(ctx context.Context, tx *gorm.DB, roomID uint, from, to time.Time) ([]*models.Message, error)
	GetLastByRoom(ctx context.Context, tx *gorm.DB, roomID uint) (*models.Message, error)
	GetOldestByRoom(ctx context.Context, tx *gorm.DB, roomID uint) (*models.Message, error)
	CountByRoom(ctx context.Context, tx *gorm.DB, roomID uint) (int64, error)
}
