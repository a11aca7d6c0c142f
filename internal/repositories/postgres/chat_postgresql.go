package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/macworldgithub/westside-backend/internal/cache"
	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ChatRoomPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewChatRoomPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ChatRoomRepository {
	return &ChatRoomPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ChatRoomPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// Create creates a chat room with its initial participants
func (c *ChatRoomPostgreSQL) Create(ctx context.Context, tx *gorm.DB, room *models.ChatRoom) error {
	if err := c.getDB(tx).WithContext(ctx).Create(room).Error; err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}

	cache.SafeDelete(ctx, c.cacheManager.Room, fmt.Sprintf("order:%d", room.WorkOrderID))

	return nil
}

// GetByID retrieves a chat room with its participants
func (c *ChatRoomPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := c.getDB(tx).WithContext(ctx).
		Preload("Participants").
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByWorkOrder retrieves the room bound to a work order
func (c *ChatRoomPostgreSQL) GetByWorkOrder(ctx context.Context, tx *gorm.DB, workOrderID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := c.getDB(tx).WithContext(ctx).
		Preload("Participants").
		Where("work_order_id = ?", workOrderID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Delete soft deletes a chat room
func (c *ChatRoomPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var room models.ChatRoom
	db := c.getDB(tx).WithContext(ctx)
	if err := db.Select("id, work_order_id").First(&room, id).Error; err != nil {
		return fmt.Errorf("failed to get chat room before delete: %w", err)
	}

	if err := db.Delete(&models.ChatRoom{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete chat room: %w", err)
	}

	cache.SafeDelete(ctx, c.cacheManager.Room, fmt.Sprintf("order:%d", room.WorkOrderID))

	return nil
}

// ListForUser retrieves rooms the user participates in
func (c *ChatRoomPostgreSQL) ListForUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ChatRoom, error) {
	var rooms []*models.ChatRoom
	err := c.getDB(tx).WithContext(ctx).
		Where("id IN (?)",
			c.getDB(tx).Table("chat_room_participants").Select("chat_room_id").Where("user_id = ?", userID)).
		Preload("Participants").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms for user: %w", err)
	}
	return rooms, nil
}

// ListAll retrieves every chat room; admin view
func (c *ChatRoomPostgreSQL) ListAll(ctx context.Context, tx *gorm.DB) ([]*models.ChatRoom, error) {
	var rooms []*models.ChatRoom
	err := c.getDB(tx).WithContext(ctx).
		Preload("Participants").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	return rooms, nil
}

// AddParticipant attaches a user to the room
func (c *ChatRoomPostgreSQL) AddParticipant(ctx context.Context, tx *gorm.DB, roomID uint, user *models.User) error {
	room := models.ChatRoom{ID: roomID}
	if err := c.getDB(tx).WithContext(ctx).Model(&room).Association("Participants").Append(user); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// RemoveParticipant detaches a user from the room
func (c *ChatRoomPostgreSQL) RemoveParticipant(ctx context.Context, tx *gorm.DB, roomID, userID uint) error {
	room := models.ChatRoom{ID: roomID}
	user := models.User{ID: userID}
	if err := c.getDB(tx).WithContext(ctx).Model(&room).Association("Participants").Delete(&user); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

// IsParticipant checks the participant association table directly
func (c *ChatRoomPostgreSQL) IsParticipant(ctx context.Context, tx *gorm.DB, roomID, userID uint) (bool, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).
		Table("chat_room_participants").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByWorkOrder checks whether a room already exists for the order
func (c *ChatRoomPostgreSQL) ExistsByWorkOrder(ctx context.Context, tx *gorm.DB, workOrderID uint) (bool, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("work_order_id = ?", workOrderID).
		Count(&count).Error
	return count > 0, err
}

type MessagePostgreSQL struct {
	db *gorm.DB
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &MessagePostgreSQL{db: db}
}

func (m *MessagePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

// Create stores a new message
func (m *MessagePostgreSQL) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	if err := m.getDB(tx).WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message with its sender
func (m *MessagePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	var message models.Message
	err := m.getDB(tx).WithContext(ctx).
		Preload("Sender").
		First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// Update saves a full message record
func (m *MessagePostgreSQL) Update(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	if err := m.getDB(tx).WithContext(ctx).Save(message).Error; err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

// MarkDeleted flags a message as deleted without removing the row
func (m *MessagePostgreSQL) MarkDeleted(ctx context.Context, tx *gorm.DB, id uint) error {
	err := m.getDB(tx).WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark message deleted: %w", err)
	}
	return nil
}

// UpdateText replaces the message text and marks it edited
func (m *MessagePostgreSQL) UpdateText(ctx context.Context, tx *gorm.DB, id uint, text string) error {
	err := m.getDB(tx).WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text":      text,
			"is_edited": true,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update message text: %w", err)
	}
	return nil
}

// GetByRoomInRange retrieves room messages created within [from, to], oldest first
func (m *MessagePostgreSQL) GetByRoomInRange(ctx context.Context, tx *gorm.DB, roomID uint, from, to time.Time) ([]*models.Message, error) {
	var messages []*models.Message
	err := m.getDB(tx).WithContext(ctx).
		Where("chat_room_id = ? AND created_at >= ? AND created_at <= ?", roomID, from, to).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get messages in range: %w", err)
	}
	return messages, nil
}

// GetLastByRoom retrieves the newest message in the room
func (m *MessagePostgreSQL) GetLastByRoom(ctx context.Context, tx *gorm.DB, roomID uint) (*models.Message, error) {
	var message models.Message
	err := m.getDB(tx).WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Preload("Sender").
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// GetOldestByRoom retrieves the first message ever sent in the room
func (m *MessagePostgreSQL) GetOldestByRoom(ctx context.Context, tx *gorm.DB, roomID uint) (*models.Message, error) {
	var message models.Message
	err := m.getDB(tx).WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order("created_at ASC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// CountByRoom counts the messages in a room
func (m *MessagePostgreSQL) CountByRoom(ctx context.Context, tx *gorm.DB, roomID uint) (int64, error) {
	var count int64
	err := m.getDB(tx).WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_room_id = ?", roomID).
		Count(&count).Error
	return count, err
}
