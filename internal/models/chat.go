package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatRoom struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:100"`
	WorkOrderID uint   `json:"work_order_id" gorm:"uniqueIndex;not null"`
	CreatedBy   uint   `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	WorkOrder    *WorkOrder `json:"work_order,omitempty" gorm:"foreignKey:WorkOrderID"`
	Creator      User       `json:"creator" gorm:"foreignKey:CreatedBy"`
	Participants []User     `json:"participants" gorm:"many2many:chat_room_participants"`

	// Computed fields (not stored)
	LastMessage *Message `json:"last_message,omitempty" gorm:"-"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// HasParticipant reports whether the given user belongs to this room.
// Relies on Participants being preloaded.
func (r *ChatRoom) HasParticipant(userID uint) bool {
	for i := range r.Participants {
		if r.Participants[i].ID == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	ChatRoomID uint    `json:"chat_room_id" gorm:"not null;index"`
	SenderID   uint    `json:"sender_id" gorm:"not null;index"`
	Text       *string `json:"text" gorm:"type:text" validate:"omitempty,max=5000"`

	// Media is stored as object keys; signed URLs are attached on read.
	ImageKeys datatypes.JSONSlice[string] `json:"image_keys" gorm:"type:jsonb"`
	VideoKeys datatypes.JSONSlice[string] `json:"video_keys" gorm:"type:jsonb"`
	FileKeys  datatypes.JSONSlice[string] `json:"file_keys" gorm:"type:jsonb"`
	FileNames datatypes.JSONSlice[string] `json:"file_names" gorm:"type:jsonb"`
	AudioKey  *string                     `json:"audio_key" gorm:"size:500"`

	IsDeleted bool `json:"is_deleted" gorm:"not null;default:false"`
	IsEdited  bool `json:"is_edited" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	ChatRoom *ChatRoom `json:"chat_room,omitempty" gorm:"foreignKey:ChatRoomID"`
	Sender   User      `json:"sender" gorm:"foreignKey:SenderID"`
}

func (Message) TableName() string {
	return "messages"
}

// HasMedia reports whether the message carries any stored media keys.
func (m *Message) HasMedia() bool {
	return len(m.ImageKeys) > 0 || len(m.VideoKeys) > 0 || len(m.FileKeys) > 0 ||
		(m.AudioKey != nil && *m.AudioKey != "")
}
