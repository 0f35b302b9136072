package models

import (
	"time"
)

// ChatMessage is one message in a live race chat room
type ChatMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey;column:id"`
	RoomID    string    `gorm:"type:varchar(64);not null;index:boxd_chat_room_created_idx,priority:1;column:room_id"`
	UserID    string    `gorm:"type:varchar(64);not null;column:user_id"`
	Username  string    `gorm:"type:varchar(32);not null;default:'';column:username"`
	Text      string    `gorm:"type:text;not null;column:text"`
	CreatedAt time.Time `gorm:"not null;index:boxd_chat_room_created_idx,priority:2;column:created_at"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "boxd_chat_messages"
}
