package models

import (
	"database/sql"
	"time"
)

// Profile represents a BoxBoxd user profile
type Profile struct {
	ID           string         `gorm:"type:varchar(64);primaryKey;column:id"`
	Username     string         `gorm:"type:varchar(32);not null;uniqueIndex:boxd_profiles_username_ux;column:username"`
	DisplayName  sql.NullString `gorm:"type:varchar(64);column:display_name"`
	Bio          sql.NullString `gorm:"type:varchar(280);column:bio"`
	FavoriteTeam sql.NullString `gorm:"type:varchar(64);column:favorite_team"`
	PhotoURL     string         `gorm:"type:varchar(1024);not null;default:'';column:photo_url"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "boxd_profiles"
}

// Block records that BlockerID no longer wants to see BlockedID, and vice versa.
type Block struct {
	BlockerID string    `gorm:"type:varchar(64);primaryKey;column:blocker_id"`
	BlockedID string    `gorm:"type:varchar(64);primaryKey;index:boxd_blocks_blocked_idx;column:blocked_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Block
func (Block) TableName() string {
	return "boxd_blocks"
}
