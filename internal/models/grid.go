package models

import (
	"time"
)

// GridAttempt is one play of the daily Grill the Grid quiz
type GridAttempt struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	GridID      string    `gorm:"type:varchar(32);not null;index:boxd_grid_attempts_grid_idx;column:grid_id"`
	UserID      string    `gorm:"type:varchar(64);not null;column:user_id"`
	Username    string    `gorm:"type:varchar(32);not null;default:'';column:username"`
	Score       int       `gorm:"not null;default:0;column:score"`
	TimeTaken   int       `gorm:"not null;default:0;column:time_taken"` // seconds
	CompletedAt time.Time `gorm:"not null;column:completed_at"`
}

// TableName specifies the table name for GridAttempt
func (GridAttempt) TableName() string {
	return "boxd_grid_attempts"
}
