package models

import (
	"database/sql"
	"time"
)

// Review visibility values
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// Review is a race log entry: a rating of a Grand Prix with optional review text.
// The community feed is built from reviews.
type Review struct {
	ID         string        `gorm:"type:varchar(64);primaryKey;column:id"`
	UserID     string        `gorm:"type:varchar(64);not null;index:boxd_reviews_user_idx;column:user_id"`
	Username   string        `gorm:"type:varchar(32);not null;default:'';column:username"`
	RaceName   string        `gorm:"type:varchar(128);not null;default:'';column:race_name"`
	Season     int           `gorm:"not null;default:0;column:season"`
	Rating     sql.NullInt16 `gorm:"type:smallint;column:rating"`
	Body       string        `gorm:"type:text;not null;default:'';column:body"`
	LikeCount  sql.NullInt64 `gorm:"column:like_count"`
	Visibility string        `gorm:"type:varchar(16);not null;default:'public';column:visibility"`
	CreatedAt  sql.NullTime  `gorm:"index:boxd_reviews_created_idx,sort:desc;column:created_at"`
}

// TableName specifies the table name for Review
func (Review) TableName() string {
	return "boxd_reviews"
}

// ReviewLike records a user liking a review
type ReviewLike struct {
	ReviewID  string    `gorm:"type:varchar(64);primaryKey;column:review_id"`
	UserID    string    `gorm:"type:varchar(64);primaryKey;column:user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for ReviewLike
func (ReviewLike) TableName() string {
	return "boxd_review_likes"
}
