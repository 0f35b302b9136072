package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/boxboxd/boxboxd/internal/models"
)

// ErrNotFound is returned when a single record lookup matches nothing
var ErrNotFound = errors.New("record not found")

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReviewRepository provides review-related database operations
type ReviewRepository struct {
	*Repository
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(repo *Repository) *ReviewRepository {
	return &ReviewRepository{Repository: repo}
}

// ListFeedCandidates returns the newest public reviews that have text
func (r *ReviewRepository) ListFeedCandidates(ctx context.Context, limit int) ([]*models.Review, error) {
	var reviews []*models.Review
	if err := r.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityPublic).
		Where("TRIM(body) <> ''").
		Order("created_at DESC NULLS LAST").
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ProfileRepository provides profile-related database operations
type ProfileRepository struct {
	*Repository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(repo *Repository) *ProfileRepository {
	return &ProfileRepository{Repository: repo}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// BlockRepository provides block-related database operations
type BlockRepository struct {
	*Repository
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(repo *Repository) *BlockRepository {
	return &BlockRepository{Repository: repo}
}

// ListBlockedIDs returns the users userID blocked plus the users who blocked userID
func (r *BlockRepository) ListBlockedIDs(ctx context.Context, userID string) ([]string, error) {
	var blocks []models.Block
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Find(&blocks).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockerID == userID {
			ids = append(ids, b.BlockedID)
		} else {
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}

// ChatRepository provides chat-related database operations
type ChatRepository struct {
	*Repository
}

// NewChatRepository creates a new chat repository
func NewChatRepository(repo *Repository) *ChatRepository {
	return &ChatRepository{Repository: repo}
}

// Create appends a message
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListRecent returns the newest limit messages of a room, newest first
func (r *ChatRepository) ListRecent(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error) {
	var msgs []*models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// LastMessageAt returns when userID last wrote in roomID, or the zero time
func (r *ChatRepository) LastMessageAt(ctx context.Context, roomID, userID string) (time.Time, error) {
	var msg models.ChatMessage
	err := r.db.WithContext(ctx).
		Select("created_at").
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return msg.CreatedAt, nil
}

// GridRepository provides Grill the Grid database operations
type GridRepository struct {
	*Repository
}

// NewGridRepository creates a new grid repository
func NewGridRepository(repo *Repository) *GridRepository {
	return &GridRepository{Repository: repo}
}

// ListAttempts returns every attempt made on gridID
func (r *GridRepository) ListAttempts(ctx context.Context, gridID string) ([]*models.GridAttempt, error) {
	var attempts []*models.GridAttempt
	if err := r.db.WithContext(ctx).
		Where("grid_id = ?", gridID).
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// CreateAttempt records an attempt
func (r *GridRepository) CreateAttempt(ctx context.Context, attempt *models.GridAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}
