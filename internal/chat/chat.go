// Package chat implements the live race chat: short messages appended to a
// per-race room, at most one per user per room per minute.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/internal/models"
	"github.com/boxboxd/boxboxd/pkg/logging"
)

const (
	// DefaultRateWindow is the minimum gap between two messages of one user in one room.
	DefaultRateWindow = time.Minute
	// DefaultMaxLength is the maximum message length in characters.
	DefaultMaxLength = 500
	// DefaultHistoryLimit is the number of messages returned by History.
	DefaultHistoryLimit = 50
)

var (
	// ErrEmptyMessage is returned for blank messages
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong is returned when a message exceeds the maximum length
	ErrMessageTooLong = errors.New("message is too long")
	// ErrRateLimited is returned when the user already wrote in the room within the window
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidSender is returned when room or user is missing
	ErrInvalidSender = errors.New("room and user are required")
)

// RateLimitError tells how long the sender must wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry in %s", e.RetryAfter.Round(time.Second))
}

// Is makes errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// Store persists chat messages.
type Store interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListRecent(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error)
}

// Service sends and lists chat messages.
type Service struct {
	store        Store
	limiter      Limiter
	maxLength    int
	historyLimit int
	now          func() time.Time
	logger       *zap.Logger
}

// NewService creates a chat service. Non-positive sizes use the defaults.
func NewService(store Store, limiter Limiter, maxLength, historyLimit int) *Service {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		store:        store,
		limiter:      limiter,
		maxLength:    maxLength,
		historyLimit: historyLimit,
		now:          time.Now,
		logger:       logging.WithComponent("chat"),
	}
}

// Send appends a message to roomID on behalf of userID.
func (s *Service) Send(ctx context.Context, roomID, userID, username, text string) (*models.ChatMessage, error) {
	if roomID == "" || userID == "" {
		return nil, ErrInvalidSender
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return nil, ErrMessageTooLong
	}

	wait, err := s.limiter.Allow(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		return nil, &RateLimitError{RetryAfter: wait}
	}

	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, msg); err != nil {
		s.limiter.Release(ctx, roomID, userID)
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}

	s.logger.Debug("Chat message sent", zap.String("room", roomID), zap.String("user_id", userID))
	return msg, nil
}

// History returns the newest messages of roomID in chronological order.
func (s *Service) History(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error) {
	if roomID == "" {
		return nil, ErrInvalidSender
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	msgs, err := s.store.ListRecent(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
