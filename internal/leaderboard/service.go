package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/internal/cache"
	"github.com/boxboxd/boxboxd/internal/models"
	"github.com/boxboxd/boxboxd/pkg/logging"
)

// AttemptStore lists and records the attempts made on a grid.
type AttemptStore interface {
	ListAttempts(ctx context.Context, gridID string) ([]*models.GridAttempt, error)
	CreateAttempt(ctx context.Context, attempt *models.GridAttempt) error
}

// ErrInvalidAttempt is returned by Submit for attempts that can never rank.
var ErrInvalidAttempt = errors.New("invalid grid attempt")

// Service serves grid leaderboards, cached in Redis when available.
type Service struct {
	attempts AttemptStore
	cache    *cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewService creates a leaderboard service. redisCache may be nil.
func NewService(attempts AttemptStore, redisCache *cache.Cache, ttl time.Duration) *Service {
	return &Service{
		attempts: attempts,
		cache:    redisCache,
		ttl:      ttl,
		logger:   logging.WithComponent("leaderboard"),
	}
}

// Leaderboard returns the ranked best attempts for gridID.
func (s *Service) Leaderboard(ctx context.Context, gridID string, limit int) ([]Entry, error) {
	if gridID == "" {
		return nil, fmt.Errorf("grid id is required")
	}
	limit = ClampLimit(limit)
	key := cache.HashKey("grid_leaderboard", gridID, strconv.Itoa(limit))

	var cached []Entry
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	rows, err := s.attempts.ListAttempts(ctx, gridID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid attempts: %w", err)
	}

	attempts := make([]Attempt, len(rows))
	for i, r := range rows {
		attempts[i] = Attempt{
			UserID:      r.UserID,
			Username:    r.Username,
			Score:       r.Score,
			TimeTaken:   r.TimeTaken,
			CompletedAt: r.CompletedAt,
		}
	}
	entries := Build(attempts, limit)

	if err := s.cache.SetJSON(ctx, key, entries, s.ttl); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		// Log error but don't fail the request
		s.logger.Warn("Failed to cache leaderboard", zap.String("grid_id", gridID), zap.Error(err))
	}
	return entries, nil
}

// Submit records a completed attempt. Cached boards are not invalidated, so
// a new attempt shows up once the cached copy expires.
func (s *Service) Submit(ctx context.Context, gridID string, attempt Attempt) error {
	if gridID == "" || attempt.UserID == "" || attempt.Score < 0 || attempt.TimeTaken < 0 {
		return ErrInvalidAttempt
	}
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = time.Now().UTC()
	}

	row := &models.GridAttempt{
		GridID:      gridID,
		UserID:      attempt.UserID,
		Username:    attempt.Username,
		Score:       attempt.Score,
		TimeTaken:   attempt.TimeTaken,
		CompletedAt: attempt.CompletedAt,
	}
	if err := s.attempts.CreateAttempt(ctx, row); err != nil {
		return fmt.Errorf("failed to record grid attempt: %w", err)
	}

	s.logger.Debug("Grid attempt recorded",
		zap.String("grid_id", gridID),
		zap.String("user_id", attempt.UserID),
		zap.Int("score", attempt.Score),
	)
	return nil
}
