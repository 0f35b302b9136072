package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boxboxd/boxboxd/internal/leaderboard"
)

// LeaderboardService reads Grill the Grid leaderboards and records attempts
type LeaderboardService interface {
	Leaderboard(ctx context.Context, gridID string, limit int) ([]leaderboard.Entry, error)
	Submit(ctx context.Context, gridID string, attempt leaderboard.Attempt) error
}

// GridAPI provides Grill the Grid methods
type GridAPI struct {
	boards LeaderboardService
}

// NewGridAPI creates a new grid API
func NewGridAPI(boards LeaderboardService) *GridAPI {
	return &GridAPI{boards: boards}
}

// GetLeaderboard handles grid.get_leaderboard
func (g *GridAPI) GetLeaderboard(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		GridID string `json:"grid_id"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, InvalidParams("invalid parameters format")
	}
	if p.GridID == "" {
		return nil, InvalidParams("missing required parameter: grid_id")
	}

	return g.boards.Leaderboard(ctx.Request.Context(), p.GridID, p.Limit)
}

// SubmitAttempt handles grid.submit_attempt
func (g *GridAPI) SubmitAttempt(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		GridID      string     `json:"grid_id"`
		UserID      string     `json:"user_id"`
		Username    string     `json:"username"`
		Score       int        `json:"score"`
		TimeTaken   int        `json:"time_taken"`
		CompletedAt *time.Time `json:"completed_at"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, InvalidParams("invalid parameters format")
	}

	attempt := leaderboard.Attempt{
		UserID:    p.UserID,
		Username:  p.Username,
		Score:     p.Score,
		TimeTaken: p.TimeTaken,
	}
	if p.CompletedAt != nil {
		attempt.CompletedAt = *p.CompletedAt
	}

	if err := g.boards.Submit(ctx.Request.Context(), p.GridID, attempt); err != nil {
		if errors.Is(err, leaderboard.ErrInvalidAttempt) {
			return nil, InvalidParams("grid_id and user_id are required, score and time_taken must not be negative")
		}
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}
