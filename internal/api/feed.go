package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boxboxd/boxboxd/internal/feed"
)

// FeedLoader loads a viewer's personal feed
type FeedLoader interface {
	LoadFeed(ctx context.Context, viewerID string) (*feed.Result, error)
}

// FeedAPI provides the community feed methods
type FeedAPI struct {
	feeds FeedLoader
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(feeds FeedLoader) *FeedAPI {
	return &FeedAPI{feeds: feeds}
}

type feedPost struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Username  string    `json:"username"`
	RaceName  string    `json:"race_name,omitempty"`
	Rating    int       `json:"rating"`
	LikeCount int       `json:"like_count"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type feedResponse struct {
	Posts        []feedPost        `json:"posts"`
	DisplayNames map[string]string `json:"display_names"`
}

// GetPersonalFeed handles feed.get_personal_feed
func (f *FeedAPI) GetPersonalFeed(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Viewer string `json:"viewer"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, InvalidParams("invalid parameters format")
		}
	}

	res, err := f.feeds.LoadFeed(ctx.Request.Context(), p.Viewer)
	if err != nil {
		return nil, err
	}

	posts := make([]feedPost, len(res.Posts))
	for i, post := range res.Posts {
		posts[i] = feedPost{
			ID:        post.ID,
			AuthorID:  post.AuthorID,
			Username:  post.Username,
			RaceName:  post.RaceName,
			Rating:    post.Rating,
			LikeCount: post.LikeCount,
			Body:      post.Body,
			CreatedAt: post.CreatedAt,
		}
	}
	return feedResponse{Posts: posts, DisplayNames: res.DisplayNames}, nil
}
