package feed

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxboxd/boxboxd/internal/models"
)

type fakePosts struct {
	posts     []Post
	err       error
	lastLimit int
}

func (f *fakePosts) ListFeedCandidates(ctx context.Context, limit int) ([]Post, error) {
	f.lastLimit = limit
	return f.posts, f.err
}

type fakeBlocks struct {
	blocked map[string][]string
	err     error
}

func (f *fakeBlocks) ListBlockedIDs(ctx context.Context, userID string) ([]string, error) {
	return f.blocked[userID], f.err
}

func TestService_LoadFeed(t *testing.T) {
	posts := &fakePosts{posts: postsBy("u1", "u2", "u3", "viewer", "blocked", "blocker")}
	blocks := &fakeBlocks{blocked: map[string][]string{"viewer": {"blocked", "blocker"}}}
	profiles := &fakeProfiles{
		names: map[string]string{"u1": "Kimi", "u2": "Fernando"},
		fail:  map[string]bool{"u3": true},
	}

	svc := NewService(posts, blocks, NewNameResolver(profiles), 0)
	res, err := svc.LoadFeed(context.Background(), "viewer")

	require.NoError(t, err)
	assert.Equal(t, CandidatePoolSize, posts.lastLimit)
	assert.ElementsMatch(t, []string{"u1-post", "u2-post", "u3-post"}, ids(res.Posts))
	assert.Equal(t, map[string]string{"u1": "Kimi", "u2": "Fernando"}, res.DisplayNames)
}

func TestService_LoadFeedAnonymous(t *testing.T) {
	posts := &fakePosts{posts: postsBy("u1", "u2")}
	blocks := &fakeBlocks{err: errors.New("must not be called")}

	svc := NewService(posts, blocks, nil, 250)
	res, err := svc.LoadFeed(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 250, posts.lastLimit)
	assert.Len(t, res.Posts, 2)
	assert.Empty(t, res.DisplayNames)
}

func TestService_LoadFeedErrors(t *testing.T) {
	t.Run("post store", func(t *testing.T) {
		svc := NewService(&fakePosts{err: errors.New("db down")}, &fakeBlocks{}, nil, 0)
		_, err := svc.LoadFeed(context.Background(), "viewer")
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("block store", func(t *testing.T) {
		svc := NewService(&fakePosts{posts: postsBy("u1")}, &fakeBlocks{err: errors.New("timeout")}, nil, 0)
		_, err := svc.LoadFeed(context.Background(), "viewer")
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestPostFromReview(t *testing.T) {
	created := time.Date(2026, 9, 7, 15, 0, 0, 0, time.UTC)
	full := &models.Review{
		ID:        "r1",
		UserID:    "u1",
		Username:  "tifosi",
		RaceName:  "Italian Grand Prix",
		Rating:    sql.NullInt16{Int16: 5, Valid: true},
		LikeCount: sql.NullInt64{Int64: 12, Valid: true},
		Body:      "what a finish",
		CreatedAt: sql.NullTime{Time: created, Valid: true},
	}

	assert.Equal(t, Post{
		ID:        "r1",
		AuthorID:  "u1",
		Username:  "tifosi",
		RaceName:  "Italian Grand Prix",
		LikeCount: 12,
		Rating:    5,
		Body:      "what a finish",
		CreatedAt: created,
	}, PostFromReview(full))

	sparse := PostFromReview(&models.Review{ID: "r2", UserID: "u2", Body: "x"})
	assert.Zero(t, sparse.Rating)
	assert.Zero(t, sparse.LikeCount)
	assert.True(t, sparse.CreatedAt.IsZero())
}
