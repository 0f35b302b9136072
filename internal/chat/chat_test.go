package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxboxd/boxboxd/internal/models"
)

// memStore is an in-memory Store and LastMessageFinder.
type memStore struct {
	mu        sync.Mutex
	msgs      []*models.ChatMessage
	createErr error
}

func (m *memStore) Create(ctx context.Context, msg *models.ChatMessage) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memStore) ListRecent(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ChatMessage
	for i := len(m.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.msgs[i].RoomID == roomID {
			out = append(out, m.msgs[i])
		}
	}
	return out, nil
}

func (m *memStore) LastMessageAt(ctx context.Context, roomID, userID string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last time.Time
	for _, msg := range m.msgs {
		if msg.RoomID == roomID && msg.UserID == userID && msg.CreatedAt.After(last) {
			last = msg.CreatedAt
		}
	}
	return last, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(store *memStore, c *clock) *Service {
	limiter := NewQueryLimiter(store, time.Minute)
	limiter.now = c.now
	svc := NewService(store, limiter, 20, 3)
	svc.now = c.now
	return svc
}

func TestSend_RateLimitPerUserPerRoom(t *testing.T) {
	store := &memStore{}
	c := &clock{t: time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)}
	svc := newTestService(store, c)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "monza-2026", "u1", "tifosi", "  Forza!  ")
	require.NoError(t, err)
	assert.Equal(t, "Forza!", msg.Text)
	assert.NotEmpty(t, msg.ID)

	c.t = c.t.Add(20 * time.Second)
	_, err = svc.Send(ctx, "monza-2026", "u1", "tifosi", "again")
	require.ErrorIs(t, err, ErrRateLimited)
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 40*time.Second, rl.RetryAfter)

	_, err = svc.Send(ctx, "monza-2026", "u2", "papaya", "other user is fine")
	assert.NoError(t, err)

	_, err = svc.Send(ctx, "spa-2026", "u1", "tifosi", "other room is fine")
	assert.NoError(t, err)

	c.t = c.t.Add(41 * time.Second)
	_, err = svc.Send(ctx, "monza-2026", "u1", "tifosi", "window passed")
	assert.NoError(t, err)
}

func TestSend_Validation(t *testing.T) {
	svc := newTestService(&memStore{}, &clock{t: time.Now()})
	ctx := context.Background()

	tests := []struct {
		name string
		room string
		user string
		text string
		want error
	}{
		{"blank", "r", "u", "   ", ErrEmptyMessage},
		{"too long", "r", "u", strings.Repeat("x", 21), ErrMessageTooLong},
		{"no room", "", "u", "hi", ErrInvalidSender},
		{"no user", "r", "", "hi", ErrInvalidSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.room, tt.user, "name", tt.text)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.Send(ctx, "r", "u", "name", strings.Repeat("é", 20))
	assert.NoError(t, err, "length counts characters, not bytes")
}

type recordingLimiter struct {
	released bool
}

func (l *recordingLimiter) Allow(ctx context.Context, roomID, userID string) (time.Duration, error) {
	return 0, nil
}

func (l *recordingLimiter) Release(ctx context.Context, roomID, userID string) {
	l.released = true
}

func TestSend_ReleasesSlotOnStoreFailure(t *testing.T) {
	limiter := &recordingLimiter{}
	svc := NewService(&memStore{createErr: errors.New("disk full")}, limiter, 0, 0)

	_, err := svc.Send(context.Background(), "r", "u", "name", "hello")

	assert.ErrorContains(t, err, "disk full")
	assert.True(t, limiter.released)
}

func TestHistory(t *testing.T) {
	store := &memStore{}
	c := &clock{t: time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)}
	svc := newTestService(store, c)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3", "u4"} {
		_, err := svc.Send(ctx, "room", user, user, "lap from "+user)
		require.NoError(t, err)
		c.t = c.t.Add(time.Second)
	}

	msgs, err := svc.History(ctx, "room", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "u2", msgs[0].UserID)
	assert.Equal(t, "u4", msgs[2].UserID)

	msgs, err = svc.History(ctx, "room", 2)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	_, err = svc.History(ctx, "", 2)
	assert.ErrorIs(t, err, ErrInvalidSender)
}
