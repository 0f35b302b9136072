package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/gin-gonic/gin"

	"github.com/boxboxd/boxboxd/internal/chat"
	"github.com/boxboxd/boxboxd/internal/models"
)

// ChatService sends and lists live race chat messages
type ChatService interface {
	Send(ctx context.Context, roomID, userID, username, text string) (*models.ChatMessage, error)
	History(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error)
}

// ChatAPI provides live race chat methods
type ChatAPI struct {
	chat ChatService
}

// NewChatAPI creates a new chat API
func NewChatAPI(svc ChatService) *ChatAPI {
	return &ChatAPI{chat: svc}
}

type chatMessage struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func toChatMessage(m *models.ChatMessage) chatMessage {
	return chatMessage{
		ID:        m.ID,
		Room:      m.RoomID,
		UserID:    m.UserID,
		Username:  m.Username,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// SendMessage handles chat.send_message
func (a *ChatAPI) SendMessage(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Room     string `json:"room"`
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, InvalidParams("invalid parameters format")
	}

	msg, err := a.chat.Send(ctx.Request.Context(), p.Room, p.UserID, p.Username, p.Text)
	if err != nil {
		return nil, chatError(err)
	}
	return toChatMessage(msg), nil
}

// GetHistory handles chat.get_history
func (a *ChatAPI) GetHistory(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Room  string `json:"room"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, InvalidParams("invalid parameters format")
	}

	msgs, err := a.chat.History(ctx.Request.Context(), p.Room, p.Limit)
	if err != nil {
		return nil, chatError(err)
	}
	result := make([]chatMessage, len(msgs))
	for i, m := range msgs {
		result[i] = toChatMessage(m)
	}
	return result, nil
}

// chatError maps chat validation errors to JSON-RPC errors
func chatError(err error) error {
	var rl *chat.RateLimitError
	switch {
	case errors.As(err, &rl):
		e := NewError(ErrRateLimited, "You can send one message per minute")
		e.Data = map[string]interface{}{
			"retry_after": int(math.Ceil(rl.RetryAfter.Seconds())),
		}
		return e
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrMessageTooLong),
		errors.Is(err, chat.ErrInvalidSender):
		return InvalidParams("%s", err.Error())
	default:
		return err
	}
}
