package dto

import (
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
)

// --- Request DTOs ---

// SendMessageRequest represents a text message. Images are sent as multipart
// form data with an "image" file and an optional "text" caption.
type SendMessageRequest struct {
	Text string `json:"text" form:"text" binding:"max=4000"`
}

// GetChatMessagesRequest represents filter parameters for retrieving chat messages
type GetChatMessagesRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// --- Response DTOs ---

// ChatSummaryResponse is one row of the chat list
type ChatSummaryResponse struct {
	ChatID      string              `json:"chatId"`
	Other       *UserResponse       `json:"other,omitempty"`
	LastMessage *models.ChatMessage `json:"lastMessage,omitempty"`
	Preview     string              `json:"preview"`
	UnreadCount int                 `json:"unreadCount"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ToChatSummaryResponse maps a chat list row
func ToChatSummaryResponse(s *models.ChatSummary) ChatSummaryResponse {
	resp := ChatSummaryResponse{
		ChatID:      s.Chat.ID,
		Other:       ToUserResponse(s.Other, false),
		LastMessage: s.LastMessage,
		UnreadCount: s.UnreadCount,
		CreatedAt:   s.Chat.CreatedAt,
	}
	if s.LastMessage != nil {
		if s.LastMessage.Text != "" {
			resp.Preview = models.Preview(s.LastMessage.Text)
		} else if s.LastMessage.ImageURL != "" {
			resp.Preview = "[image]"
		}
	}
	return resp
}

// ChatMessageListResponse is the rendered message stream of a channel
type ChatMessageListResponse struct {
	ChatID   string                 `json:"chatId"`
	Messages []*models.ChatMessage  `json:"messages"`
	Timeline []models.TimelineEntry `json:"timeline"`
	Receipt  *models.ReadReceipt    `json:"receipt,omitempty"`
}

// MarkReadResponse reports which messages changed
type MarkReadResponse struct {
	Updated []string `json:"updated"`
}
