package models

import (
	"sort"
	"strings"
	"time"
)

// ChannelSeparator joins the two participant identifiers of a channel id.
const ChannelSeparator = "_"

// ChannelID derives the deterministic channel identifier of a participant
// pair. ChannelID(a, b) == ChannelID(b, a).
func ChannelID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ChannelSeparator)
}

// Chat is a persistent two party channel.
type Chat struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewChat builds the channel for a pair with participants in sorted order.
func NewChat(a, b string) *Chat {
	pair := []string{a, b}
	sort.Strings(pair)
	return &Chat{
		ID:           strings.Join(pair, ChannelSeparator),
		Participants: [2]string{pair[0], pair[1]},
	}
}

// HasParticipant reports whether userID belongs to the channel.
func (c *Chat) HasParticipant(userID string) bool {
	return userID != "" && (c.Participants[0] == userID || c.Participants[1] == userID)
}

// Other returns the participant that is not userID.
func (c *Chat) Other(userID string) string {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// ChatMessage is one entry of a channel's append-only log.
type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	ReadBy    []string  `json:"readBy"`
	CreatedAt time.Time `json:"createdAt"`
	Seq       int64     `json:"seq"`
}

// HasContent reports whether the message carries text or an image.
func (m *ChatMessage) HasContent() bool {
	return strings.TrimSpace(m.Text) != "" || m.ImageURL != ""
}

// ReadByUser reports whether userID is in the read set.
func (m *ChatMessage) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Normalize fills defaults once after retrieval. The sender always counts
// as a reader.
func (m *ChatMessage) Normalize() *ChatMessage {
	if m == nil {
		return nil
	}
	if m.ReadBy == nil {
		m.ReadBy = []string{}
	}
	if m.SenderID != "" && !m.ReadByUser(m.SenderID) {
		m.ReadBy = append([]string{m.SenderID}, m.ReadBy...)
	}
	return m
}

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	Chat        *Chat        `json:"chat"`
	Other       *User        `json:"other,omitempty"`
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
}
