package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Realtime event types published on a channel topic
const (
	EventMessageCreated      = "message.created"
	EventMessageRead         = "message.read"
	EventAssignmentCreated   = "assignment.created"
	EventAssignmentUpdated   = "assignment.updated"
	EventAssignmentCompleted = "assignment.completed"
)

const (
	publishTimeout = 5 * time.Second
	sequencerLanes = 64
	chatImagesDir  = "chatImages"

	defaultMessageLimit = 200
)

// MessageInput is the content of a new message. At least one field is set.
type MessageInput struct {
	Text     string
	ImageURL string
}

// ReadEvent is the payload of EventMessageRead
type ReadEvent struct {
	ReaderID   string   `json:"readerId"`
	MessageIDs []string `json:"messageIds"`
}

// ChatService defines the interface for chat operations
type ChatService interface {
	ListChats(ctx context.Context, identity models.Identity) ([]dto.ChatSummaryResponse, error)
	GetChat(ctx context.Context, identity models.Identity, chatID string) (*dto.ChatSummaryResponse, error)
	ListMessages(ctx context.Context, identity models.Identity, chatID string, limit int) (*dto.ChatMessageListResponse, error)
	Send(ctx context.Context, identity models.Identity, chatID string, input MessageInput) (*models.ChatMessage, error)
	SendImage(ctx context.Context, identity models.Identity, chatID string, upload *Upload, caption string) (*models.ChatMessage, error)
	MarkRead(ctx context.Context, identity models.Identity, chatID, messageID string) (bool, error)
	MarkChannelRead(ctx context.Context, identity models.Identity, chatID string) (*dto.MarkReadResponse, error)
	Subscribe(ctx context.Context, identity models.Identity, chatID string) (*websocket.Subscription, error)

	// Authorize returns the channel if the caller participates in it
	Authorize(ctx context.Context, identity models.Identity, chatID string) (*models.Chat, error)
	// Publish sends an event to the channel's subscribers in channel order
	Publish(ctx context.Context, chatID, eventType string, data interface{})
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chatRepo    repositories.IChatRepository
	messageRepo repositories.IMessageRepository
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	wsHub       *websocket.Hub
	location    *time.Location
	logger      zerolog.Logger
	now         func() time.Time

	// lanes serialize append and publish per channel
	lanes [sequencerLanes]sync.Mutex
}

// NewChatService creates a new ChatService
func NewChatService(
	repos *repositories.Repositories,
	fileStorage filestorage.FileStorage,
	wsHub *websocket.Hub,
	location *time.Location,
	logger zerolog.Logger,
	now func() time.Time,
) ChatService {
	if location == nil {
		location = time.UTC
	}
	return &chatServiceImpl{
		chatRepo:    repos.Chats,
		messageRepo: repos.Messages,
		userRepo:    repos.Users,
		fileStorage: fileStorage,
		wsHub:       wsHub,
		location:    location,
		logger:      logger,
		now:         now,
	}
}

func (s *chatServiceImpl) lane(chatID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(chatID))
	return &s.lanes[h.Sum32()%sequencerLanes]
}

// Authorize returns the channel if identity is one of its participants
func (s *chatServiceImpl) Authorize(ctx context.Context, identity models.Identity, chatID string) (*models.Chat, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Chat not found")
		}
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	if !chat.HasParticipant(identity.UserID) {
		return nil, apperrors.NewForbiddenError("User is not a participant in this chat")
	}
	return chat, nil
}

// ListChats lists the caller's channels, most recently active first
func (s *chatServiceImpl) ListChats(ctx context.Context, identity models.Identity) ([]dto.ChatSummaryResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	chats, err := s.chatRepo.ListByParticipant(ctx, identity.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", identity.UserID).Msg("Failed to list chats")
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	others := make([]string, 0, len(chats))
	for _, c := range chats {
		others = append(others, c.Other(identity.UserID))
	}
	users, err := s.userRepo.GetByIDs(ctx, others)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat participants: %w", err)
	}

	out := make([]dto.ChatSummaryResponse, 0, len(chats))
	for _, c := range chats {
		summary, err := s.summarize(ctx, identity, c, users[c.Other(identity.UserID)])
		if err != nil {
			return nil, err
		}
		out = append(out, dto.ToChatSummaryResponse(summary))
	}
	return out, nil
}

// GetChat returns one channel summary
func (s *chatServiceImpl) GetChat(ctx context.Context, identity models.Identity, chatID string) (*dto.ChatSummaryResponse, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	otherID := chat.Other(identity.UserID)
	users, err := s.userRepo.GetByIDs(ctx, []string{otherID})
	if err != nil {
		return nil, fmt.Errorf("failed to load chat participant: %w", err)
	}

	summary, err := s.summarize(ctx, identity, chat, users[otherID])
	if err != nil {
		return nil, err
	}
	resp := dto.ToChatSummaryResponse(summary)
	return &resp, nil
}

func (s *chatServiceImpl) summarize(ctx context.Context, identity models.Identity, chat *models.Chat, other *models.User) (*models.ChatSummary, error) {
	last, err := s.messageRepo.Last(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last message: %w", err)
	}
	unread, err := s.messageRepo.CountUnread(ctx, chat.ID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return &models.ChatSummary{
		Chat:        chat,
		Other:       other,
		LastMessage: last,
		UnreadCount: unread,
	}, nil
}

// ListMessages returns the channel log oldest first with its date markers
// and the caller's read receipt
func (s *chatServiceImpl) ListMessages(ctx context.Context, identity models.Identity, chatID string, limit int) (*dto.ChatMessageListResponse, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	messages, err := s.messageRepo.ListByChat(ctx, chat.ID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("chatID", chat.ID).Msg("Failed to retrieve chat messages")
		return nil, fmt.Errorf("error retrieving chat messages: %w", err)
	}

	return &dto.ChatMessageListResponse{
		ChatID:   chat.ID,
		Messages: messages,
		Timeline: models.BuildTimeline(messages, s.location),
		Receipt:  models.ReadReceiptFor(messages, identity.UserID, chat.Other(identity.UserID)),
	}, nil
}

// Send appends a message and publishes it to the channel
func (s *chatServiceImpl) Send(ctx context.Context, identity models.Identity, chatID string, input MessageInput) (*models.ChatMessage, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, identity, chat, input)
}

func (s *chatServiceImpl) send(ctx context.Context, identity models.Identity, chat *models.Chat, input MessageInput) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		ID:       uuid.New().String(),
		ChatID:   chat.ID,
		SenderID: identity.UserID,
		Text:     strings.TrimSpace(input.Text),
		ImageURL: input.ImageURL,
		ReadBy:   []string{identity.UserID},
	}
	if !msg.HasContent() {
		return nil, apperrors.NewValidationError("text", "Message must contain text or an image")
	}

	lane := s.lane(chat.ID)
	lane.Lock()
	defer lane.Unlock()

	if err := s.messageRepo.Append(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("chatID", chat.ID).Msg("Failed to create chat message")
		return nil, fmt.Errorf("error creating chat message: %w", err)
	}

	s.publishLocked(ctx, chat.ID, EventMessageCreated, msg)
	s.logger.Debug().Str("chatID", chat.ID).Str("messageID", msg.ID).Msg("Chat message sent")
	return msg, nil
}

// SendImage stores an image and sends it with an optional caption
func (s *chatServiceImpl) SendImage(ctx context.Context, identity models.Identity, chatID string, upload *Upload, caption string) (*models.ChatMessage, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	url, err := storeImage(s.fileStorage, chatImagesDir+"/"+chat.ID, upload, s.now())
	if err != nil {
		s.logger.Warn().Err(err).Str("chatID", chat.ID).Str("filename", upload.Filename).Msg("Chat image rejected")
		return nil, err
	}

	msg, err := s.send(ctx, identity, chat, MessageInput{Text: caption, ImageURL: url})
	if err != nil {
		// Clean up - delete the file if we couldn't create the message
		_ = s.fileStorage.Delete(url)
		return nil, err
	}
	return msg, nil
}

// MarkRead adds the caller to a message's read set
func (s *chatServiceImpl) MarkRead(ctx context.Context, identity models.Identity, chatID, messageID string) (bool, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return false, err
	}

	lane := s.lane(chat.ID)
	lane.Lock()
	defer lane.Unlock()

	changed, err := s.messageRepo.MarkRead(ctx, chat.ID, messageID, identity.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, apperrors.NewResourceNotFoundError("Message not found")
		}
		return false, fmt.Errorf("failed to mark message read: %w", err)
	}
	if changed {
		s.publishLocked(ctx, chat.ID, EventMessageRead, ReadEvent{ReaderID: identity.UserID, MessageIDs: []string{messageID}})
	}
	return changed, nil
}

// MarkChannelRead marks every message of the other participant as read
func (s *chatServiceImpl) MarkChannelRead(ctx context.Context, identity models.Identity, chatID string) (*dto.MarkReadResponse, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	lane := s.lane(chat.ID)
	lane.Lock()
	defer lane.Unlock()

	updated, err := s.messageRepo.MarkAllRead(ctx, chat.ID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark chat read: %w", err)
	}
	if len(updated) > 0 {
		s.publishLocked(ctx, chat.ID, EventMessageRead, ReadEvent{ReaderID: identity.UserID, MessageIDs: updated})
	}
	return &dto.MarkReadResponse{Updated: updated}, nil
}

// Subscribe opens a live feed of the channel's events. The caller must Close it.
func (s *chatServiceImpl) Subscribe(ctx context.Context, identity models.Identity, chatID string) (*websocket.Subscription, error) {
	chat, err := s.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}
	if s.wsHub == nil {
		return nil, fmt.Errorf("realtime hub is not configured")
	}
	return s.wsHub.Subscribe(chat.ID)
}

// Publish sends an event on the channel topic after any in-flight message
func (s *chatServiceImpl) Publish(ctx context.Context, chatID, eventType string, data interface{}) {
	lane := s.lane(chatID)
	lane.Lock()
	defer lane.Unlock()
	s.publishLocked(ctx, chatID, eventType, data)
}

// publishLocked must run under the channel's lane. A failed publish is only
// logged; the write it reports has already been persisted.
func (s *chatServiceImpl) publishLocked(ctx context.Context, chatID, eventType string, data interface{}) {
	if s.wsHub == nil {
		return
	}

	evt, err := websocket.NewEvent(chatID, eventType, data)
	if err != nil {
		s.logger.Error().Err(err).Str("chatID", chatID).Str("eventType", eventType).Msg("Failed to build chat event")
		return
	}
	evt.Timestamp = s.now()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.wsHub.Publish(pubCtx, evt); err != nil {
		s.logger.Warn().Err(err).Str("chatID", chatID).Str("eventType", eventType).Msg("Failed to publish chat event")
	}
}
