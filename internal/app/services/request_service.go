package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestService runs the contact request workflow
type RequestService interface {
	Create(ctx context.Context, identity models.Identity, toID string) (*dto.ContactRequestResponse, error)
	Accept(ctx context.Context, identity models.Identity, requestID string) (*dto.AcceptRequestResponse, error)
	Reject(ctx context.Context, identity models.Identity, requestID string) (*dto.ContactRequestResponse, error)
	ListIncoming(ctx context.Context, identity models.Identity, status models.RequestStatus) ([]*dto.ContactRequestResponse, error)
	ListOutgoing(ctx context.Context, identity models.Identity) ([]*dto.ContactRequestResponse, error)
	RelationshipStatus(ctx context.Context, identity models.Identity, otherID string) (*dto.RelationshipResponse, error)
}

type requestServiceImpl struct {
	requestRepo repositories.IRequestRepository
	userRepo    repositories.IUserRepository
	chatRepo    repositories.IChatRepository
	activity    activity.Publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRequestService creates a new RequestService
func NewRequestService(
	repos *repositories.Repositories,
	publisher activity.Publisher,
	logger zerolog.Logger,
	now func() time.Time,
) RequestService {
	return &requestServiceImpl{
		requestRepo: repos.Requests,
		userRepo:    repos.Users,
		chatRepo:    repos.Chats,
		activity:    publisher,
		logger:      logger,
		now:         now,
	}
}

// Create sends a pending request from the caller to toID. A second pending
// request for the same ordered pair is refused.
func (s *requestServiceImpl) Create(ctx context.Context, identity models.Identity, toID string) (*dto.ContactRequestResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	toID = strings.TrimSpace(toID)
	if toID == "" {
		return nil, apperrors.NewValidationError("to", "Recipient is required")
	}
	if toID == identity.UserID {
		return nil, apperrors.NewCustomError(apperrors.ErrSelfRequest, "You cannot send a request to yourself").
			WithDetails(map[string]interface{}{"field": "to"})
	}

	if _, err := s.userRepo.GetByID(ctx, toID); err != nil {
		return nil, err
	}

	existing, err := s.requestRepo.FindPending(ctx, identity.UserID, toID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicatePendingRequest, "A request to this user is already pending").
			WithDetails(map[string]interface{}{"requestId": existing.ID})
	}

	req := &models.Request{
		ID:     uuid.New().String(),
		FromID: identity.UserID,
		ToID:   toID,
		Status: models.RequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.logger.Error().Err(err).Str("from", req.FromID).Str("to", req.ToID).Msg("Failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info().Str("requestID", req.ID).Str("from", req.FromID).Str("to", req.ToID).Msg("Contact request created")
	publishActivity(s.activity, s.logger, activity.Event{
		Type:      activity.RequestCreated,
		ActorID:   identity.UserID,
		SubjectID: req.ID,
		Data:      map[string]string{"to": toID},
		Timestamp: s.now(),
	})

	if err := s.attachUsers(ctx, []*models.Request{req}); err != nil {
		return nil, err
	}
	return dto.ToContactRequestResponse(req), nil
}

// decide loads a request and checks that the caller is its recipient
func (s *requestServiceImpl) decide(ctx context.Context, identity models.Identity, requestID string, next models.RequestStatus) (*models.Request, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToID != identity.UserID {
		return nil, apperrors.NewForbiddenError("Only the recipient can decide on this request")
	}

	decided, err := s.requestRepo.Transition(ctx, requestID, next, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("requestID", requestID).Msg("Failed to transition request")
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	return decided, nil
}

// Accept moves the request to accepted and opens the channel of the pair
func (s *requestServiceImpl) Accept(ctx context.Context, identity models.Identity, requestID string) (*dto.AcceptRequestResponse, error) {
	req, err := s.decide(ctx, identity, requestID, models.RequestAccepted)
	if err != nil {
		return nil, err
	}

	chat, created, err := s.chatRepo.Ensure(ctx, models.NewChat(req.FromID, req.ToID))
	if err != nil {
		s.logger.Error().Err(err).Str("requestID", req.ID).Msg("Failed to ensure channel for accepted request")
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	s.logger.Info().
		Str("requestID", req.ID).
		Str("chatID", chat.ID).
		Bool("chatCreated", created).
		Msg("Contact request accepted")
	publishActivity(s.activity, s.logger, activity.Event{
		Type:      activity.RequestAccepted,
		ActorID:   identity.UserID,
		SubjectID: req.ID,
		Data:      map[string]string{"chatId": chat.ID},
		Timestamp: s.now(),
	})

	if err := s.attachUsers(ctx, []*models.Request{req}); err != nil {
		return nil, err
	}
	return &dto.AcceptRequestResponse{
		Request: dto.ToContactRequestResponse(req),
		Chat:    chat,
	}, nil
}

// Reject moves the request to rejected
func (s *requestServiceImpl) Reject(ctx context.Context, identity models.Identity, requestID string) (*dto.ContactRequestResponse, error) {
	req, err := s.decide(ctx, identity, requestID, models.RequestRejected)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("requestID", req.ID).Msg("Contact request rejected")
	publishActivity(s.activity, s.logger, activity.Event{
		Type:      activity.RequestRejected,
		ActorID:   identity.UserID,
		SubjectID: req.ID,
		Timestamp: s.now(),
	})

	if err := s.attachUsers(ctx, []*models.Request{req}); err != nil {
		return nil, err
	}
	return dto.ToContactRequestResponse(req), nil
}

// ListIncoming lists requests addressed to the caller. An empty status lists all.
func (s *requestServiceImpl) ListIncoming(ctx context.Context, identity models.Identity, status models.RequestStatus) ([]*dto.ContactRequestResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", "Unknown request status")
	}

	reqs, err := s.requestRepo.ListByRecipient(ctx, identity.UserID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	if err := s.attachUsers(ctx, reqs); err != nil {
		return nil, err
	}
	return dto.ToContactRequestResponses(reqs), nil
}

// ListOutgoing lists requests the caller sent
func (s *requestServiceImpl) ListOutgoing(ctx context.Context, identity models.Identity) ([]*dto.ContactRequestResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	reqs, err := s.requestRepo.ListBySender(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing requests: %w", err)
	}
	if err := s.attachUsers(ctx, reqs); err != nil {
		return nil, err
	}
	return dto.ToContactRequestResponses(reqs), nil
}

// RelationshipStatus tells whether the caller already shares a channel with
// otherID or has a pending request in either direction
func (s *requestServiceImpl) RelationshipStatus(ctx context.Context, identity models.Identity, otherID string) (*dto.RelationshipResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if otherID == identity.UserID {
		return &dto.RelationshipResponse{}, nil
	}

	resp := &dto.RelationshipResponse{}
	chatID := models.ChannelID(identity.UserID, otherID)
	if _, err := s.chatRepo.GetByID(ctx, chatID); err == nil {
		resp.ChatID = chatID
		resp.HasChat = true
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("failed to look up channel: %w", err)
	}

	sent, err := s.requestRepo.FindPending(ctx, identity.UserID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	resp.PendingSent = sent != nil

	received, err := s.requestRepo.FindPending(ctx, otherID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if received != nil {
		resp.PendingRequest = received.ID
	}
	return resp, nil
}

// attachUsers fills From and To for display
func (s *requestServiceImpl) attachUsers(ctx context.Context, reqs []*models.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reqs)*2)
	for _, r := range reqs {
		ids = append(ids, r.FromID, r.ToID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load request participants: %w", err)
	}
	for _, r := range reqs {
		r.From = users[r.FromID]
		r.To = users[r.ToID]
	}
	return nil
}
