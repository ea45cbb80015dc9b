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
	"github.com/rs/zerolog"
)

// AssignmentService manages the current assignment of a channel
type AssignmentService interface {
	Create(ctx context.Context, identity models.Identity, chatID string, req *dto.CreateAssignmentRequest) (*models.Assignment, error)
	// GetCurrent returns nil when the channel has no assignment yet
	GetCurrent(ctx context.Context, identity models.Identity, chatID string) (*models.Assignment, error)
	UpdateProgress(ctx context.Context, identity models.Identity, chatID string, progress int) (*models.Assignment, error)
	Complete(ctx context.Context, identity models.Identity, chatID string) (*models.Assignment, error)
}

type assignmentServiceImpl struct {
	assignmentRepo repositories.IAssignmentRepository
	chats          ChatService
	activity       activity.Publisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	repos *repositories.Repositories,
	chats ChatService,
	publisher activity.Publisher,
	logger zerolog.Logger,
	now func() time.Time,
) AssignmentService {
	return &assignmentServiceImpl{
		assignmentRepo: repos.Assignments,
		chats:          chats,
		activity:       publisher,
		logger:         logger,
		now:            now,
	}
}

// Create puts a new assignment into the channel's slot. Only a mentor
// participant may create one, and only while the slot holds no active
// assignment.
func (s *assignmentServiceImpl) Create(ctx context.Context, identity models.Identity, chatID string, req *dto.CreateAssignmentRequest) (*models.Assignment, error) {
	chat, err := s.chats.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}
	if !identity.IsMentor() {
		return nil, apperrors.NewForbiddenError("Only mentors can create assignments")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}

	a := &models.Assignment{
		ChatID:    chat.ID,
		Title:     title,
		Content:   strings.TrimSpace(req.Content),
		Steps:     models.CleanSteps(req.Steps),
		Progress:  0,
		CreatedBy: identity.UserID,
		CreatedAt: s.now(),
	}

	if err := s.assignmentRepo.Replace(ctx, a); err != nil {
		if errors.Is(err, apperrors.ErrActiveAssignmentExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrActiveAssignmentExists,
				"Complete the current assignment before creating a new one")
		}
		s.logger.Error().Err(err).Str("chatID", chat.ID).Msg("Failed to create assignment")
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info().Str("chatID", chat.ID).Str("mentorID", identity.UserID).Msg("Assignment created")
	s.chats.Publish(ctx, chat.ID, EventAssignmentCreated, a)
	publishActivity(s.activity, s.logger, activity.Event{
		Type:      activity.AssignmentCreated,
		ActorID:   identity.UserID,
		SubjectID: chat.ID,
		Data:      map[string]string{"title": a.Title},
		Timestamp: a.CreatedAt,
	})
	return a, nil
}

// GetCurrent returns the assignment in the channel's slot
func (s *assignmentServiceImpl) GetCurrent(ctx context.Context, identity models.Identity, chatID string) (*models.Assignment, error) {
	chat, err := s.chats.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	a, err := s.assignmentRepo.GetCurrent(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	return a, nil
}

// UpdateProgress sets the display counter of the current assignment
func (s *assignmentServiceImpl) UpdateProgress(ctx context.Context, identity models.Identity, chatID string, progress int) (*models.Assignment, error) {
	chat, err := s.chats.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	a, err := s.assignmentRepo.UpdateProgress(ctx, chat.ID, progress)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("No assignment in this chat")
		}
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	s.chats.Publish(ctx, chat.ID, EventAssignmentUpdated, a)
	return a, nil
}

// Complete marks the current assignment completed. Completing it again
// keeps the first completion time.
func (s *assignmentServiceImpl) Complete(ctx context.Context, identity models.Identity, chatID string) (*models.Assignment, error) {
	chat, err := s.chats.Authorize(ctx, identity, chatID)
	if err != nil {
		return nil, err
	}

	before, err := s.assignmentRepo.GetCurrent(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if before == nil {
		return nil, apperrors.NewResourceNotFoundError("No assignment in this chat")
	}
	if before.IsCompleted {
		return before, nil
	}

	a, err := s.assignmentRepo.Complete(ctx, chat.ID, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("No assignment in this chat")
		}
		return nil, fmt.Errorf("failed to complete assignment: %w", err)
	}

	s.logger.Info().Str("chatID", chat.ID).Str("userID", identity.UserID).Msg("Assignment completed")
	s.chats.Publish(ctx, chat.ID, EventAssignmentCompleted, a)
	publishActivity(s.activity, s.logger, activity.Event{
		Type:      activity.AssignmentCompleted,
		ActorID:   identity.UserID,
		SubjectID: chat.ID,
		Timestamp: s.now(),
	})
	return a, nil
}
