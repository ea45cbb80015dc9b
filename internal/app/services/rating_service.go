package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// RatingService records mentor ratings
type RatingService interface {
	Rate(ctx context.Context, identity models.Identity, mentorID string, value int) (*dto.RatingResponse, error)
	Eligibility(ctx context.Context, identity models.Identity, mentorID string) (*dto.EligibilityResponse, error)
}

type ratingServiceImpl struct {
	ratingRepo repositories.IRatingRepository
	userRepo   repositories.IUserRepository
	cooldown   time.Duration
	activity   activity.Publisher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRatingService creates a new RatingService
func NewRatingService(
	repos *repositories.Repositories,
	cooldown time.Duration,
	publisher activity.Publisher,
	logger zerolog.Logger,
	now func() time.Time,
) RatingService {
	return &ratingServiceImpl{
		ratingRepo: repos.Ratings,
		userRepo:   repos.Users,
		cooldown:   cooldown,
		activity:   publisher,
		logger:     logger,
		now:        now,
	}
}

func (s *ratingServiceImpl) checkTarget(ctx context.Context, identity models.Identity, mentorID string) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if mentorID == identity.UserID {
		return apperrors.NewCustomError(apperrors.ErrSelfRequest, "You cannot rate yourself")
	}

	mentor, err := s.userRepo.GetByID(ctx, mentorID)
	if err != nil {
		return err
	}
	if !mentor.IsMentor() {
		return apperrors.NewBadRequestError("Only mentors can be rated")
	}
	return nil
}

// Rate adds value to the mentor's summary. A rater may rate the same
// mentor once per cooldown period.
func (s *ratingServiceImpl) Rate(ctx context.Context, identity models.Identity, mentorID string, value int) (*dto.RatingResponse, error) {
	if value < models.MinRating || value > models.MaxRating {
		return nil, apperrors.NewValidationError("value", "Rating must be between 1 and 5")
	}
	if err := s.checkTarget(ctx, identity, mentorID); err != nil {
		return nil, err
	}

	now := s.now()

	// Fast path only; the check inside the transaction decides
	record, err := s.ratingRepo.FindRecord(ctx, mentorID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating record: %w", err)
	}
	if record.InCooldown(now, s.cooldown) {
		return nil, apperrors.NewCooldownError(record.NextAllowedAt(s.cooldown))
	}

	var summary models.RatingSummary
	err = s.ratingRepo.RunInTx(ctx, func(ctx context.Context, tx repositories.RatingTx) error {
		mentor, err := tx.LockMentor(ctx, mentorID)
		if err != nil {
			return err
		}

		record, err := tx.FindRecord(ctx, mentorID, identity.UserID)
		if err != nil {
			return err
		}
		if record.InCooldown(now, s.cooldown) {
			return apperrors.NewCooldownError(record.NextAllowedAt(s.cooldown))
		}

		summary = mentor.Rating.Add(value)
		if err := tx.SaveSummary(ctx, mentorID, summary); err != nil {
			return err
		}
		return tx.UpsertRecord(ctx, &models.RatingRecord{
			MentorID:    mentorID,
			RaterID:     identity.UserID,
			LastValue:   value,
			LastRatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("mentorID", mentorID).
		Str("raterID", identity.UserID).
		Int("value", value).
		Float64("avg", summary.Avg).
		Str("tier", string(summary.Tier)).
		Msg("Mentor rated")
	publishActivity(s.activity, s.logger, activity.Event{
		Type:      activity.RatingSubmitted,
		ActorID:   identity.UserID,
		SubjectID: mentorID,
		Data:      summary,
		Timestamp: now,
	})

	return &dto.RatingResponse{
		MentorID: mentorID,
		Summary:  summary,
		Next:     now.Add(s.cooldown),
	}, nil
}

// Eligibility tells the caller whether Rate would accept a rating now
func (s *ratingServiceImpl) Eligibility(ctx context.Context, identity models.Identity, mentorID string) (*dto.EligibilityResponse, error) {
	if err := s.checkTarget(ctx, identity, mentorID); err != nil {
		return nil, err
	}

	record, err := s.ratingRepo.FindRecord(ctx, mentorID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating record: %w", err)
	}
	if record == nil {
		return &dto.EligibilityResponse{CanRate: true}, nil
	}

	now := s.now()
	resp := &dto.EligibilityResponse{
		CanRate:   !record.InCooldown(now, s.cooldown),
		LastValue: record.LastValue,
	}
	if !resp.CanRate {
		next := record.NextAllowedAt(s.cooldown)
		resp.NextAllowedAt = &next
		resp.DaysRemaining = helpers.DaysUntil(now, next)
	}
	return resp, nil
}
