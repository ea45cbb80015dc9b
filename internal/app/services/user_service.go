package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// DefaultDirectoryLimit caps directory results when the caller gives no limit
const DefaultDirectoryLimit = 50

// UserService handles profiles and the directory
type UserService interface {
	GetProfile(ctx context.Context, identity models.Identity, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, identity models.Identity, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	SearchMentors(ctx context.Context, identity models.Identity, query *dto.DirectoryQuery) ([]*dto.UserResponse, error)
	SearchStudents(ctx context.Context, identity models.Identity, query *dto.DirectoryQuery) ([]*dto.UserResponse, error)
}

type userServiceImpl struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile returns a user's profile. The email is only shown to its owner.
func (s *userServiceImpl) GetProfile(ctx context.Context, identity models.Identity, userID string) (*dto.UserResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.ToUserResponse(user, user.ID == identity.UserID), nil
}

// UpdateProfile edits the caller's own profile
func (s *userServiceImpl) UpdateProfile(ctx context.Context, identity models.Identity, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	if !validation.ValidName(req.Name) {
		return nil, apperrors.NewValidationError("name", "Name is required and must be at most 100 characters")
	}
	if !validation.ValidAge(req.Age) {
		return nil, apperrors.NewValidationError("age", "Age must be between 0 and 120")
	}
	if !validation.ValidCareer(req.Career) {
		return nil, apperrors.NewValidationError("career", "Career description is too long")
	}
	category := models.Category{Major: req.Major, Middle: req.Middle, Minor: req.Minor}
	if !models.ValidCategory(category, true) {
		return nil, apperrors.NewValidationError("major", "Unknown category")
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Age = req.Age
	user.Category = category.Normalize()
	user.Career = strings.TrimSpace(req.Career)

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID).Msg("Failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info().Str("userID", user.ID).Msg("Profile updated")
	return dto.ToUserResponse(user, true), nil
}

// SearchMentors lists mentors of a major, optionally narrowed by the lower
// category levels and the trust tier
func (s *userServiceImpl) SearchMentors(ctx context.Context, identity models.Identity, query *dto.DirectoryQuery) ([]*dto.UserResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query.Major) == "" {
		return nil, apperrors.NewValidationError("major", "Major is required to search mentors")
	}
	return s.search(ctx, models.RoleMentor, query)
}

// SearchStudents lists students, optionally within a category
func (s *userServiceImpl) SearchStudents(ctx context.Context, identity models.Identity, query *dto.DirectoryQuery) ([]*dto.UserResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	query.Tier = ""
	return s.search(ctx, models.RoleStudent, query)
}

func (s *userServiceImpl) search(ctx context.Context, role models.Role, query *dto.DirectoryQuery) ([]*dto.UserResponse, error) {
	category := models.Category{Major: query.Major, Middle: query.Middle, Minor: query.Minor}
	if !models.ValidCategory(category, false) {
		return nil, apperrors.NewValidationError("major", "Unknown category")
	}
	if query.Tier != "" && !query.Tier.Valid() {
		return nil, apperrors.NewValidationError("tier", "Tier must be low, medium or high")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultDirectoryLimit
	}

	users, err := s.userRepo.Search(ctx, models.DirectoryFilter{
		Role:     role,
		Category: category.Normalize(),
		Tier:     query.Tier,
		Limit:    limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(role)).Msg("Directory search failed")
		return nil, fmt.Errorf("directory search failed: %w", err)
	}
	return dto.ToUserResponses(users), nil
}
