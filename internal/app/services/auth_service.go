package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/dreamline/mentorlink/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthService handles registration and login
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// validateRegistration checks the fields the binding layer cannot
func validateRegistration(req *dto.RegisterRequest) error {
	if !validation.ValidEmail(req.Email) {
		return apperrors.NewValidationError("email", "Invalid email format")
	}
	if !validation.ValidPassword(req.Password) {
		return apperrors.NewValidationError("password", "Password must be between 8 and 72 characters")
	}
	if !validation.ValidName(req.Name) {
		return apperrors.NewValidationError("name", "Name is required and must be at most 100 characters")
	}
	if !validation.ValidAge(req.Age) {
		return apperrors.NewValidationError("age", "Age must be between 0 and 120")
	}
	if !validation.ValidCareer(req.Career) {
		return apperrors.NewValidationError("career", "Career description is too long")
	}
	if !req.Role.Valid() {
		return apperrors.NewValidationError("role", "Role must be student or mentor")
	}
	category := models.Category{Major: req.Major, Middle: req.Middle, Minor: req.Minor}
	if !models.ValidCategory(category, true) {
		return apperrors.NewValidationError("major", "Unknown category")
	}
	return nil
}

// Register creates a student or mentor account and signs it in
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(req.Name),
		Age:          req.Age,
		Role:         req.Role,
		Category:     models.Category{Major: req.Major, Middle: req.Middle, Minor: req.Minor}.Normalize(),
		Career:       strings.TrimSpace(req.Career),
	}
	if user.IsMentor() {
		user.Rating = models.SeedRatingSummary()
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email is already registered")
		}
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Str("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return s.authResponse(user.Normalize())
}

// Login authenticates a user by email and password
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Debug().Str("userID", user.ID).Msg("Password mismatch")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *authServiceImpl) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.ToUserResponse(user, true),
	}, nil
}
