package seed

import (
	"context"
	"errors"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// DemoPassword is the password of every demo account
const DemoPassword = "mentorlink-demo"

// DemoUsers are created by CreateDemoUsers
var DemoUsers = []dto.RegisterRequest{
	{
		Email:  "mentor@demo.mentorlink.app",
		Name:   "Demo Mentor",
		Age:    34,
		Role:   models.RoleMentor,
		Major:  "IT",
		Middle: "Software",
		Minor:  "Backend",
		Career: "Ten years of building payment backends",
	},
	{
		Email:  "student@demo.mentorlink.app",
		Name:   "Demo Student",
		Age:    21,
		Role:   models.RoleStudent,
		Major:  "IT",
		Middle: "Software",
	},
}

// CreateDemoUsers registers the demo accounts that do not exist yet.
// Failures are collected so one bad account does not stop the others.
func CreateDemoUsers(ctx context.Context, auth services.AuthService, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating demo users...")

	var finalErr error
	for _, u := range DemoUsers {
		req := u
		req.Password = DemoPassword

		_, err := auth.Register(ctx, &req)
		switch {
		case err == nil:
			lgr.Info().Str("email", req.Email).Str("role", string(req.Role)).Msg("Demo user created")
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			lgr.Debug().Str("email", req.Email).Msg("Demo user already exists")
		default:
			lgr.Error().Err(err).Str("email", req.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}
