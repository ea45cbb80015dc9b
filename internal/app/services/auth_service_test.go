package services

import (
	"testing"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSeedsMentorRating(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Auth.Register(f.ctx, &dto.RegisterRequest{
		Email:    "Mentor@Example.com",
		Password: "correct-horse",
		Name:     "Mentor",
		Age:      40,
		Role:     models.RoleMentor,
		Major:    "IT",
		Middle:   "Software",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, "mentor@example.com", resp.User.Email)
	require.NotNil(t, resp.User.Rating)
	assert.Equal(t, models.SeedRatingSummary(), *resp.User.Rating)

	student := f.register("student", models.RoleStudent, "IT")
	profile, err := f.svc.Users.GetProfile(f.ctx, student, student.UserID)
	require.NoError(t, err)
	assert.Nil(t, profile.Rating)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	f.register("taken", models.RoleStudent, "IT")

	tests := []struct {
		name    string
		mutate  func(*dto.RegisterRequest)
		wantErr error
	}{
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "nope" }, apperrors.ErrValidationFailed},
		{"short password", func(r *dto.RegisterRequest) { r.Password = "short" }, apperrors.ErrValidationFailed},
		{"unknown major", func(r *dto.RegisterRequest) { r.Major = "Cooking" }, apperrors.ErrValidationFailed},
		{"middle outside major", func(r *dto.RegisterRequest) { r.Middle = "Marketing" }, apperrors.ErrValidationFailed},
		{"duplicate email", func(r *dto.RegisterRequest) { r.Email = "TAKEN@example.com" }, apperrors.ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:    "new@example.com",
				Password: "correct-horse",
				Name:     "New",
				Role:     models.RoleStudent,
				Major:    "IT",
			}
			tt.mutate(req)
			_, err := f.svc.Auth.Register(f.ctx, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	id := f.register("kim", models.RoleMentor, "IT")

	resp, err := f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "KIM@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, id.UserID, resp.User.ID)
	assert.NotEmpty(t, resp.Token.AccessToken)

	_, err = f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "kim@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
