package seed

import (
	"context"
	"testing"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/repositories/inmem"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/dreamline/mentorlink/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateDemoUsersIsIdempotent(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost

	db, err := inmem.Open()
	require.NoError(t, err)
	repos := db.Repositories()

	authService := services.NewAuthService(repos.Users, auth.NewJWTService(auth.JWTConfig{SecretKey: "test"}), logger.Nop())
	ctx := context.Background()

	require.NoError(t, CreateDemoUsers(ctx, authService, logger.Nop()))
	require.NoError(t, CreateDemoUsers(ctx, authService, logger.Nop()))

	mentor, err := repos.Users.GetByEmail(ctx, DemoUsers[0].Email)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, mentor.Role)
	assert.Equal(t, models.SeedRatingSummary(), mentor.Rating)
	assert.True(t, auth.CheckPassword(mentor.PasswordHash, DemoPassword))
}
