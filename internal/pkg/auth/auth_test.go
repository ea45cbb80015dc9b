package auth

import (
	"testing"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(now time.Time) *JWTService {
	s := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "mentorlink-test"})
	s.now = func() time.Time { return now }
	return s
}

func TestTokenRoundTripCarriesIdentity(t *testing.T) {
	now := time.Now()
	s := newTestService(now)
	user := &models.User{ID: "7b1c", Email: "mentor@example.com", Role: models.RoleMentor}

	token, expiresIn, err := s.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.EqualValues(t, 3600, expiresIn)

	claims, err := s.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: "7b1c", Role: models.RoleMentor}, claims.Identity())
	assert.Equal(t, "mentorlink-test", claims.Issuer)
}

func TestExpiredToken(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	token, _, err := newTestService(issued).GenerateAccessToken(&models.User{ID: "u", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = newTestService(time.Now()).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	token, _, err := newTestService(time.Now()).GenerateAccessToken(&models.User{ID: "u", Role: models.RoleStudent})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "different", AccessTokenExp: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer prefix", header: "Bearer abc.def", want: "abc.def"},
		{name: "raw token", header: "abc.def", want: "abc.def"},
		{name: "empty", header: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
