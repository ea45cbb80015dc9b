package services

import (
	"testing"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

func TestRatingCooldown(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")

	eligible, err := f.svc.Ratings.Eligibility(f.ctx, student, mentor.UserID)
	require.NoError(t, err)
	assert.True(t, eligible.CanRate)
	assert.Nil(t, eligible.NextAllowedAt)

	first, err := f.svc.Ratings.Rate(f.ctx, student, mentor.UserID, 5)
	require.NoError(t, err)
	assert.Equal(t, 55, first.Summary.Sum)
	assert.Equal(t, 2, first.Summary.Count)
	assert.InDelta(t, 27.5, first.Summary.Avg, 1e-9)
	assert.Equal(t, models.TrustHigh, first.Summary.Tier)
	assert.Equal(t, day0.Add(7*day), first.Next)

	f.clock.Advance(3 * day)
	_, err = f.svc.Ratings.Rate(f.ctx, student, mentor.UserID, 1)
	require.ErrorIs(t, err, apperrors.ErrCooldownActive)
	assert.Equal(t, day0.Add(7*day), apperrors.Details(err)["nextAllowedAt"])

	eligible, err = f.svc.Ratings.Eligibility(f.ctx, student, mentor.UserID)
	require.NoError(t, err)
	assert.False(t, eligible.CanRate)
	assert.Equal(t, 5, eligible.LastValue)
	require.NotNil(t, eligible.NextAllowedAt)
	assert.True(t, eligible.NextAllowedAt.Equal(day0.Add(7*day)))
	assert.Equal(t, 4, eligible.DaysRemaining)

	f.clock.Advance(5 * day)
	second, err := f.svc.Ratings.Rate(f.ctx, student, mentor.UserID, 1)
	require.NoError(t, err)
	assert.Equal(t, 56, second.Summary.Sum)
	assert.Equal(t, 3, second.Summary.Count)

	profile, err := f.svc.Users.GetProfile(f.ctx, student, mentor.UserID)
	require.NoError(t, err)
	assert.Equal(t, second.Summary, *profile.Rating)

	assert.Equal(t, []string{activity.RatingSubmitted, activity.RatingSubmitted}, f.activity.Types())
}

func TestRatingCooldownIsPerRater(t *testing.T) {
	f := newFixture(t)
	a := f.register("a", models.RoleStudent, "IT")
	b := f.register("b", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")

	_, err := f.svc.Ratings.Rate(f.ctx, a, mentor.UserID, 4)
	require.NoError(t, err)
	resp, err := f.svc.Ratings.Rate(f.ctx, b, mentor.UserID, 3)
	require.NoError(t, err)
	assert.Equal(t, 57, resp.Summary.Sum)
	assert.Equal(t, 3, resp.Summary.Count)
}

func TestRatingRejects(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	other := f.register("other", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")

	tests := []struct {
		name    string
		rater   models.Identity
		target  string
		value   int
		wantErr error
	}{
		{"value too low", student, mentor.UserID, 0, apperrors.ErrValidationFailed},
		{"value too high", student, mentor.UserID, 6, apperrors.ErrValidationFailed},
		{"self", mentor, mentor.UserID, 5, apperrors.ErrSelfRequest},
		{"not a mentor", student, other.UserID, 5, apperrors.ErrBadRequest},
		{"unknown mentor", student, "missing", 5, apperrors.ErrResourceNotFound},
		{"anonymous", models.Identity{}, mentor.UserID, 5, apperrors.ErrUnauthenticated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Ratings.Rate(f.ctx, tc.rater, tc.target, tc.value)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	profile, err := f.svc.Users.GetProfile(f.ctx, student, mentor.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.SeedRatingSummary(), *profile.Rating)
}
