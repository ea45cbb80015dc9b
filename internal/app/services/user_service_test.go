package services

import (
	"testing"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectorySearch(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	rated := f.register("rated", models.RoleMentor, "IT")
	f.register("plain", models.RoleMentor, "IT")
	f.register("designer", models.RoleMentor, "Design")
	f.register("other", models.RoleStudent, "Business")

	_, err := f.svc.Ratings.Rate(f.ctx, student, rated.UserID, 5)
	require.NoError(t, err)

	t.Run("mentors need a major", func(t *testing.T) {
		_, err := f.svc.Users.SearchMentors(f.ctx, student, &dto.DirectoryQuery{})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("mentors by major", func(t *testing.T) {
		got, err := f.svc.Users.SearchMentors(f.ctx, student, &dto.DirectoryQuery{Major: "IT"})
		require.NoError(t, err)
		names := make([]string, 0, len(got))
		for _, u := range got {
			names = append(names, u.Name)
			assert.Empty(t, u.Email)
		}
		assert.ElementsMatch(t, []string{"rated", "plain"}, names)
	})

	t.Run("mentors by tier", func(t *testing.T) {
		got, err := f.svc.Users.SearchMentors(f.ctx, student, &dto.DirectoryQuery{Major: "IT", Tier: models.TrustHigh})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rated.UserID, got[0].ID)
	})

	t.Run("unknown major", func(t *testing.T) {
		_, err := f.svc.Users.SearchMentors(f.ctx, student, &dto.DirectoryQuery{Major: "Astrology"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("students", func(t *testing.T) {
		all, err := f.svc.Users.SearchStudents(f.ctx, rated, &dto.DirectoryQuery{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		business, err := f.svc.Users.SearchStudents(f.ctx, rated, &dto.DirectoryQuery{Major: "Business"})
		require.NoError(t, err)
		require.Len(t, business, 1)
		assert.Equal(t, "other", business[0].Name)
	})
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	student := f.register("student", models.RoleStudent, "IT")
	mentor := f.register("mentor", models.RoleMentor, "IT")

	own, err := f.svc.Users.GetProfile(f.ctx, student, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", own.Email)

	other, err := f.svc.Users.GetProfile(f.ctx, student, mentor.UserID)
	require.NoError(t, err)
	assert.Empty(t, other.Email)
	require.NotNil(t, other.Rating)

	updated, err := f.svc.Users.UpdateProfile(f.ctx, student, &dto.UpdateProfileRequest{
		Name:   "  Student Kim ",
		Age:    22,
		Major:  "Design",
		Middle: "Product",
		Minor:  "UX",
		Career: "Two internships",
	})
	require.NoError(t, err)
	assert.Equal(t, "Student Kim", updated.Name)
	assert.Equal(t, "Product", updated.Middle)

	again, err := f.svc.Users.GetProfile(f.ctx, mentor, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "UX", again.Minor)
	assert.Equal(t, 22, again.Age)

	_, err = f.svc.Users.UpdateProfile(f.ctx, student, &dto.UpdateProfileRequest{Name: "x", Major: "IT", Middle: "Marketing"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.Users.GetProfile(f.ctx, student, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
