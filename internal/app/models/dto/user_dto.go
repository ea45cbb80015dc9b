package dto

import (
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
)

// UserResponse is the public profile of a user. Rating is only set for mentors.
type UserResponse struct {
	ID        string                `json:"id"`
	Email     string                `json:"email,omitempty"`
	Name      string                `json:"name"`
	Age       int                   `json:"age"`
	Role      models.Role           `json:"role"`
	Major     string                `json:"major"`
	Middle    string                `json:"middle,omitempty"`
	Minor     string                `json:"minor,omitempty"`
	Career    string                `json:"career,omitempty"`
	Rating    *models.RatingSummary `json:"rating,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}

// ToUserResponse maps a user to its public profile. The email is only
// included when includeEmail is set, i.e. for the owner.
func ToUserResponse(u *models.User, includeEmail bool) *UserResponse {
	if u == nil {
		return nil
	}
	resp := &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Age:       u.Age,
		Role:      u.Role,
		Major:     u.Category.Major,
		Middle:    u.Category.Middle,
		Minor:     u.Category.Minor,
		Career:    u.Career,
		CreatedAt: u.CreatedAt,
	}
	if includeEmail {
		resp.Email = u.Email
	}
	if u.IsMentor() {
		rating := u.Rating
		resp.Rating = &rating
	}
	return resp
}

// ToUserResponses maps a list of users without emails
func ToUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u, false))
	}
	return out
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Age    int    `json:"age" binding:"min=0,max=120"`
	Major  string `json:"major" binding:"required,major"`
	Middle string `json:"middle"`
	Minor  string `json:"minor"`
	Career string `json:"career" binding:"max=2000"`
}

// DirectoryQuery represents directory filtering parameters
type DirectoryQuery struct {
	Major  string           `form:"major"`
	Middle string           `form:"middle"`
	Minor  string           `form:"minor"`
	Tier   models.TrustTier `form:"tier" binding:"omitempty,oneof=low medium high"`
	Limit  int              `form:"limit" binding:"omitempty,min=1,max=100"`
}

// RelationshipResponse tells the profile page which contact action applies
type RelationshipResponse struct {
	ChatID         string `json:"chatId,omitempty"`
	HasChat        bool   `json:"hasChat"`
	PendingSent    bool   `json:"pendingSent"`
	PendingRequest string `json:"pendingRequestId,omitempty"`
}
