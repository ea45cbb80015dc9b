package dto

import (
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
)

// CreateAssignmentRequest is a mentor's new task for the channel
type CreateAssignmentRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"max=4000"`
	Steps   []string `json:"steps" binding:"max=50"`
}

// UpdateProgressRequest sets the display counter of the current assignment
type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// RateMentorRequest carries a single 1 to 5 rating
type RateMentorRequest struct {
	Value int `json:"value" binding:"required,min=1,max=5"`
}

// RatingResponse is the mentor's summary after a rating
type RatingResponse struct {
	MentorID string               `json:"mentorId"`
	Summary  models.RatingSummary `json:"summary"`
	Next     time.Time            `json:"nextAllowedAt"`
}

// EligibilityResponse tells the rater whether a rating would be accepted now
type EligibilityResponse struct {
	CanRate       bool       `json:"canRate"`
	NextAllowedAt *time.Time `json:"nextAllowedAt,omitempty"`
	DaysRemaining int        `json:"daysRemaining,omitempty"`
	LastValue     int        `json:"lastValue,omitempty"`
}

// CreatePostRequest is a new board entry. Images come as multipart "image".
type CreatePostRequest struct {
	Major   string `json:"major" form:"major" binding:"required,major"`
	Middle  string `json:"middle" form:"middle"`
	Minor   string `json:"minor" form:"minor"`
	Title   string `json:"title" form:"title" binding:"required,max=200"`
	Content string `json:"content" form:"content" binding:"max=10000"`
}

// PostListQuery represents board listing parameters
type PostListQuery struct {
	Category models.PostCategory `form:"category" binding:"omitempty,oneof=mentor_news question"`
	Major    string              `form:"major"`
}

// PostSearchQuery represents board search parameters
type PostSearchQuery struct {
	Keyword string `form:"q" binding:"required"`
	Major   string `form:"major"`
}

// PostResponse is a board entry with the viewer's like state
type PostResponse struct {
	*models.Post
	LikeCount int  `json:"likeCount"`
	Liked     bool `json:"liked"`
}

// ToPostResponse maps a post for viewerID
func ToPostResponse(p *models.Post, viewerID string) PostResponse {
	return PostResponse{Post: p, LikeCount: len(p.Likes), Liked: p.LikedBy(viewerID)}
}

// ToPostResponses maps a list of posts for viewerID
func ToPostResponses(posts []*models.Post, viewerID string) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, ToPostResponse(p, viewerID))
	}
	return out
}

// LikeResponse is the like state after a toggle
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// CreateCommentRequest is a comment on a post
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}
