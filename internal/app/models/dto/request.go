package dto

import (
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
)

// CreateContactRequest asks another user to open a channel
type CreateContactRequest struct {
	To string `json:"to" binding:"required"`
}

// ContactRequestResponse is a request together with both parties' profiles
type ContactRequestResponse struct {
	ID        string               `json:"id"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Status    models.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	DecidedAt *time.Time           `json:"decidedAt,omitempty"`
	FromUser  *UserResponse        `json:"fromUser,omitempty"`
	ToUser    *UserResponse        `json:"toUser,omitempty"`
}

// ToContactRequestResponse maps a request
func ToContactRequestResponse(r *models.Request) *ContactRequestResponse {
	return &ContactRequestResponse{
		ID:        r.ID,
		From:      r.FromID,
		To:        r.ToID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		DecidedAt: r.DecidedAt,
		FromUser:  ToUserResponse(r.From, false),
		ToUser:    ToUserResponse(r.To, false),
	}
}

// ToContactRequestResponses maps a list of requests
func ToContactRequestResponses(reqs []*models.Request) []*ContactRequestResponse {
	out := make([]*ContactRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ToContactRequestResponse(r))
	}
	return out
}

// AcceptRequestResponse is returned when a request is accepted
type AcceptRequestResponse struct {
	Request *ContactRequestResponse `json:"request"`
	Chat    *models.Chat            `json:"chat"`
}
