package models

import "time"

// RequestStatus is the lifecycle state of a contact request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	return s == RequestPending || s.Terminal()
}

// CanTransition reports whether s may move to next. Only pending requests
// move, and only to a terminal state.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return s == RequestPending && next.Terminal()
}

// Request is a directed proposal from one user to another to open a channel.
type Request struct {
	ID        string        `json:"id"`
	FromID    string        `json:"from"`
	ToID      string        `json:"to"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	DecidedAt *time.Time    `json:"decidedAt,omitempty"`

	// Populated for listings
	From *User `json:"fromUser,omitempty"`
	To   *User `json:"toUser,omitempty"`
}

// Normalize fills defaults once after retrieval.
func (r *Request) Normalize() *Request {
	if r == nil {
		return nil
	}
	if !r.Status.Valid() {
		r.Status = RequestPending
	}
	return r
}
