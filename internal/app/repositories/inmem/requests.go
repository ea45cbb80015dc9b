package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
)

type RequestRepository struct {
	db *DB
}

func copyRequest(req *models.Request) *models.Request {
	c := *req
	c.DecidedAt = copyTime(req.DecidedAt)
	c.From, c.To = nil, nil
	return c.Normalize()
}

func (r *RequestRepository) Create(_ context.Context, req *models.Request) error {
	tbl := r.db.requests
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, taken := tbl.t[req.ID]; taken {
		return apperrors.ErrResourceAlreadyExists
	}
	req.CreatedAt = r.db.clock()
	tbl.t[req.ID] = copyRequest(req)
	return nil
}

func (r *RequestRepository) GetByID(_ context.Context, id string) (*models.Request, error) {
	tbl := r.db.requests
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if req, ok := tbl.t[id]; ok {
		return copyRequest(req), nil
	}
	return nil, notFound("request", id)
}

func (r *RequestRepository) FindPending(_ context.Context, fromID, toID string) (*models.Request, error) {
	tbl := r.db.requests
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	for _, req := range tbl.t {
		if req.FromID == fromID && req.ToID == toID && req.Status == models.RequestPending {
			return copyRequest(req), nil
		}
	}
	return nil, nil
}

func (r *RequestRepository) Transition(_ context.Context, id string, next models.RequestStatus, at time.Time) (*models.Request, error) {
	tbl := r.db.requests
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	req, ok := tbl.t[id]
	if !ok {
		return nil, notFound("request", id)
	}
	if !req.Status.CanTransition(next) {
		return nil, apperrors.NewInvalidTransitionError(string(req.Status), string(next))
	}
	req.Status = next
	req.DecidedAt = copyTime(&at)
	return copyRequest(req), nil
}

func (r *RequestRepository) ListByRecipient(_ context.Context, toID string, status models.RequestStatus) ([]*models.Request, error) {
	return r.list(func(req *models.Request) bool {
		return req.ToID == toID && (status == "" || req.Status == status)
	}), nil
}

func (r *RequestRepository) ListBySender(_ context.Context, fromID string) ([]*models.Request, error) {
	return r.list(func(req *models.Request) bool {
		return req.FromID == fromID
	}), nil
}

func (r *RequestRepository) list(match func(*models.Request) bool) []*models.Request {
	tbl := r.db.requests
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	out := make([]*models.Request, 0)
	for _, req := range tbl.t {
		if match(req) {
			out = append(out, copyRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
