package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
)

type UserRepository struct {
	db *DB
}

func copyUser(u *models.User) *models.User {
	c := *u
	return c.Normalize()
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	tbl := r.db.users
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, taken := tbl.byEmail[email]; taken {
		return apperrors.ErrEmailAlreadyExists
	}
	if _, taken := tbl.t[user.ID]; taken {
		return apperrors.ErrResourceAlreadyExists
	}

	now := r.db.clock()
	user.Email = email
	user.CreatedAt, user.UpdatedAt = now, now
	tbl.t[user.ID] = copyUser(user)
	tbl.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	tbl := r.db.users
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if u, ok := tbl.t[id]; ok {
		return copyUser(u), nil
	}
	return nil, userNotFound()
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	tbl := r.db.users
	tbl.mutex.RLock()
	id, ok := tbl.byEmail[strings.ToLower(strings.TrimSpace(email))]
	tbl.mutex.RUnlock()
	if !ok {
		return nil, userNotFound()
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	tbl := r.db.users
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := tbl.t[id]; ok {
			out[id] = copyUser(u)
		}
	}
	return out, nil
}

// UpdateProfile only touches the editable fields; the rating summary is
// owned by rating transactions.
func (r *UserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	tbl := r.db.users
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	stored, ok := tbl.t[user.ID]
	if !ok {
		return userNotFound()
	}
	stored.Name = user.Name
	stored.Age = user.Age
	stored.Category = user.Category
	stored.Career = user.Career
	stored.UpdatedAt = r.db.clock()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *UserRepository) Search(_ context.Context, filter models.DirectoryFilter) ([]*models.User, error) {
	tbl := r.db.users
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	out := make([]*models.User, 0)
	for _, u := range tbl.t {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Category.Major != "" && u.Category.Major != filter.Category.Major {
			continue
		}
		if filter.Category.Middle != "" && u.Category.Middle != filter.Category.Middle {
			continue
		}
		if filter.Category.Minor != "" && u.Category.Minor != filter.Category.Minor {
			continue
		}
		if filter.Tier != "" && u.Rating.Tier != filter.Tier {
			continue
		}
		out = append(out, copyUser(u))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
