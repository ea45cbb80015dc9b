package inmem

import (
	"context"
	"sort"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
)

type PostRepository struct {
	db *DB
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.Likes = copyStrings(p.Likes)
	return c.Normalize()
}

func (r *PostRepository) Create(_ context.Context, post *models.Post) error {
	users := r.db.users
	users.mutex.RLock()
	_, ok := users.t[post.AuthorID]
	users.mutex.RUnlock()
	if !ok {
		return userNotFound()
	}

	tbl := r.db.posts
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, taken := tbl.t[post.ID]; taken {
		return apperrors.ErrResourceAlreadyExists
	}
	post.Normalize()
	tbl.t[post.ID] = copyPost(post)
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	tbl := r.db.posts
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if p, ok := tbl.t[id]; ok {
		return copyPost(p), nil
	}
	return nil, notFound("post", id)
}

func (r *PostRepository) List(_ context.Context, filter models.PostFilter) ([]*models.Post, int64, error) {
	tbl := r.db.posts
	tbl.mutex.RLock()
	matched := make([]*models.Post, 0)
	for _, p := range tbl.t {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Major != "" && p.Topic.Major != filter.Major {
			continue
		}
		matched = append(matched, copyPost(p))
	}
	tbl.mutex.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := int(filter.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (r *PostRepository) Recent(ctx context.Context, major string, limit int) ([]*models.Post, error) {
	posts, _, err := r.List(ctx, models.PostFilter{Major: major, Limit: limit})
	return posts, err
}

func (r *PostRepository) ToggleLike(_ context.Context, postID, userID string) (*models.Post, error) {
	tbl := r.db.posts
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	p, ok := tbl.t[postID]
	if !ok {
		return nil, notFound("post", postID)
	}
	if p.LikedBy(userID) {
		likes := make([]string, 0, len(p.Likes))
		for _, id := range p.Likes {
			if id != userID {
				likes = append(likes, id)
			}
		}
		p.Likes = likes
	} else {
		p.Likes = append(p.Likes, userID)
	}
	return copyPost(p), nil
}

func (r *PostRepository) AddComment(_ context.Context, c *models.Comment) error {
	tbl := r.db.posts
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, ok := tbl.t[c.PostID]; !ok {
		return notFound("post", c.PostID)
	}
	tbl.commentSeq++
	c.Seq = tbl.commentSeq
	stored := *c
	tbl.comments[c.PostID] = append(tbl.comments[c.PostID], &stored)
	return nil
}

func (r *PostRepository) ListComments(_ context.Context, postID string) ([]*models.Comment, error) {
	tbl := r.db.posts
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	out := make([]*models.Comment, 0, len(tbl.comments[postID]))
	for _, c := range tbl.comments[postID] {
		cc := *c
		out = append(out, &cc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
