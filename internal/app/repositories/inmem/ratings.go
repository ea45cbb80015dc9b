package inmem

import (
	"context"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/repositories"
)

type RatingRepository struct {
	db *DB
}

func ratingKey(mentorID, raterID string) string {
	return mentorID + "|" + raterID
}

func (r *RatingRepository) FindRecord(_ context.Context, mentorID, raterID string) (*models.RatingRecord, error) {
	tbl := r.db.ratings
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if rec, ok := tbl.t[ratingKey(mentorID, raterID)]; ok {
		c := *rec
		return &c, nil
	}
	return nil, nil
}

// RunInTx stages every write and applies them only when fn succeeds.
// Rating transactions run one at a time.
func (r *RatingRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repositories.RatingTx) error) error {
	r.db.ratings.txMu.Lock()
	defer r.db.ratings.txMu.Unlock()

	tx := &ratingTx{
		repo:      r,
		summaries: make(map[string]models.RatingSummary),
		records:   make(map[string]*models.RatingRecord),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type ratingTx struct {
	repo      *RatingRepository
	summaries map[string]models.RatingSummary
	records   map[string]*models.RatingRecord
}

func (t *ratingTx) LockMentor(ctx context.Context, mentorID string) (*models.User, error) {
	u, err := (&UserRepository{db: t.repo.db}).GetByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if s, ok := t.summaries[mentorID]; ok {
		u.Rating = s
	}
	return u, nil
}

func (t *ratingTx) FindRecord(ctx context.Context, mentorID, raterID string) (*models.RatingRecord, error) {
	if rec, ok := t.records[ratingKey(mentorID, raterID)]; ok {
		c := *rec
		return &c, nil
	}
	return t.repo.FindRecord(ctx, mentorID, raterID)
}

func (t *ratingTx) SaveSummary(_ context.Context, mentorID string, summary models.RatingSummary) error {
	users := t.repo.db.users
	users.mutex.RLock()
	_, ok := users.t[mentorID]
	users.mutex.RUnlock()
	if !ok {
		return userNotFound()
	}
	t.summaries[mentorID] = summary
	return nil
}

func (t *ratingTx) UpsertRecord(_ context.Context, rec *models.RatingRecord) error {
	c := *rec
	t.records[ratingKey(rec.MentorID, rec.RaterID)] = &c
	return nil
}

func (t *ratingTx) commit() {
	db := t.repo.db

	db.users.mutex.Lock()
	now := db.clock()
	for id, s := range t.summaries {
		if u, ok := db.users.t[id]; ok {
			u.Rating = s
			u.UpdatedAt = now
		}
	}
	db.users.mutex.Unlock()

	db.ratings.mutex.Lock()
	for key, rec := range t.records {
		db.ratings.t[key] = rec
	}
	db.ratings.mutex.Unlock()
}
