package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/db"
	"github.com/jackc/pgx/v5"
)

const ratingRecordSelect = `
	SELECT mentor_id, rater_id, last_value, last_rated_at
	FROM mentor_ratings
	WHERE mentor_id = $1 AND rater_id = $2`

// querier is the subset shared by the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RatingRepository handles mentor rating records and summaries
type RatingRepository struct {
	db *db.PostgresDB
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(database *db.PostgresDB) *RatingRepository {
	return &RatingRepository{db: database}
}

func findRecord(ctx context.Context, q querier, mentorID, raterID string) (*models.RatingRecord, error) {
	var rec models.RatingRecord
	err := q.QueryRow(ctx, ratingRecordSelect, mentorID, raterID).
		Scan(&rec.MentorID, &rec.RaterID, &rec.LastValue, &rec.LastRatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving rating record: %w", err)
	}
	return &rec, nil
}

// FindRecord reads the last rating of raterID for mentorID outside any transaction
func (r *RatingRepository) FindRecord(ctx context.Context, mentorID, raterID string) (*models.RatingRecord, error) {
	return findRecord(ctx, r.db.Pool, mentorID, raterID)
}

// RunInTx runs fn inside a database transaction
func (r *RatingRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx RatingTx) error) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgRatingTx{tx: tx})
	})
}

type pgRatingTx struct {
	tx pgx.Tx
}

// LockMentor takes a row lock on the mentor so concurrent ratings serialize
func (t *pgRatingTx) LockMentor(ctx context.Context, mentorID string) (*models.User, error) {
	sql, args, err := squirrel.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": mentorID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(t.tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundUser()
		}
		return nil, fmt.Errorf("error locking mentor: %w", err)
	}
	return user, nil
}

func (t *pgRatingTx) FindRecord(ctx context.Context, mentorID, raterID string) (*models.RatingRecord, error) {
	return findRecord(ctx, t.tx, mentorID, raterID)
}

func (t *pgRatingTx) SaveSummary(ctx context.Context, mentorID string, s models.RatingSummary) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE users
		SET rating_sum = $2, rating_count = $3, rating_avg = $4, trust_tier = $5, trust_score = $6, updated_at = NOW()
		WHERE id = $1`,
		mentorID, s.Sum, s.Count, s.Avg, string(s.Tier), s.TrustScore,
	)
	if err != nil {
		return fmt.Errorf("error saving rating summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundUser()
	}
	return nil
}

func (t *pgRatingTx) UpsertRecord(ctx context.Context, rec *models.RatingRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO mentor_ratings (mentor_id, rater_id, last_value, last_rated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mentor_id, rater_id) DO UPDATE SET
			last_value = EXCLUDED.last_value,
			last_rated_at = EXCLUDED.last_rated_at`,
		rec.MentorID, rec.RaterID, rec.LastValue, rec.LastRatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving rating record: %w", err)
	}
	return nil
}
