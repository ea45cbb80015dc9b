package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var requestColumns = []string{"id", "from_id", "to_id", "status", "created_at", "decided_at"}

// RequestRepository handles database operations for contact requests
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	var status string
	if err := row.Scan(&req.ID, &req.FromID, &req.ToID, &status, &req.CreatedAt, &req.DecidedAt); err != nil {
		return nil, err
	}
	req.Status = models.RequestStatus(status)
	return req.Normalize(), nil
}

// Create inserts a new request
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO requests (id, from_id, to_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		req.ID, req.FromID, req.ToID, string(req.Status),
	).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	sql, args, err := squirrel.Select(requestColumns...).
		From("requests").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	req, err := scanRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", id, apperrors.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("error retrieving request: %w", err)
	}
	return req, nil
}

// FindPending returns the pending request for the ordered pair, if any
func (r *RequestRepository) FindPending(ctx context.Context, fromID, toID string) (*models.Request, error) {
	sql, args, err := squirrel.Select(requestColumns...).
		From("requests").
		Where(squirrel.Eq{"from_id": fromID, "to_id": toID, "status": string(models.RequestPending)}).
		OrderBy("created_at").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	req, err := scanRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving pending request: %w", err)
	}
	return req, nil
}

// Transition moves a pending request to a terminal status. The status
// guard in the WHERE clause keeps terminal requests terminal under
// concurrent decisions.
func (r *RequestRepository) Transition(ctx context.Context, id string, next models.RequestStatus, at time.Time) (*models.Request, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE requests
		SET status = $2, decided_at = $3
		WHERE id = $1 AND status = $4
		RETURNING id, from_id, to_id, status, created_at, decided_at`,
		id, string(next), at, string(models.RequestPending),
	)

	req, err := scanRequest(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error updating request: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.NewInvalidTransitionError(string(current.Status), string(next))
}

// ListByRecipient lists requests addressed to a user, newest first.
// An empty status lists every status.
func (r *RequestRepository) ListByRecipient(ctx context.Context, toID string, status models.RequestStatus) ([]*models.Request, error) {
	where := squirrel.Eq{"to_id": toID}
	if status != "" {
		where["status"] = string(status)
	}
	return r.list(ctx, where)
}

// ListBySender lists requests sent by a user, newest first
func (r *RequestRepository) ListBySender(ctx context.Context, fromID string) ([]*models.Request, error) {
	return r.list(ctx, squirrel.Eq{"from_id": fromID})
}

func (r *RequestRepository) list(ctx context.Context, where squirrel.Eq) ([]*models.Request, error) {
	sql, args, err := squirrel.Select(requestColumns...).
		From("requests").
		Where(where).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	reqs := make([]*models.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning request row: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
