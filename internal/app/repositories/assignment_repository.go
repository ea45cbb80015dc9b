package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/db"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
)

const assignmentSelect = `
	SELECT chat_id, title, content, steps, progress, is_completed, created_by, created_at, completed_at
	FROM chat_assignments`

// replaceAssignment fills an empty slot or overwrites a completed one. An
// active row is left untouched and no row is reported as affected.
const replaceAssignment = `
	INSERT INTO chat_assignments (chat_id, title, content, steps, progress, is_completed, created_by, created_at, completed_at)
	VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, NULL)
	ON CONFLICT (chat_id) DO UPDATE SET
		title = EXCLUDED.title,
		content = EXCLUDED.content,
		steps = EXCLUDED.steps,
		progress = EXCLUDED.progress,
		is_completed = FALSE,
		created_by = EXCLUDED.created_by,
		created_at = EXCLUDED.created_at,
		completed_at = NULL
	WHERE chat_assignments.is_completed`

// AssignmentRepository handles database operations for channel assignments
type AssignmentRepository struct {
	db *db.PostgresDB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(database *db.PostgresDB) *AssignmentRepository {
	return &AssignmentRepository{db: database}
}

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ChatID, &a.Title, &a.Content, &a.Steps, &a.Progress, &a.IsCompleted, &a.CreatedBy, &a.CreatedAt, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	return a.Normalize(), nil
}

// GetCurrent returns the assignment occupying the channel's slot
func (r *AssignmentRepository) GetCurrent(ctx context.Context, chatID string) (*models.Assignment, error) {
	a, err := scanAssignment(r.db.Pool.QueryRow(ctx, assignmentSelect+` WHERE chat_id = $1`, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return a, nil
}

// Replace overwrites the slot unless it holds an active assignment. The row
// lock covers an existing slot; for an empty slot the conditional upsert
// refuses to overwrite a row another creator inserted first.
func (r *AssignmentRepository) Replace(ctx context.Context, a *models.Assignment) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := scanAssignment(tx.QueryRow(ctx, assignmentSelect+` WHERE chat_id = $1 FOR UPDATE`, a.ChatID))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("error locking assignment: %w", err)
		}
		if current.Active() {
			return apperrors.ErrActiveAssignmentExists
		}

		steps := a.Steps
		if steps == nil {
			steps = []string{}
		}
		tag, err := tx.Exec(ctx, replaceAssignment,
			a.ChatID, a.Title, a.Content, steps, a.Progress, a.CreatedBy, a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error writing assignment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrActiveAssignmentExists
		}
		return nil
	})
}

// UpdateProgress stores a new progress value
func (r *AssignmentRepository) UpdateProgress(ctx context.Context, chatID string, progress int) (*models.Assignment, error) {
	a, err := scanAssignment(r.db.Pool.QueryRow(ctx, `
		UPDATE chat_assignments SET progress = $2 WHERE chat_id = $1
		RETURNING chat_id, title, content, steps, progress, is_completed, created_by, created_at, completed_at`,
		chatID, progress,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assignment for chat %s: %w", chatID, apperrors.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("error updating assignment progress: %w", err)
	}
	return a, nil
}

// Complete marks the assignment done. Completing twice keeps the first timestamp.
func (r *AssignmentRepository) Complete(ctx context.Context, chatID string, at time.Time) (*models.Assignment, error) {
	a, err := scanAssignment(r.db.Pool.QueryRow(ctx, `
		UPDATE chat_assignments
		SET is_completed = TRUE, completed_at = COALESCE(completed_at, $2)
		WHERE chat_id = $1
		RETURNING chat_id, title, content, steps, progress, is_completed, created_by, created_at, completed_at`,
		chatID, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assignment for chat %s: %w", chatID, apperrors.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("error completing assignment: %w", err)
	}
	return a, nil
}
