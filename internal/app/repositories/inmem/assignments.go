package inmem

import (
	"context"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
)

type AssignmentRepository struct {
	db *DB
}

func copyAssignment(a *models.Assignment) *models.Assignment {
	c := *a
	c.Steps = copyStrings(a.Steps)
	c.CompletedAt = copyTime(a.CompletedAt)
	return &c
}

func (r *AssignmentRepository) GetCurrent(_ context.Context, chatID string) (*models.Assignment, error) {
	tbl := r.db.assignments
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if a, ok := tbl.t[chatID]; ok {
		return copyAssignment(a), nil
	}
	return nil, nil
}

func (r *AssignmentRepository) Replace(_ context.Context, a *models.Assignment) error {
	tbl := r.db.assignments
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if tbl.t[a.ChatID].Active() {
		return apperrors.ErrActiveAssignmentExists
	}
	stored := copyAssignment(a)
	stored.IsCompleted = false
	stored.CompletedAt = nil
	tbl.t[a.ChatID] = stored
	return nil
}

func (r *AssignmentRepository) UpdateProgress(_ context.Context, chatID string, progress int) (*models.Assignment, error) {
	tbl := r.db.assignments
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	a, ok := tbl.t[chatID]
	if !ok {
		return nil, notFound("assignment for chat", chatID)
	}
	a.Progress = progress
	return copyAssignment(a), nil
}

func (r *AssignmentRepository) Complete(_ context.Context, chatID string, at time.Time) (*models.Assignment, error) {
	tbl := r.db.assignments
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	a, ok := tbl.t[chatID]
	if !ok {
		return nil, notFound("assignment for chat", chatID)
	}
	if !a.IsCompleted {
		a.IsCompleted = true
		a.CompletedAt = copyTime(&at)
	}
	return copyAssignment(a), nil
}
