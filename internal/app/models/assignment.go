package models

import (
	"strings"
	"time"
)

// Assignment is the mentor issued task in a channel's single "current" slot.
type Assignment struct {
	ChatID      string     `json:"chatId"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Steps       []string   `json:"steps"`
	Progress    int        `json:"progress"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Active reports whether the assignment blocks creation of a new one.
func (a *Assignment) Active() bool {
	return a != nil && !a.IsCompleted
}

// CleanSteps trims every step and drops the empty ones.
func CleanSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Normalize fills defaults once after retrieval.
func (a *Assignment) Normalize() *Assignment {
	if a == nil {
		return nil
	}
	a.Title = strings.TrimSpace(a.Title)
	a.Steps = CleanSteps(a.Steps)
	return a
}
