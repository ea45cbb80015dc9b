// Package inmem keeps every repository in process memory. It backs local
// development (DB_USE_IN_MEMORY=true) and the service tests.
package inmem

import (
	"fmt"
	"sync"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
)

type (
	DB struct {
		users       *userTable
		requests    *requestTable
		chats       *chatTable
		messages    *messageTable
		assignments *assignmentTable
		ratings     *ratingTable
		posts       *postTable

		clockMu sync.RWMutex
		now     func() time.Time
	}

	userTable struct {
		t       map[string]*models.User
		byEmail map[string]string
		mutex   sync.RWMutex
	}

	requestTable struct {
		t     map[string]*models.Request
		mutex sync.RWMutex
	}

	chatTable struct {
		t     map[string]*models.Chat
		mutex sync.RWMutex
	}

	messageTable struct {
		t     map[string][]*models.ChatMessage // by chat id, append order
		seq   int64
		mutex sync.RWMutex
	}

	assignmentTable struct {
		t     map[string]*models.Assignment
		mutex sync.RWMutex
	}

	ratingTable struct {
		t     map[string]*models.RatingRecord // by mentor|rater
		mutex sync.RWMutex
		// txMu serializes rating transactions end to end
		txMu sync.Mutex
	}

	postTable struct {
		t          map[string]*models.Post
		comments   map[string][]*models.Comment
		commentSeq int64
		mutex      sync.RWMutex
	}
)

// Open creates an empty store.
func Open() (*DB, error) {
	db := &DB{
		users:       &userTable{t: make(map[string]*models.User), byEmail: make(map[string]string)},
		requests:    &requestTable{t: make(map[string]*models.Request)},
		chats:       &chatTable{t: make(map[string]*models.Chat)},
		messages:    &messageTable{t: make(map[string][]*models.ChatMessage)},
		assignments: &assignmentTable{t: make(map[string]*models.Assignment)},
		ratings:     &ratingTable{t: make(map[string]*models.RatingRecord)},
		posts:       &postTable{t: make(map[string]*models.Post), comments: make(map[string][]*models.Comment)},
		now:         time.Now,
	}
	return db, nil
}

// SetClock replaces the clock used for store assigned timestamps.
func (db *DB) SetClock(now func() time.Time) {
	db.clockMu.Lock()
	defer db.clockMu.Unlock()
	db.now = now
}

func (db *DB) clock() time.Time {
	db.clockMu.RLock()
	defer db.clockMu.RUnlock()
	return db.now().UTC()
}

// Repositories exposes the store through the repository interfaces.
func (db *DB) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:       &UserRepository{db: db},
		Requests:    &RequestRepository{db: db},
		Chats:       &ChatRepository{db: db},
		Messages:    &MessageRepository{db: db},
		Assignments: &AssignmentRepository{db: db},
		Ratings:     &RatingRepository{db: db},
		Posts:       &PostRepository{db: db},
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrResourceNotFound)
}

func userNotFound() error {
	return fmt.Errorf("%w: %w", apperrors.ErrUserNotFound, apperrors.ErrResourceNotFound)
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
