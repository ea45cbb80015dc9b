package repositories

import (
	"context"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/db"
)

// Lookups that find nothing return an error wrapping apperrors.ErrResourceNotFound,
// except the Find*/Get* methods documented as returning (nil, nil).
// Every entity handed out has been passed through its Normalize method.

// IUserRepository defines user persistence and directory search
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	Search(ctx context.Context, filter models.DirectoryFilter) ([]*models.User, error)
}

// IRequestRepository stores contact requests
type IRequestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	// FindPending returns (nil, nil) when no pending request exists for the ordered pair.
	FindPending(ctx context.Context, fromID, toID string) (*models.Request, error)
	// Transition moves a pending request to next. A request that is no longer
	// pending yields apperrors.ErrInvalidTransition.
	Transition(ctx context.Context, id string, next models.RequestStatus, at time.Time) (*models.Request, error)
	ListByRecipient(ctx context.Context, toID string, status models.RequestStatus) ([]*models.Request, error)
	ListBySender(ctx context.Context, fromID string) ([]*models.Request, error)
}

// IChatRepository stores channels
type IChatRepository interface {
	// Ensure creates the channel if absent and returns the stored one.
	Ensure(ctx context.Context, chat *models.Chat) (stored *models.Chat, created bool, err error)
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	ListByParticipant(ctx context.Context, userID string) ([]*models.Chat, error)
}

// IMessageRepository stores the per channel message log
type IMessageRepository interface {
	// Append assigns CreatedAt and Seq from the store's clock.
	Append(ctx context.Context, msg *models.ChatMessage) error
	GetByID(ctx context.Context, chatID, id string) (*models.ChatMessage, error)
	// ListByChat returns messages oldest first. limit <= 0 means all.
	ListByChat(ctx context.Context, chatID string, limit int) ([]*models.ChatMessage, error)
	// MarkRead reports whether the reader was newly added.
	MarkRead(ctx context.Context, chatID, messageID, readerID string) (bool, error)
	// MarkAllRead adds the reader to every message not sent by them and
	// returns the ids that changed.
	MarkAllRead(ctx context.Context, chatID, readerID string) ([]string, error)
	// Last returns (nil, nil) for an empty channel.
	Last(ctx context.Context, chatID string) (*models.ChatMessage, error)
	CountUnread(ctx context.Context, chatID, readerID string) (int, error)
}

// IAssignmentRepository stores each channel's current assignment
type IAssignmentRepository interface {
	// GetCurrent returns (nil, nil) when the slot is empty.
	GetCurrent(ctx context.Context, chatID string) (*models.Assignment, error)
	// Replace writes a into the slot unless the occupant is still active,
	// in which case it returns apperrors.ErrActiveAssignmentExists.
	Replace(ctx context.Context, a *models.Assignment) error
	UpdateProgress(ctx context.Context, chatID string, progress int) (*models.Assignment, error)
	Complete(ctx context.Context, chatID string, at time.Time) (*models.Assignment, error)
}

// RatingTx is the view of the store inside a rating transaction.
type RatingTx interface {
	// LockMentor loads the user row and holds it until the transaction ends.
	LockMentor(ctx context.Context, mentorID string) (*models.User, error)
	// FindRecord returns (nil, nil) when the rater never rated the mentor.
	FindRecord(ctx context.Context, mentorID, raterID string) (*models.RatingRecord, error)
	SaveSummary(ctx context.Context, mentorID string, summary models.RatingSummary) error
	UpsertRecord(ctx context.Context, rec *models.RatingRecord) error
}

// IRatingRepository stores per rater records and runs rating transactions
type IRatingRepository interface {
	FindRecord(ctx context.Context, mentorID, raterID string) (*models.RatingRecord, error)
	// RunInTx commits when fn returns nil and discards every write otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx RatingTx) error) error
}

// IPostRepository stores board posts and comments
type IPostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns newest first together with the total matching count.
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, int64, error)
	// Recent returns up to limit newest posts, optionally within a major.
	Recent(ctx context.Context, major string, limit int) ([]*models.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID string) ([]*models.Comment, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users       IUserRepository
	Requests    IRequestRepository
	Chats       IChatRepository
	Messages    IMessageRepository
	Assignments IAssignmentRepository
	Ratings     IRatingRepository
	Posts       IPostRepository
}

// NewRepositories wires the PostgreSQL implementations
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database.Pool),
		Requests:    NewRequestRepository(database.Pool),
		Chats:       NewChatRepository(database.Pool),
		Messages:    NewMessageRepository(database.Pool),
		Assignments: NewAssignmentRepository(database),
		Ratings:     NewRatingRepository(database),
		Posts:       NewPostRepository(database.Pool),
	}
}
