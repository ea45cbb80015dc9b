package services

import (
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/activity"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/auth"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// Services defined in this package:
// - AuthService: registration and login
// - UserService: profiles and the mentor/student directory
// - RequestService: contact requests and relationship status
// - ChatService: channels, messages, read receipts and subscriptions
// - AssignmentService: the current assignment of a channel
// - RatingService: mentor ratings with a per rater cooldown
// - PostService: the board, likes and comments
type Services struct {
	Auth        AuthService
	Users       UserService
	Requests    RequestService
	Chats       ChatService
	Assignments AssignmentService
	Ratings     RatingService
	Posts       PostService
}

// Deps are the collaborators shared by the services
type Deps struct {
	Repos    *repositories.Repositories
	JWT      *auth.JWTService
	Storage  filestorage.FileStorage
	Hub      *websocket.Hub
	Activity activity.Publisher

	// Location decides calendar dates of chat timelines
	Location       *time.Location
	RatingCooldown time.Duration

	Logger zerolog.Logger
	// Now defaults to time.Now in UTC
	Now func() time.Time
}

// NewServices builds every service over deps
func NewServices(deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Activity == nil {
		deps.Activity = activity.Nop{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.RatingCooldown <= 0 {
		deps.RatingCooldown = models.DefaultRatingCooldown
	}

	component := func(name string) zerolog.Logger {
		return deps.Logger.With().Str("service", name).Logger()
	}

	chats := NewChatService(deps.Repos, deps.Storage, deps.Hub, deps.Location, component("chat"), deps.Now)
	return &Services{
		Auth:        NewAuthService(deps.Repos.Users, deps.JWT, component("auth")),
		Users:       NewUserService(deps.Repos.Users, component("user")),
		Requests:    NewRequestService(deps.Repos, deps.Activity, component("request"), deps.Now),
		Chats:       chats,
		Assignments: NewAssignmentService(deps.Repos, chats, deps.Activity, component("assignment"), deps.Now),
		Ratings:     NewRatingService(deps.Repos, deps.RatingCooldown, deps.Activity, component("rating"), deps.Now),
		Posts:       NewPostService(deps.Repos, deps.Storage, component("post"), deps.Now),
	}
}

func requireIdentity(identity models.Identity) error {
	if !identity.Authenticated() {
		return apperrors.NewUnauthenticatedError()
	}
	return nil
}

// publishActivity never fails the calling workflow
func publishActivity(pub activity.Publisher, logger zerolog.Logger, evt activity.Event) {
	if err := pub.Publish(evt); err != nil {
		logger.Warn().Err(err).Str("type", evt.Type).Str("subjectID", evt.SubjectID).Msg("Failed to publish activity event")
	}
}
