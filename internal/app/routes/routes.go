package routes

import (
	"github.com/dreamline/mentorlink/internal/app/controllers"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Request    *controllers.RequestController
	Chat       *controllers.ChatController
	Assignment *controllers.AssignmentController
	Rating     *controllers.RatingController
	Post       *controllers.PostController
	Category   *controllers.CategoryController
	Health     *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", c.Health.Health)
	v1.GET("/categories", c.Category.List)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	users := authenticated.Group("/users")
	{
		users.GET("/me", c.User.GetMe)
		users.PUT("/me", c.User.UpdateMe)
		users.GET("/:id", c.User.GetUser)
		users.GET("/:id/relationship", c.User.Relationship)
	}

	authenticated.GET("/students", c.User.SearchStudents)

	mentors := authenticated.Group("/mentors")
	{
		mentors.GET("", c.User.SearchMentors)
		mentors.POST("/:id/ratings", middleware.ValidateJSON[dto.RateMentorRequest](), c.Rating.Rate)
		mentors.GET("/:id/ratings/eligibility", c.Rating.Eligibility)
	}

	requests := authenticated.Group("/requests")
	{
		requests.POST("", c.Request.Create)
		requests.GET("/incoming", c.Request.ListIncoming)
		requests.GET("/outgoing", c.Request.ListOutgoing)
		requests.POST("/:id/accept", c.Request.Accept)
		requests.POST("/:id/reject", c.Request.Reject)
	}

	chats := authenticated.Group("/chats")
	{
		chats.GET("", c.Chat.ListChats)
		chats.GET("/:id", c.Chat.GetChat)
		chats.GET("/:id/messages", c.Chat.GetMessages)
		chats.POST("/:id/messages", c.Chat.SendMessage)
		chats.POST("/:id/messages/:messageId/read", c.Chat.MarkMessageRead)
		chats.POST("/:id/read", c.Chat.MarkChannelRead)
		chats.GET("/:id/ws", c.Chat.Stream)

		chats.GET("/:id/assignment", c.Assignment.GetCurrent)
		chats.POST("/:id/assignment", authMiddleware.RoleRequired(models.RoleMentor), c.Assignment.Create)
		chats.PUT("/:id/assignment/progress", c.Assignment.UpdateProgress)
		chats.POST("/:id/assignment/complete", c.Assignment.Complete)
	}

	posts := authenticated.Group("/posts")
	{
		posts.GET("", c.Post.ListPosts)
		posts.POST("", c.Post.CreatePost)
		posts.GET("/search", c.Post.SearchPosts)
		posts.GET("/:id", c.Post.GetPost)
		posts.POST("/:id/like", c.Post.ToggleLike)
		posts.GET("/:id/comments", c.Post.ListComments)
		posts.POST("/:id/comments", middleware.ValidateJSON[dto.CreateCommentRequest](), c.Post.AddComment)
	}
}
