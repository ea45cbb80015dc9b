package controllers

import (
	"context"
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ChatController handles channel operations
type ChatController struct {
	chatService services.ChatService
	wsHandler   *websocket.Handler
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService, wsHandler *websocket.Handler, logger zerolog.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		wsHandler:   wsHandler,
		logger:      logger,
	}
}

// ListChats returns the caller's channels, most recent activity first
// @Summary List own chats
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ChatSummaryResponse}
// @Router /chats [get]
func (c *ChatController) ListChats(ctx *gin.Context) {
	chats, err := c.chatService.ListChats(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chats))
}

// GetChat returns one channel with its unread count
func (c *ChatController) GetChat(ctx *gin.Context) {
	chat, err := c.chatService.GetChat(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat))
}

// GetMessages returns the message log with date markers and read receipt
// @Summary Get chat messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat ID"
// @Param limit query int false "Maximum number of newest messages" default(200)
// @Success 200 {object} dto.APIResponse{data=dto.ChatMessageListResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chats/{id}/messages [get]
func (c *ChatController) GetMessages(ctx *gin.Context) {
	var query dto.GetChatMessagesRequest
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	messages, err := c.chatService.ListMessages(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"), query.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// SendMessage sends a text message, or an image with an optional caption
// when the request is multipart.
// @Summary Send a chat message
// @Tags chat
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat ID"
// @Param request body dto.SendMessageRequest false "Text message"
// @Param image formData file false "Image attachment"
// @Success 201 {object} dto.APIResponse{data=models.ChatMessage}
// @Router /chats/{id}/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	identity := middleware.Identity(ctx)
	chatID := ctx.Param("id")

	var req dto.SendMessageRequest
	if !isMultipart(ctx) {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindingError(ctx, err)
			return
		}

		message, err := c.chatService.Send(ctx.Request.Context(), identity, chatID, services.MessageInput{Text: req.Text})
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
		return
	}

	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	upload, done, err := formImage(ctx)
	if err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	defer done()

	var message *models.ChatMessage
	if upload == nil {
		message, err = c.chatService.Send(ctx.Request.Context(), identity, chatID, services.MessageInput{Text: req.Text})
	} else {
		message, err = c.chatService.SendImage(ctx.Request.Context(), identity, chatID, upload, req.Text)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
}

// MarkMessageRead marks a single message as read by the caller
func (c *ChatController) MarkMessageRead(ctx *gin.Context) {
	changed, err := c.chatService.MarkRead(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"), ctx.Param("messageId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"updated": changed}))
}

// MarkChannelRead marks everything the other participant sent as read
func (c *ChatController) MarkChannelRead(ctx *gin.Context) {
	resp, err := c.chatService.MarkChannelRead(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Stream upgrades to a websocket carrying the channel's live events. The
// subscription is opened before the upgrade so nothing published after
// authorization is missed.
func (c *ChatController) Stream(ctx *gin.Context) {
	identity := middleware.Identity(ctx)
	chatID := ctx.Param("id")

	sub, err := c.chatService.Subscribe(ctx.Request.Context(), identity, chatID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	frames := websocket.NewMessageHandler(
		func(rctx context.Context, text string) error {
			_, err := c.chatService.Send(rctx, identity, chatID, services.MessageInput{Text: text})
			return err
		},
		func(rctx context.Context, messageID string) error {
			_, err := c.chatService.MarkRead(rctx, identity, chatID, messageID)
			return err
		},
		c.logger,
	)

	// On failure the upgrader has already answered the request
	_ = c.wsHandler.Serve(ctx, sub, identity.UserID, frames.Handle)
}
