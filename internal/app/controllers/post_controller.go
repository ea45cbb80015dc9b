package controllers

import (
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/dreamline/mentorlink/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// PostController handles the board
type PostController struct {
	postService services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService) *PostController {
	return &PostController{postService: postService}
}

// CreatePost publishes a post. Multipart requests may carry an image.
// @Summary Create a board post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post"
// @Param image formData file false "Image attachment"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	var req dto.CreatePostRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	var upload *services.Upload
	if isMultipart(ctx) {
		var done func()
		var err error
		upload, done, err = formImage(ctx)
		if err != nil {
			middleware.HandleBindingError(ctx, err)
			return
		}
		defer done()
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), middleware.Identity(ctx), &req, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// ListPosts pages through the board
// @Summary List board posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param category query string false "Board tab" Enums(mentor_news, question)
// @Param major query string false "Major category"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	var query dto.PostListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	posts, err := c.postService.ListPosts(ctx.Request.Context(), middleware.Identity(ctx), &query, helpers.PageFromQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// SearchPosts matches a keyword against recent post titles
func (c *PostController) SearchPosts(ctx *gin.Context) {
	var query dto.PostSearchQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	posts, err := c.postService.SearchPosts(ctx.Request.Context(), middleware.Identity(ctx), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// GetPost returns one post
func (c *PostController) GetPost(ctx *gin.Context) {
	post, err := c.postService.GetPost(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// ToggleLike likes or unlikes a post
func (c *PostController) ToggleLike(ctx *gin.Context) {
	resp, err := c.postService.ToggleLike(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// AddComment comments on a post. The body is bound by middleware.ValidateJSON.
func (c *PostController) AddComment(ctx *gin.Context) {
	req, ok := middleware.ValidatedBody[dto.CreateCommentRequest](ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	comment, err := c.postService.AddComment(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"), req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// ListComments returns a post's comments oldest first
func (c *PostController) ListComments(ctx *gin.Context) {
	comments, err := c.postService.ListComments(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comments))
}
