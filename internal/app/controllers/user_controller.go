package controllers

import (
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/gin-gonic/gin"
)

// UserController handles profiles and the directory
type UserController struct {
	userService    services.UserService
	requestService services.RequestService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService, requestService services.RequestService) *UserController {
	return &UserController{
		userService:    userService,
		requestService: requestService,
	}
}

// GetMe returns the caller's own profile, including the email
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	identity := middleware.Identity(ctx)

	user, err := c.userService.GetProfile(ctx.Request.Context(), identity, identity.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// UpdateMe replaces the editable profile fields
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), middleware.Identity(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// GetUser returns another user's public profile
func (c *UserController) GetUser(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// Relationship tells the profile page whether to offer chat or a request
func (c *UserController) Relationship(ctx *gin.Context) {
	rel, err := c.requestService.RelationshipStatus(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rel))
}

// SearchMentors lists mentors in a category, optionally filtered by tier
// @Summary Search mentors
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Param major query string true "Major category"
// @Param middle query string false "Middle category"
// @Param minor query string false "Minor category"
// @Param tier query string false "Trust tier" Enums(low, medium, high)
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse}
// @Router /mentors [get]
func (c *UserController) SearchMentors(ctx *gin.Context) {
	var query dto.DirectoryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	users, err := c.userService.SearchMentors(ctx.Request.Context(), middleware.Identity(ctx), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}

// SearchStudents lists students, optionally within a category
func (c *UserController) SearchStudents(ctx *gin.Context) {
	var query dto.DirectoryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	users, err := c.userService.SearchStudents(ctx.Request.Context(), middleware.Identity(ctx), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}
