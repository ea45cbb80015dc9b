package controllers

import (
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AssignmentController handles the assignment slot of a channel
type AssignmentController struct {
	assignmentService services.AssignmentService
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// GetCurrent returns the channel's assignment. Data is null when the
// mentor has not created one yet.
func (c *AssignmentController) GetCurrent(ctx *gin.Context) {
	a, err := c.assignmentService.GetCurrent(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(a))
}

// Create puts a new assignment in the channel
// @Summary Create an assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat ID"
// @Param request body dto.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=models.Assignment}
// @Failure 403 {object} dto.ErrorResponse "Only mentors can create assignments"
// @Failure 409 {object} dto.ErrorResponse "An active assignment already exists"
// @Router /chats/{id}/assignment [post]
func (c *AssignmentController) Create(ctx *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	a, err := c.assignmentService.Create(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(a))
}

// UpdateProgress sets the progress counter
func (c *AssignmentController) UpdateProgress(ctx *gin.Context) {
	var req dto.UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	a, err := c.assignmentService.UpdateProgress(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"), *req.Progress)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(a))
}

// Complete marks the assignment completed
func (c *AssignmentController) Complete(ctx *gin.Context) {
	a, err := c.assignmentService.Complete(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(a))
}
