package controllers

import (
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RatingController handles mentor ratings
type RatingController struct {
	ratingService services.RatingService
}

// NewRatingController creates a new RatingController
func NewRatingController(ratingService services.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

// Rate records a rating. The body is bound by middleware.ValidateJSON.
// @Summary Rate a mentor
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentor ID"
// @Param request body dto.RateMentorRequest true "Rating between 1 and 5"
// @Success 200 {object} dto.APIResponse{data=dto.RatingResponse}
// @Failure 409 {object} dto.ErrorResponse "Cooldown active, details carry nextAllowedAt"
// @Router /mentors/{id}/ratings [post]
func (c *RatingController) Rate(ctx *gin.Context) {
	req, ok := middleware.ValidatedBody[dto.RateMentorRequest](ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.ratingService.Rate(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"), req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Eligibility reports whether the caller may rate the mentor now
func (c *RatingController) Eligibility(ctx *gin.Context) {
	resp, err := c.ratingService.Eligibility(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
