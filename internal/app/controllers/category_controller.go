package controllers

import (
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

// CategoryController serves the category taxonomy
type CategoryController struct{}

// NewCategoryController creates a new CategoryController
func NewCategoryController() *CategoryController {
	return &CategoryController{}
}

// List returns the major, middle and minor category tree
// @Summary Category taxonomy
// @Tags categories
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.CategoryNode}
// @Router /categories [get]
func (c *CategoryController) List(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(models.Taxonomy()))
}
