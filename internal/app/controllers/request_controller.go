package controllers

import (
	"net/http"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/dreamline/mentorlink/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RequestController handles contact requests
type RequestController struct {
	requestService services.RequestService
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.RequestService) *RequestController {
	return &RequestController{requestService: requestService}
}

// Create sends a contact request to another user
// @Summary Send a contact request
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateContactRequest true "Recipient"
// @Success 201 {object} dto.APIResponse{data=dto.ContactRequestResponse}
// @Failure 409 {object} dto.ErrorResponse "A pending request already exists"
// @Router /requests [post]
func (c *RequestController) Create(ctx *gin.Context) {
	var req dto.CreateContactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	created, err := c.requestService.Create(ctx.Request.Context(), middleware.Identity(ctx), req.To)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created))
}

// ListIncoming lists requests addressed to the caller. Pending by default;
// ?status=all returns every status.
func (c *RequestController) ListIncoming(ctx *gin.Context) {
	status := models.RequestPending
	switch s := ctx.Query("status"); s {
	case "":
	case "all":
		status = ""
	default:
		status = models.RequestStatus(s)
	}

	reqs, err := c.requestService.ListIncoming(ctx.Request.Context(), middleware.Identity(ctx), status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reqs))
}

// ListOutgoing lists requests the caller has sent
func (c *RequestController) ListOutgoing(ctx *gin.Context) {
	reqs, err := c.requestService.ListOutgoing(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reqs))
}

// Accept accepts a pending request and opens the channel
// @Summary Accept a contact request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.AcceptRequestResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the recipient"
// @Failure 409 {object} dto.ErrorResponse "Request already decided"
// @Router /requests/{id}/accept [post]
func (c *RequestController) Accept(ctx *gin.Context) {
	resp, err := c.requestService.Accept(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Reject rejects a pending request
func (c *RequestController) Reject(ctx *gin.Context) {
	resp, err := c.requestService.Reject(ctx.Request.Context(), middleware.Identity(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
