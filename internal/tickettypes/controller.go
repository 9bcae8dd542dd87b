package tickettypes

import (
	"context"
	"net/http"

	"tickethub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateTicketType handles POST /api/v1/ticket-types
func (c *Controller) CreateTicketType(ctx *gin.Context) {
	var req CreateTicketTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticketType, err := c.service.CreateTicketType(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create ticket type", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Ticket type created successfully", ticketType, nil)
}

// GetAvailability handles GET /api/v1/events/:id/availability
func (c *Controller) GetAvailability(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	availability, err := c.service.GetAvailability(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Failed to get availability", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", gin.H{
		"ticket_types": availability,
	}, nil)
}

// ActivateTicketType handles POST /api/v1/ticket-types/:id/activate
func (c *Controller) ActivateTicketType(ctx *gin.Context) {
	c.transition(ctx, c.service.ActivateTicketType, "Ticket type activated successfully")
}

// PauseTicketType handles POST /api/v1/ticket-types/:id/pause
func (c *Controller) PauseTicketType(ctx *gin.Context) {
	c.transition(ctx, c.service.PauseTicketType, "Ticket type paused successfully")
}

// ResumeTicketType handles POST /api/v1/ticket-types/:id/resume
func (c *Controller) ResumeTicketType(ctx *gin.Context) {
	c.transition(ctx, c.service.ResumeTicketType, "Ticket type resumed successfully")
}

// CancelTicketType handles POST /api/v1/ticket-types/:id/cancel
func (c *Controller) CancelTicketType(ctx *gin.Context) {
	c.transition(ctx, c.service.CancelTicketType, "Ticket type cancelled successfully")
}

func (c *Controller) transition(ctx *gin.Context, op func(context.Context, uuid.UUID) error, message string) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket type ID", nil, nil)
		return
	}

	if err := op(ctx.Request.Context(), id); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to update ticket type", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, message, nil, nil)
}
