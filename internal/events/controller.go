package events

import (
	"net/http"

	"tickethub/internal/shared/middleware"
	"tickethub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateEvent handles POST /api/v1/events
func (c *Controller) CreateEvent(ctx *gin.Context) {
	organizerID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	event, err := c.service.CreateEvent(ctx.Request.Context(), organizerID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create event", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Event created successfully", event.ToResponse(), nil)
}

// GetEvent handles GET /api/v1/events/:id
func (c *Controller) GetEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	event, err := c.service.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Event not found", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event retrieved successfully", event.ToResponse(), nil)
}

// ListEvents handles GET /api/v1/events
func (c *Controller) ListEvents(ctx *gin.Context) {
	var query EventListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	eventList, totalCount, err := c.service.ListEvents(ctx.Request.Context(), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list events", nil, err.Error())
		return
	}

	responses := make([]EventResponse, 0, len(eventList))
	for i := range eventList {
		responses = append(responses, eventList[i].ToResponse())
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Events retrieved successfully", gin.H{
		"events":      responses,
		"total_count": totalCount,
	}, nil)
}

// PublishEvent handles POST /api/v1/events/:id/publish
func (c *Controller) PublishEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	if err := c.service.PublishEvent(ctx.Request.Context(), eventID); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to publish event", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event published successfully", nil, nil)
}

// CancelEvent handles POST /api/v1/events/:id/cancel
func (c *Controller) CancelEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	if err := c.service.CancelEvent(ctx.Request.Context(), eventID); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to cancel event", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event cancelled successfully", nil, nil)
}
