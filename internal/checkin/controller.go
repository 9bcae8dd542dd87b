package checkin

import (
	"errors"
	"net/http"

	"tickethub/internal/bookings"
	"tickethub/internal/shared/authz"
	"tickethub/internal/shared/middleware"
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

type verifyRequest struct {
	Payload string `json:"payload" binding:"required"`
	EventID string `json:"event_id" binding:"required,uuid"`
}

type bulkCheckInRequest struct {
	BookingIDs []string `json:"booking_ids" binding:"required,min=1,dive,uuid"`
}

// IssueCredential handles POST /api/v1/bookings/:id/credential
func (c *Controller) IssueCredential(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.IssueCredential(ctx.Request.Context(), actor, id)
	if err != nil {
		status, message := checkInErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Credential issued successfully", booking.ToResponse(), nil)
}

// Verify handles POST /api/v1/check-in/verify
func (c *Controller) Verify(ctx *gin.Context) {
	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	result, err := c.service.Verify(ctx.Request.Context(), req.Payload, eventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to verify credential", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Credential verified", result, nil)
}

// CheckIn handles POST /api/v1/bookings/:id/check-in
func (c *Controller) CheckIn(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.CheckIn(ctx.Request.Context(), actor, id)
	if err != nil {
		status, message := checkInErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Checked in successfully", booking.ToResponse(), nil)
}

// UndoCheckIn handles POST /api/v1/bookings/:id/undo-check-in
func (c *Controller) UndoCheckIn(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.UndoCheckIn(ctx.Request.Context(), actor, id)
	if err != nil {
		status, message := checkInErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Check-in undone successfully", booking.ToResponse(), nil)
}

// BulkCheckIn handles POST /api/v1/check-in/bulk
func (c *Controller) BulkCheckIn(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req bulkCheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.BookingIDs))
	for _, raw := range req.BookingIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID in batch", nil, raw)
			return
		}
		ids = append(ids, id)
	}

	result, err := c.service.BulkCheckIn(ctx.Request.Context(), actor, ids)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process batch", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Batch processed", result, nil)
}

func currentActor(ctx *gin.Context) (authz.Actor, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return authz.Actor{}, false
	}
	return authz.Actor{
		UserID: userID,
		Role:   middleware.CurrentUserRole(ctx),
	}, true
}

func checkInErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, bookings.ErrNotConfirmed):
		return http.StatusConflict, "Booking is not confirmed"
	case errors.Is(err, bookings.ErrAlreadyCheckedIn):
		return http.StatusConflict, "Booking is already checked in"
	case errors.Is(err, bookings.ErrNotCheckedIn):
		return http.StatusConflict, "Booking is not checked in"
	default:
		return http.StatusBadRequest, "Check-in operation failed"
	}
}
