package transfers

import (
	"errors"
	"net/http"

	"tickethub/internal/bookings"
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

type acceptTransferRequest struct {
	Code string `json:"code" binding:"required,len=32,hexadecimal"`
}

// InitiateTransfer handles POST /api/v1/bookings/:id/transfer/initiate
func (c *Controller) InitiateTransfer(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, code, err := c.service.Initiate(ctx.Request.Context(), userID, id)
	if err != nil {
		status, message := transferErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Transfer initiated successfully", bookings.TransferInitiatedResponse{
		BookingID:         booking.ID.String(),
		TransferCode:      code,
		TransferExpiresAt: *booking.TransferExpiresAt,
	}, nil)
}

// AcceptTransfer handles POST /api/v1/bookings/transfer/accept
func (c *Controller) AcceptTransfer(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req acceptTransferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.Accept(ctx.Request.Context(), userID, req.Code)
	if err != nil {
		status, message := transferErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Transfer accepted successfully", booking.ToResponse(), nil)
}

// CancelTransfer handles DELETE /api/v1/bookings/:id/transfer
func (c *Controller) CancelTransfer(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), userID, id); err != nil {
		status, message := transferErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Transfer cancelled successfully", nil, nil)
}

func transferErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, bookings.ErrNotOwner):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, bookings.ErrNotConfirmed):
		return http.StatusConflict, "Only confirmed bookings can be transferred"
	case errors.Is(err, bookings.ErrAlreadyCheckedIn):
		return http.StatusConflict, "Checked-in bookings cannot be transferred"
	case errors.Is(err, bookings.ErrTransferAlreadyPending):
		return http.StatusConflict, "Booking already has a pending transfer"
	case errors.Is(err, bookings.ErrTransferNotFound):
		return http.StatusNotFound, "Transfer code is invalid or expired"
	case errors.Is(err, bookings.ErrSelfTransfer):
		return http.StatusConflict, "Cannot transfer a booking to its current owner"
	case errors.Is(err, bookings.ErrNoPendingTransfer):
		return http.StatusConflict, "Booking has no pending transfer"
	default:
		return http.StatusBadRequest, "Transfer operation failed"
	}
}
