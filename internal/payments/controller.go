package payments

import (
	"errors"
	"net/http"

	"tickethub/internal/bookings"
	"tickethub/internal/shared/utils/response"
	"tickethub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Webhook event types delivered by payment providers.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventRefundConfirmed  = "refund.confirmed"
)

type webhookRequest struct {
	Type      string `json:"type" binding:"required,oneof=payment.succeeded payment.failed refund.confirmed"`
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// Controller bridges provider webhooks into booking transitions. The booking
// service is idempotent, so redelivered webhooks are safe.
type Controller struct {
	bookingService bookings.Service
	log            *logger.Logger
}

func NewController(bookingService bookings.Service, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{bookingService: bookingService, log: log}
}

// HandleWebhook handles POST /api/v1/webhooks/payments
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	var req webhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid webhook payload", nil, err.Error())
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	var booking *bookings.Booking
	switch req.Type {
	case EventPaymentSucceeded:
		booking, err = c.bookingService.ConfirmBooking(ctx.Request.Context(), bookingID, req.Reference)
	case EventPaymentFailed:
		booking, err = c.bookingService.FailBooking(ctx.Request.Context(), bookingID, req.Reason)
	case EventRefundConfirmed:
		booking, err = c.bookingService.RefundBooking(ctx.Request.Context(), bookingID, req.Reference)
	}

	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
			return
		}
		c.log.ErrorWithContext(ctx.Request.Context(), "Webhook processing failed", err,
			map[string]interface{}{"type": req.Type, "booking_id": req.BookingID})
		response.RespondJSON(ctx, "error", http.StatusConflict, "Webhook could not be applied", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Webhook processed", booking.ToResponse(), nil)
}
