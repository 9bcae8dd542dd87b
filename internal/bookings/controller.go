package bookings

import (
	"errors"
	"net/http"

	"tickethub/internal/discounts"
	"tickethub/internal/shared/authz"
	"tickethub/internal/shared/middleware"
	"tickethub/internal/shared/utils/response"
	"tickethub/internal/tickettypes"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		status, message := createErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking.ToResponse(), nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
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

	booking, err := c.service.GetBooking(ctx.Request.Context(), actor, id)
	if err != nil {
		status, message := lookupErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking.ToResponse(), nil)
}

// GetMyBookings handles GET /api/v1/bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to retrieve bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

// GetEventBookings handles GET /api/v1/events/:id/bookings
func (c *Controller) GetEventBookings(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	bookings, err := c.service.GetEventBookings(ctx.Request.Context(), actor, eventID)
	if err != nil {
		status, message := lookupErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	result := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		result = append(result, bookings[i].ToResponse())
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": result,
	}, nil)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
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

	booking, err := c.service.CancelBooking(ctx.Request.Context(), actor, id)
	if err != nil {
		status, message := cancelErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", booking.ToResponse(), nil)
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

func createErrorStatus(err error) (int, string) {
	var insufficient *tickettypes.InsufficientTicketsError
	switch {
	case errors.Is(err, ErrEventEnded),
		errors.Is(err, tickettypes.ErrSalesClosed),
		errors.Is(err, tickettypes.ErrSalesNotStarted),
		errors.Is(err, tickettypes.ErrTicketTypeNotOnSale):
		return http.StatusConflict, "Tickets are not on sale"
	case errors.Is(err, tickettypes.ErrSoldOut), errors.As(err, &insufficient):
		return http.StatusConflict, "Not enough tickets available"
	case errors.Is(err, tickettypes.ErrExceedsMaxPerOrder):
		return http.StatusConflict, "Quantity exceeds the per-order limit"
	case errors.Is(err, tickettypes.ErrTicketTypeNotFound):
		return http.StatusNotFound, "Ticket type not found"
	case errors.Is(err, discounts.ErrDiscountNotFound),
		errors.Is(err, discounts.ErrDiscountInactive),
		errors.Is(err, discounts.ErrDiscountNotYet),
		errors.Is(err, discounts.ErrDiscountExpired),
		errors.Is(err, discounts.ErrDiscountExhausted):
		return http.StatusConflict, "Discount code cannot be applied"
	default:
		return http.StatusBadRequest, "Failed to create booking"
	}
}

func lookupErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	default:
		return http.StatusInternalServerError, "Failed to retrieve booking"
	}
}

func cancelErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, ErrAlreadyCancelled):
		return http.StatusConflict, "Booking is already cancelled"
	case errors.Is(err, ErrCannotCancelCheckedIn):
		return http.StatusConflict, "Checked-in bookings cannot be cancelled"
	case errors.Is(err, ErrEventAlreadyStarted):
		return http.StatusConflict, "Event has already started"
	default:
		return http.StatusBadRequest, "Failed to cancel booking"
	}
}
