package bookings

// CreateBookingRequest represents a purchase attempt
type CreateBookingRequest struct {
	EventID      string  `json:"event_id" binding:"required,uuid"`
	TicketTypeID string  `json:"ticket_type_id" binding:"required,uuid"`
	Quantity     int     `json:"quantity" binding:"required,min=1"`
	DiscountCode *string `json:"discount_code,omitempty"`
}

// BookingListQuery represents query params for booking lists
type BookingListQuery struct {
	Status  string `form:"status"`
	EventID string `form:"event_id"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}
