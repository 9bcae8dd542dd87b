package bookings

import "time"

// BookingResponse is the public shape of a booking. The transfer code is
// deliberately absent: it is only ever returned once, from initiate.
type BookingResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	EventID          string     `json:"event_id"`
	TicketTypeID     string     `json:"ticket_type_id"`
	Quantity         int        `json:"quantity"`
	UnitPrice        string     `json:"unit_price"`
	Subtotal         string     `json:"subtotal"`
	DiscountAmount   string     `json:"discount_amount"`
	TotalPrice       string     `json:"total_price"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	BookingReference string     `json:"booking_reference"`
	QRCodeURL        string     `json:"qr_code_url,omitempty"`
	CheckedInAt      *time.Time `json:"checked_in_at,omitempty"`
	TransferStatus   *string    `json:"transfer_status,omitempty"`
	TransferExpires  *time.Time `json:"transfer_expires_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:               b.ID.String(),
		UserID:           b.UserID.String(),
		EventID:          b.EventID.String(),
		TicketTypeID:     b.TicketTypeID.String(),
		Quantity:         b.Quantity,
		UnitPrice:        b.UnitPrice.StringFixed(2),
		Subtotal:         b.Subtotal.StringFixed(2),
		DiscountAmount:   b.DiscountAmount.StringFixed(2),
		TotalPrice:       b.TotalPrice.StringFixed(2),
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		BookingReference: b.BookingReference,
		QRCodeURL:        b.QRCodeURL,
		CheckedInAt:      b.CheckedInAt,
		TransferExpires:  b.TransferExpiresAt,
		CancelledAt:      b.CancelledAt,
		CreatedAt:        b.CreatedAt,
	}
	if b.TransferStatus != nil {
		s := string(*b.TransferStatus)
		resp.TransferStatus = &s
	}
	return resp
}

// BookingListResponse wraps a paginated booking list
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// TransferInitiatedResponse carries the one-time transfer code back to the
// initiating owner.
type TransferInitiatedResponse struct {
	BookingID         string    `json:"booking_id"`
	TransferCode      string    `json:"transfer_code"`
	TransferExpiresAt time.Time `json:"transfer_expires_at"`
}
