package discounts

import "time"

type CreateDiscountCodeRequest struct {
	EventID        string     `json:"event_id" binding:"required,uuid"`
	Code           string     `json:"code" binding:"required,min=3,max=50"`
	DiscountType   string     `json:"discount_type" binding:"required,oneof=fixed percentage"`
	DiscountAmount string     `json:"discount_amount" binding:"required"`
	MaxDiscount    *string    `json:"max_discount,omitempty"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty" binding:"omitempty,min=1"`
	MinTicketCount int        `json:"min_ticket_count" binding:"omitempty,min=0"`
}

type PreviewDiscountRequest struct {
	EventID     string `json:"event_id" binding:"required,uuid"`
	Code        string `json:"code" binding:"required"`
	Subtotal    string `json:"subtotal" binding:"required"`
	TicketCount int    `json:"ticket_count" binding:"required,min=1"`
}
