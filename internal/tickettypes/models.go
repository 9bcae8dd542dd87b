package tickettypes

import (
	"time"

	"github.com/google/uuid"
)

// TicketType is one purchasable class of admission for an event. It owns the
// shared inventory counter (tickets_remaining) that concurrent checkouts race
// for; every mutation of that counter goes through ReserveTx/ReleaseTx under a
// row lock.
type TicketType struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID     uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`

	Price            float64 `json:"price" gorm:"not null;check:price >= 0"`
	Quantity         int     `json:"quantity" gorm:"not null;check:quantity >= 0"`
	TicketsRemaining int     `json:"tickets_remaining" gorm:"not null;check:tickets_remaining >= 0"`
	MaxPerOrder      *int    `json:"max_per_order,omitempty"`

	SalesStartDate *time.Time `json:"sales_start_date,omitempty"`
	SalesEndDate   *time.Time `json:"sales_end_date,omitempty"`

	Status      Status `json:"status" gorm:"type:varchar(20);default:'draft'"`
	IsAvailable bool   `json:"is_available" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SaleWindow resolves the effective sales window, falling back to the event's
// own start/end when the ticket type does not set one.
func (t *TicketType) SaleWindow(fallbackStart, fallbackEnd time.Time) (time.Time, time.Time) {
	start := fallbackStart
	end := fallbackEnd
	if t.SalesStartDate != nil {
		start = *t.SalesStartDate
	}
	if t.SalesEndDate != nil {
		end = *t.SalesEndDate
	}
	return start, end
}

// WithinSalesWindow reports whether now falls inside the effective window.
func (t *TicketType) WithinSalesWindow(now, fallbackStart, fallbackEnd time.Time) bool {
	start, end := t.SaleWindow(fallbackStart, fallbackEnd)
	return !now.Before(start) && !now.After(end)
}

// ExceedsMaxPerOrder reports whether quantity breaks the per-order cap.
// A nil or zero cap means unlimited.
func (t *TicketType) ExceedsMaxPerOrder(quantity int) bool {
	if t.MaxPerOrder == nil || *t.MaxPerOrder <= 0 {
		return false
	}
	return quantity > *t.MaxPerOrder
}

// IsAvailableNow is the display-level availability check: on-sale status, the
// organizer toggle, an open window, and stock left.
func (t *TicketType) IsAvailableNow(now, fallbackStart, fallbackEnd time.Time) bool {
	return t.Status == StatusActive &&
		t.IsAvailable &&
		t.WithinSalesWindow(now, fallbackStart, fallbackEnd) &&
		t.TicketsRemaining > 0
}

// TableName sets the table name for TicketType
func (TicketType) TableName() string {
	return "ticket_types"
}

type TicketTypeResponse struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Price            float64    `json:"price"`
	Quantity         int        `json:"quantity"`
	TicketsRemaining int        `json:"tickets_remaining"`
	MaxPerOrder      *int       `json:"max_per_order,omitempty"`
	SalesStartDate   *time.Time `json:"sales_start_date,omitempty"`
	SalesEndDate     *time.Time `json:"sales_end_date,omitempty"`
	Status           Status     `json:"status"`
	Available        bool       `json:"available"`
}

func (t *TicketType) ToResponse(now, fallbackStart, fallbackEnd time.Time) TicketTypeResponse {
	return TicketTypeResponse{
		ID:               t.ID.String(),
		EventID:          t.EventID.String(),
		Name:             t.Name,
		Description:      t.Description,
		Price:            t.Price,
		Quantity:         t.Quantity,
		TicketsRemaining: t.TicketsRemaining,
		MaxPerOrder:      t.MaxPerOrder,
		SalesStartDate:   t.SalesStartDate,
		SalesEndDate:     t.SalesEndDate,
		Status:           t.Status,
		Available:        t.IsAvailableNow(now, fallbackStart, fallbackEnd),
	}
}
