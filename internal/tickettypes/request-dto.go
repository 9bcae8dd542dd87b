package tickettypes

import "time"

type CreateTicketTypeRequest struct {
	EventID        string     `json:"event_id" binding:"required,uuid"`
	Name           string     `json:"name" binding:"required,min=2,max=255"`
	Description    string     `json:"description" binding:"max=2000"`
	Price          float64    `json:"price" binding:"min=0"`
	Quantity       int        `json:"quantity" binding:"required,min=1,max=1000000"`
	MaxPerOrder    *int       `json:"max_per_order" binding:"omitempty,min=1"`
	SalesStartDate *time.Time `json:"sales_start_date"`
	SalesEndDate   *time.Time `json:"sales_end_date"`
}
