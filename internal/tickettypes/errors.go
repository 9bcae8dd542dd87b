package tickettypes

import (
	"errors"
	"fmt"
)

var (
	ErrTicketTypeNotFound  = errors.New("ticket type not found")
	ErrTicketTypeNotOnSale = errors.New("ticket type is not on sale")
	ErrSoldOut             = errors.New("ticket type is sold out")
	ErrSalesNotStarted     = errors.New("ticket sales have not started")
	ErrSalesClosed         = errors.New("ticket sales have closed")
	ErrExceedsMaxPerOrder  = errors.New("quantity exceeds the per-order limit")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrInvalidTransition   = errors.New("invalid ticket type status transition")

	// ErrInventoryCorrupt marks an invariant breach (remaining outside
	// 0..quantity). This is a programmer error, never user input.
	ErrInventoryCorrupt = errors.New("ticket inventory invariant violated")
)

// InsufficientTicketsError carries the capacity shortfall so callers can tell
// buyers exactly how many tickets are left.
type InsufficientTicketsError struct {
	Available int
	Requested int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("insufficient tickets: only %d available, requested %d", e.Available, e.Requested)
}
