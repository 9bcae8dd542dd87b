package discounts

import "errors"

var (
	ErrDiscountNotFound  = errors.New("discount code not found")
	ErrDiscountInactive  = errors.New("discount code is not active")
	ErrDiscountNotYet    = errors.New("discount code is not yet valid")
	ErrDiscountExpired   = errors.New("discount code has expired")
	ErrDiscountExhausted = errors.New("discount code has no uses left")
	ErrDiscountWrongEvent = errors.New("discount code does not belong to this event")
)
