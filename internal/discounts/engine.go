package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Validate checks whether a code is redeemable against an event at the given
// instant. It returns a sentinel error naming the first failed condition so
// callers can surface it verbatim.
func Validate(code *DiscountCode, eventID uuid.UUID, now time.Time) error {
	if code == nil {
		return ErrDiscountNotFound
	}
	if code.EventID != eventID {
		return ErrDiscountWrongEvent
	}
	if !code.IsActive {
		return ErrDiscountInactive
	}
	if code.StartsAt != nil && now.Before(*code.StartsAt) {
		return ErrDiscountNotYet
	}
	if code.ExpiresAt != nil && now.After(*code.ExpiresAt) {
		return ErrDiscountExpired
	}
	if !code.HasUsesLeft() {
		return ErrDiscountExhausted
	}
	return nil
}

// CalculateDiscount computes the discount amount for a subtotal. It returns
// zero when the order is below the code's minimum ticket count. Percentage
// discounts are capped at max_discount when set; fixed discounts are not
// capped by the subtotal, so the caller must floor the final total at zero.
func CalculateDiscount(code *DiscountCode, subtotal decimal.Decimal, ticketCount int) decimal.Decimal {
	if code == nil || ticketCount < code.MinTicketCount {
		return decimal.Zero
	}

	switch code.DiscountType {
	case TypePercentage:
		amount := subtotal.Mul(code.DiscountAmount).Div(hundred)
		if code.MaxDiscount.Valid && amount.GreaterThan(code.MaxDiscount.Decimal) {
			amount = code.MaxDiscount.Decimal
		}
		return amount.Round(2)
	case TypeFixed:
		return code.DiscountAmount
	default:
		return decimal.Zero
	}
}
