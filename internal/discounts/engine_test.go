package discounts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func activeCode(eventID uuid.UUID) *DiscountCode {
	return &DiscountCode{
		ID:             uuid.New(),
		EventID:        eventID,
		Code:           "SUMMER10",
		DiscountType:   TypePercentage,
		DiscountAmount: dec("10"),
		IsActive:       true,
	}
}

func TestValidate(t *testing.T) {
	eventID := uuid.New()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid code passes", func(t *testing.T) {
		assert.NoError(t, Validate(activeCode(eventID), eventID, now))
	})

	t.Run("nil code", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil, eventID, now), ErrDiscountNotFound)
	})

	t.Run("wrong event", func(t *testing.T) {
		assert.ErrorIs(t, Validate(activeCode(eventID), uuid.New(), now), ErrDiscountWrongEvent)
	})

	t.Run("inactive", func(t *testing.T) {
		code := activeCode(eventID)
		code.IsActive = false
		assert.ErrorIs(t, Validate(code, eventID, now), ErrDiscountInactive)
	})

	t.Run("not yet started", func(t *testing.T) {
		code := activeCode(eventID)
		code.StartsAt = timePtr(now.Add(time.Hour))
		assert.ErrorIs(t, Validate(code, eventID, now), ErrDiscountNotYet)
	})

	t.Run("expired", func(t *testing.T) {
		code := activeCode(eventID)
		code.ExpiresAt = timePtr(now.Add(-time.Hour))
		assert.ErrorIs(t, Validate(code, eventID, now), ErrDiscountExpired)
	})

	t.Run("exhausted", func(t *testing.T) {
		code := activeCode(eventID)
		code.MaxUses = intPtr(5)
		code.UsedCount = 5
		assert.ErrorIs(t, Validate(code, eventID, now), ErrDiscountExhausted)
	})

	t.Run("nil max_uses is unlimited", func(t *testing.T) {
		code := activeCode(eventID)
		code.UsedCount = 1000000
		assert.NoError(t, Validate(code, eventID, now))
	})
}

func TestCalculateDiscountPercentage(t *testing.T) {
	code := activeCode(uuid.New())

	amount := CalculateDiscount(code, dec("200.00"), 2)
	assert.True(t, amount.Equal(dec("20.00")), "got %s", amount)
}

func TestCalculateDiscountPercentageCappedAtMax(t *testing.T) {
	code := activeCode(uuid.New())
	code.DiscountAmount = dec("50")
	code.MaxDiscount = decimal.NewNullDecimal(dec("30.00"))

	amount := CalculateDiscount(code, dec("1000.00"), 1)
	assert.True(t, amount.Equal(dec("30.00")), "got %s", amount)

	// Below the cap, the raw percentage applies.
	amount = CalculateDiscount(code, dec("40.00"), 1)
	assert.True(t, amount.Equal(dec("20.00")), "got %s", amount)
}

func TestCalculateDiscountFixedExceedsSubtotal(t *testing.T) {
	code := activeCode(uuid.New())
	code.DiscountType = TypeFixed
	code.DiscountAmount = dec("75.00")

	// Fixed discounts are not capped by the subtotal here; the booking
	// service floors the total price at zero.
	amount := CalculateDiscount(code, dec("50.00"), 1)
	assert.True(t, amount.Equal(dec("75.00")), "got %s", amount)
}

func TestCalculateDiscountBelowMinTicketCount(t *testing.T) {
	code := activeCode(uuid.New())
	code.MinTicketCount = 3

	amount := CalculateDiscount(code, dec("300.00"), 2)
	assert.True(t, amount.IsZero(), "got %s", amount)

	amount = CalculateDiscount(code, dec("300.00"), 3)
	assert.True(t, amount.Equal(dec("30.00")), "got %s", amount)
}

func TestCalculateDiscountNilCode(t *testing.T) {
	amount := CalculateDiscount(nil, dec("100.00"), 1)
	require.True(t, amount.IsZero())
}

func TestCalculateDiscountRounding(t *testing.T) {
	code := activeCode(uuid.New())
	code.DiscountAmount = dec("7.5")

	amount := CalculateDiscount(code, dec("33.33"), 1)
	assert.True(t, amount.Equal(dec("2.50")), "got %s", amount)
}
