package tickettypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusDraft, StatusPaused, false},
		{StatusDraft, StatusCancelled, false},
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusSoldOut, true},
		{StatusActive, StatusExpired, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusDraft, false},
		{StatusPaused, StatusActive, true},
		{StatusPaused, StatusCancelled, true},
		{StatusPaused, StatusSoldOut, false},
		{StatusSoldOut, StatusActive, true},
		{StatusSoldOut, StatusCancelled, true},
		{StatusSoldOut, StatusPaused, false},
		{StatusExpired, StatusActive, false},
		{StatusCancelled, StatusActive, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusExpired.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusSoldOut.IsTerminal())
}

func TestStatusAcceptsReservations(t *testing.T) {
	assert.True(t, StatusActive.AcceptsReservations())
	assert.True(t, StatusSoldOut.AcceptsReservations())
	assert.False(t, StatusDraft.AcceptsReservations())
	assert.False(t, StatusPaused.AcceptsReservations())
	assert.False(t, StatusExpired.AcceptsReservations())
	assert.False(t, StatusCancelled.AcceptsReservations())
}

func TestSaleWindowFallsBackToEvent(t *testing.T) {
	eventStart := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	eventEnd := time.Date(2026, 6, 1, 22, 0, 0, 0, time.UTC)

	tt := &TicketType{}
	start, end := tt.SaleWindow(eventStart, eventEnd)
	assert.Equal(t, eventStart, start)
	assert.Equal(t, eventEnd, end)

	customStart := eventStart.Add(-72 * time.Hour)
	tt.SalesStartDate = timePtr(customStart)
	start, end = tt.SaleWindow(eventStart, eventEnd)
	assert.Equal(t, customStart, start)
	assert.Equal(t, eventEnd, end)
}

func TestWithinSalesWindow(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	tt := &TicketType{
		SalesStartDate: timePtr(start),
		SalesEndDate:   timePtr(end),
	}

	assert.False(t, tt.WithinSalesWindow(start.Add(-time.Second), time.Time{}, time.Time{}))
	assert.True(t, tt.WithinSalesWindow(start, time.Time{}, time.Time{}))
	assert.True(t, tt.WithinSalesWindow(start.Add(24*time.Hour), time.Time{}, time.Time{}))
	assert.True(t, tt.WithinSalesWindow(end, time.Time{}, time.Time{}))
	assert.False(t, tt.WithinSalesWindow(end.Add(time.Second), time.Time{}, time.Time{}))
}

func TestExceedsMaxPerOrder(t *testing.T) {
	unlimited := &TicketType{}
	assert.False(t, unlimited.ExceedsMaxPerOrder(10000))

	zeroCap := &TicketType{MaxPerOrder: intPtr(0)}
	assert.False(t, zeroCap.ExceedsMaxPerOrder(10000))

	capped := &TicketType{MaxPerOrder: intPtr(4)}
	assert.False(t, capped.ExceedsMaxPerOrder(4))
	assert.True(t, capped.ExceedsMaxPerOrder(5))
}

func TestIsAvailableNow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eventStart := now.Add(-time.Hour)
	eventEnd := now.Add(time.Hour)

	tt := &TicketType{
		Status:           StatusActive,
		IsAvailable:      true,
		TicketsRemaining: 5,
	}
	assert.True(t, tt.IsAvailableNow(now, eventStart, eventEnd))

	paused := *tt
	paused.Status = StatusPaused
	assert.False(t, paused.IsAvailableNow(now, eventStart, eventEnd))

	toggled := *tt
	toggled.IsAvailable = false
	assert.False(t, toggled.IsAvailableNow(now, eventStart, eventEnd))

	empty := *tt
	empty.TicketsRemaining = 0
	assert.False(t, empty.IsAvailableNow(now, eventStart, eventEnd))

	closed := *tt
	closed.SalesEndDate = timePtr(now.Add(-time.Minute))
	assert.False(t, closed.IsAvailableNow(now, eventStart, eventEnd))
}

func TestInsufficientTicketsErrorMessage(t *testing.T) {
	err := &InsufficientTicketsError{Available: 2, Requested: 5}
	assert.Equal(t, "insufficient tickets: only 2 available, requested 5", err.Error())
}
