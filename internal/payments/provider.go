package payments

import (
	"context"
	"fmt"
	"strings"

	"tickethub/internal/bookings"

	"github.com/google/uuid"
)

// Provider abstracts a payment gateway. The core only consumes outcome
// events; charging cards is somebody else's problem.
type Provider interface {
	// Charge attempts payment for a booking and reports the outcome through
	// the booking service, the same path a webhook would take.
	Charge(ctx context.Context, bookingID uuid.UUID, cardToken string) error
}

// MockProvider settles payments synchronously against the booking service.
// Used by the development simulate endpoint and by integration tests; tokens
// beginning with "fail" decline, everything else succeeds.
type MockProvider struct {
	bookingService bookings.Service
}

func NewMockProvider(bookingService bookings.Service) *MockProvider {
	return &MockProvider{bookingService: bookingService}
}

func (m *MockProvider) Charge(ctx context.Context, bookingID uuid.UUID, cardToken string) error {
	if strings.HasPrefix(cardToken, "fail") {
		_, err := m.bookingService.FailBooking(ctx, bookingID, "card_declined")
		return err
	}

	reference := fmt.Sprintf("mock_txn_%s", uuid.NewString())
	_, err := m.bookingService.ConfirmBooking(ctx, bookingID, reference)
	return err
}
