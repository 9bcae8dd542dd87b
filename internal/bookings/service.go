package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"tickethub/internal/discounts"
	"tickethub/internal/events"
	"tickethub/internal/notifications"
	"tickethub/internal/shared/authz"
	"tickethub/internal/tickettypes"
	"tickethub/pkg/logger"
	"tickethub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CredentialIssuer renders the check-in credential for a confirmed booking.
// Implemented by the checkin package; declared here so this package never
// imports it.
type CredentialIssuer interface {
	Issue(ctx context.Context, booking *Booking) (payload string, url string, err error)
}

// AvailabilityInvalidator drops cached availability after inventory moves.
type AvailabilityInvalidator interface {
	InvalidateAvailability(ctx context.Context, eventID uuid.UUID)
}

type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error)
	GetEventBookings(ctx context.Context, actor authz.Actor, eventID uuid.UUID) ([]Booking, error)
	CancelBooking(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Booking, error)

	// Payment bridge entry points. All idempotent: providers retry webhooks.
	ConfirmBooking(ctx context.Context, id uuid.UUID, paymentRef string) (*Booking, error)
	FailBooking(ctx context.Context, id uuid.UUID, reason string) (*Booking, error)
	RefundBooking(ctx context.Context, id uuid.UUID, refundRef string) (*Booking, error)
}

type service struct {
	repo           Repository
	eventRepo      events.Repository
	ticketTypeRepo tickettypes.Repository
	discountRepo   discounts.Repository
	availability   AvailabilityInvalidator
	credentials    CredentialIssuer
	publisher      notifications.Publisher
	authorizer     authz.Authorizer
	log            *logger.Logger
}

type ServiceDeps struct {
	Repo           Repository
	EventRepo      events.Repository
	TicketTypeRepo tickettypes.Repository
	DiscountRepo   discounts.Repository
	Availability   AvailabilityInvalidator
	Credentials    CredentialIssuer
	Publisher      notifications.Publisher
	Authorizer     authz.Authorizer
	Logger         *logger.Logger
}

func NewService(deps ServiceDeps) Service {
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	return &service{
		repo:           deps.Repo,
		eventRepo:      deps.EventRepo,
		ticketTypeRepo: deps.TicketTypeRepo,
		discountRepo:   deps.DiscountRepo,
		availability:   deps.Availability,
		credentials:    deps.Credentials,
		publisher:      deps.Publisher,
		authorizer:     deps.Authorizer,
		log:            deps.Logger,
	}
}

// CreateBooking runs the purchase flow: validate the event window, price the
// order, resolve an optional discount code, then commit reservation, discount
// redemption, and the pending booking row in one transaction.
func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}
	ticketTypeID, err := uuid.Parse(req.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket type ID: %w", err)
	}

	now := time.Now()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HasEnded(now) {
		metrics.BookingRejected("event_ended")
		return nil, ErrEventEnded
	}
	if !event.IsBookable(now) {
		metrics.BookingRejected("sales_closed")
		return nil, tickettypes.ErrSalesClosed
	}

	ticketType, err := s.ticketTypeRepo.GetByID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if ticketType.EventID != eventID {
		return nil, fmt.Errorf("ticket type does not belong to event %s", eventID)
	}

	unitPrice := decimal.NewFromFloat(ticketType.Price)
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

	discountAmount := decimal.Zero
	var discountID *uuid.UUID
	if req.DiscountCode != nil && *req.DiscountCode != "" {
		code, err := s.discountRepo.GetByCode(ctx, eventID, *req.DiscountCode)
		if err != nil {
			metrics.BookingRejected("discount")
			return nil, err
		}
		if err := discounts.Validate(code, eventID, now); err != nil {
			metrics.BookingRejected("discount")
			return nil, err
		}
		discountAmount = discounts.CalculateDiscount(code, subtotal, req.Quantity)
		// A code below its minimum ticket count yields no discount; don't
		// attach it or burn one of its uses.
		if !discountAmount.IsZero() {
			discountID = &code.ID
		}
	}

	totalPrice := subtotal.Sub(discountAmount)
	if totalPrice.IsNegative() {
		totalPrice = decimal.Zero
	}

	reference, err := generateBookingReference(event.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		UserID:           userID,
		EventID:          eventID,
		TicketTypeID:     ticketTypeID,
		DiscountID:       discountID,
		Quantity:         req.Quantity,
		UnitPrice:        unitPrice,
		Subtotal:         subtotal,
		DiscountAmount:   discountAmount,
		TotalPrice:       totalPrice,
		Status:           StatusPending,
		PaymentStatus:    PaymentPending,
		BookingReference: reference,
	}

	err = s.repo.CreateWithReservation(ctx, booking, ReservationArgs{
		Now:           now,
		FallbackStart: event.StartTime,
		FallbackEnd:   event.EndTime,
	})
	if err != nil {
		if errors.Is(err, tickettypes.ErrSalesClosed) {
			// The sale window closed while the row was still active. Persist
			// the derived expiry outside the aborted booking transaction.
			if uerr := s.ticketTypeRepo.UpdateStatus(ctx, ticketTypeID, tickettypes.StatusActive, tickettypes.StatusExpired); uerr == nil {
				s.invalidate(ctx, eventID)
			}
		}
		s.recordRejection(err)
		return nil, err
	}

	s.invalidate(ctx, eventID)
	metrics.BookingCreated(eventID.String())
	s.log.LogBookingCreated(ctx, booking.ID.String(), eventID.String(), userID.String())
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingAccess(ctx, actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error) {
	bookings, total, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	result := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		result = append(result, bookings[i].ToResponse())
	}
	return &BookingListResponse{
		Bookings:   result,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

func (s *service) GetEventBookings(ctx context.Context, actor authz.Actor, eventID uuid.UUID) ([]Booking, error) {
	allowed, err := s.authorizer.CanManageEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authz.ErrForbidden
	}
	return s.repo.GetBookingsByEventID(ctx, eventID)
}

// CancelBooking cancels on behalf of the owner or an event manager. A
// confirmed booking cannot be cancelled once the event has started; a pending
// one still can.
func (s *service) CancelBooking(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeBookingAccess(ctx, actor, booking); err != nil {
		return nil, err
	}

	now := time.Now()
	if booking.Status == StatusConfirmed {
		event, err := s.eventRepo.GetByID(ctx, booking.EventID)
		if err != nil {
			return nil, err
		}
		if event.HasStarted(now) {
			return nil, ErrEventAlreadyStarted
		}
	}

	cancelled, err := s.repo.CancelWithRelease(ctx, id, now)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cancelled.EventID)
	metrics.BookingTransition("cancelled")
	s.log.LogBookingCancelled(ctx, id.String(), cancelled.EventID.String(), cancelled.UserID.String())
	s.publish(ctx, notifications.BookingCancelled, cancelled)
	return cancelled, nil
}

// ConfirmBooking is driven by the payment bridge. A duplicate webhook finds
// the booking already confirmed and returns it unchanged; the credential is
// only issued on the first transition.
func (s *service) ConfirmBooking(ctx context.Context, id uuid.UUID, paymentRef string) (*Booking, error) {
	booking, transitioned, err := s.repo.Confirm(ctx, id, paymentRef)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return booking, nil
	}

	if s.credentials != nil {
		payload, url, err := s.credentials.Issue(ctx, booking)
		if err != nil {
			// The booking is confirmed; a failed render is recoverable via
			// regeneration and must not fail the webhook.
			s.log.ErrorWithContext(ctx, "Failed to issue check-in credential", err,
				map[string]interface{}{"booking_id": id.String()})
		} else if err := s.repo.UpdateCredential(ctx, id, payload, url); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to store check-in credential", err,
				map[string]interface{}{"booking_id": id.String()})
		} else {
			booking.QRCode = payload
			booking.QRCodeURL = url
		}
	}

	metrics.BookingTransition("confirmed")
	s.log.LogBookingConfirmed(ctx, id.String(), paymentRef)
	s.publish(ctx, notifications.BookingConfirmed, booking)
	return booking, nil
}

// FailBooking records a failed payment and releases the held inventory.
func (s *service) FailBooking(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	booking, err := s.repo.FailWithRelease(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, booking.EventID)
	metrics.BookingTransition("payment_failed")
	s.log.InfoContext(ctx, "Booking payment failed",
		"booking_id", id.String(), "reason", reason)
	return booking, nil
}

// RefundBooking is driven by a confirmed refund from the payment bridge.
// Inventory stays consumed.
func (s *service) RefundBooking(ctx context.Context, id uuid.UUID, refundRef string) (*Booking, error) {
	booking, err := s.repo.MarkRefunded(ctx, id, refundRef)
	if err != nil {
		return nil, err
	}

	metrics.BookingTransition("refunded")
	s.log.InfoContext(ctx, "Booking refunded",
		"booking_id", id.String(), "refund_reference", refundRef)
	return booking, nil
}

func (s *service) authorizeBookingAccess(ctx context.Context, actor authz.Actor, booking *Booking) error {
	if booking.UserID == actor.UserID {
		return nil
	}
	allowed, err := s.authorizer.CanManageEvent(ctx, actor, booking.EventID)
	if err != nil {
		return err
	}
	if !allowed {
		return authz.ErrForbidden
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, eventID uuid.UUID) {
	if s.availability != nil {
		s.availability.InvalidateAvailability(ctx, eventID)
	}
}

func (s *service) publish(ctx context.Context, eventType notifications.EventType, booking *Booking) {
	if s.publisher == nil {
		return
	}
	n := notifications.New(eventType, booking.UserID, booking.ID, booking.EventID, map[string]interface{}{
		"booking_reference": booking.BookingReference,
	})
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to publish notification", err,
			map[string]interface{}{"booking_id": booking.ID.String(), "type": string(eventType)})
	}
}

func (s *service) recordRejection(err error) {
	var insufficient *tickettypes.InsufficientTicketsError
	switch {
	case errors.Is(err, tickettypes.ErrSoldOut):
		metrics.BookingRejected("sold_out")
	case errors.As(err, &insufficient):
		metrics.BookingRejected("insufficient")
	case errors.Is(err, tickettypes.ErrSalesClosed), errors.Is(err, tickettypes.ErrSalesNotStarted):
		metrics.BookingRejected("sales_closed")
	case errors.Is(err, tickettypes.ErrExceedsMaxPerOrder):
		metrics.BookingRejected("max_per_order")
	case errors.Is(err, discounts.ErrDiscountExhausted):
		metrics.BookingRejected("discount")
	default:
		metrics.BookingRejected("other")
	}
}

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateBookingReference builds a human-readable unique reference like
// EVT-20260601-K7M2P9. Collisions are caught by the unique constraint.
func generateBookingReference(eventStart time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = referenceAlphabet[int(buf[i])%len(referenceAlphabet)]
	}
	return fmt.Sprintf("EVT-%s-%s", eventStart.Format("20060102"), string(buf)), nil
}
