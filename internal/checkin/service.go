package checkin

import (
	"context"
	"errors"
	"time"

	"tickethub/internal/bookings"
	"tickethub/internal/notifications"
	"tickethub/internal/shared/authz"
	"tickethub/pkg/logger"
	"tickethub/pkg/metrics"

	"github.com/google/uuid"
)

// BookingStore is the slice of booking persistence the check-in protocol
// needs. Satisfied by bookings.Repository.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	SetCheckedIn(ctx context.Context, id uuid.UUID, scannerID uuid.UUID, at time.Time) (*bookings.Booking, error)
	ClearCheckedIn(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, payload, url string) error
}

// VerificationResult is the gate-side answer for one scanned credential.
// A scan of an already-checked-in booking is valid and informative, not an
// error.
type VerificationResult struct {
	Valid            bool                      `json:"valid"`
	Reason           string                    `json:"reason,omitempty"`
	AlreadyCheckedIn bool                      `json:"already_checked_in"`
	Booking          *bookings.BookingResponse `json:"booking,omitempty"`
}

// BulkItemFailure names one booking that could not be checked in.
type BulkItemFailure struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

// BulkCheckInResult is the partial-failure shape for batch scans.
type BulkCheckInResult struct {
	Success []string          `json:"success"`
	Failed  []BulkItemFailure `json:"failed"`
}

type Service interface {
	IssueCredential(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*bookings.Booking, error)
	Verify(ctx context.Context, payload string, eventID uuid.UUID) (*VerificationResult, error)
	CheckIn(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*bookings.Booking, error)
	UndoCheckIn(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*bookings.Booking, error)
	BulkCheckIn(ctx context.Context, actor authz.Actor, bookingIDs []uuid.UUID) (*BulkCheckInResult, error)
}

type service struct {
	store      BookingStore
	issuer     *Issuer
	authorizer authz.Authorizer
	publisher  notifications.Publisher
	log        *logger.Logger
}

func NewService(store BookingStore, issuer *Issuer, authorizer authz.Authorizer, publisher notifications.Publisher, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		store:      store,
		issuer:     issuer,
		authorizer: authorizer,
		publisher:  publisher,
		log:        log,
	}
}

// IssueCredential regenerates the QR credential for a confirmed booking.
// The previous image is invalidated; the logical credential is unchanged.
func (s *service) IssueCredential(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*bookings.Booking, error) {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != actor.UserID {
		if err := s.authorizeEvent(ctx, actor, booking.EventID); err != nil {
			return nil, err
		}
	}

	if !booking.IsConfirmed() {
		return nil, bookings.ErrNotConfirmed
	}

	payload, url, err := s.issuer.Issue(ctx, booking)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateCredential(ctx, bookingID, payload, url); err != nil {
		return nil, err
	}

	booking.QRCode = payload
	booking.QRCodeURL = url
	return booking, nil
}

// Verify answers a gate scan. Every failure mode is a closed gate: malformed
// payload, unknown booking, a booking for a different event, or a booking
// that is not confirmed.
func (s *service) Verify(ctx context.Context, payload string, eventID uuid.UUID) (*VerificationResult, error) {
	decoded, err := DecodePayload(payload)
	if err != nil {
		return &VerificationResult{Valid: false, Reason: "malformed credential"}, nil
	}

	booking, err := s.store.GetByID(ctx, decoded.BookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			return &VerificationResult{Valid: false, Reason: "booking not found"}, nil
		}
		return nil, err
	}

	if booking.EventID != eventID {
		// A valid ticket for another event never opens this gate.
		return &VerificationResult{Valid: false, Reason: "booking does not belong to this event"}, nil
	}

	if !booking.IsConfirmed() {
		return &VerificationResult{
			Valid:  false,
			Reason: "booking is not confirmed (status: " + string(booking.Status) + ")",
		}, nil
	}

	resp := booking.ToResponse()
	return &VerificationResult{
		Valid:            true,
		AlreadyCheckedIn: booking.IsCheckedIn(),
		Booking:          &resp,
	}, nil
}

// CheckIn marks attendance exactly once.
func (s *service) CheckIn(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*bookings.Booking, error) {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeEvent(ctx, actor, booking.EventID); err != nil {
		return nil, err
	}

	checked, err := s.store.SetCheckedIn(ctx, bookingID, actor.UserID, time.Now())
	if err != nil {
		return nil, err
	}

	metrics.CheckInCompleted(checked.EventID.String())
	s.log.LogCheckIn(ctx, bookingID.String(), actor.UserID.String())
	s.publishCheckIn(ctx, checked, actor.UserID)
	return checked, nil
}

// UndoCheckIn is the organizer correction tool; no time restriction.
func (s *service) UndoCheckIn(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*bookings.Booking, error) {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeEvent(ctx, actor, booking.EventID); err != nil {
		return nil, err
	}
	return s.store.ClearCheckedIn(ctx, bookingID)
}

// BulkCheckIn applies CheckIn across a batch with partial failure. Bookings
// are partitioned by event and each event is authorized once; bookings from
// events the caller cannot manage fail individually rather than aborting the
// batch. An already-checked-in booking counts as success.
func (s *service) BulkCheckIn(ctx context.Context, actor authz.Actor, bookingIDs []uuid.UUID) (*BulkCheckInResult, error) {
	result := &BulkCheckInResult{
		Success: make([]string, 0, len(bookingIDs)),
		Failed:  make([]BulkItemFailure, 0),
	}

	authorized := make(map[uuid.UUID]bool)

	for _, id := range bookingIDs {
		booking, err := s.store.GetByID(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, BulkItemFailure{
				BookingID: id.String(),
				Reason:    err.Error(),
			})
			continue
		}

		allowed, seen := authorized[booking.EventID]
		if !seen {
			allowed = s.authorizeEvent(ctx, actor, booking.EventID) == nil
			authorized[booking.EventID] = allowed
		}
		if !allowed {
			result.Failed = append(result.Failed, BulkItemFailure{
				BookingID: id.String(),
				Reason:    authz.ErrForbidden.Error(),
			})
			continue
		}

		checked, err := s.store.SetCheckedIn(ctx, id, actor.UserID, time.Now())
		switch {
		case err == nil:
			metrics.CheckInCompleted(booking.EventID.String())
			s.publishCheckIn(ctx, checked, actor.UserID)
			result.Success = append(result.Success, id.String())
		case errors.Is(err, bookings.ErrAlreadyCheckedIn):
			result.Success = append(result.Success, id.String())
		default:
			result.Failed = append(result.Failed, BulkItemFailure{
				BookingID: id.String(),
				Reason:    err.Error(),
			})
		}
	}

	return result, nil
}

func (s *service) publishCheckIn(ctx context.Context, booking *bookings.Booking, scannerID uuid.UUID) {
	if s.publisher == nil {
		return
	}

	n := notifications.New(notifications.CheckInCompleted, booking.UserID, booking.ID, booking.EventID, map[string]interface{}{
		"booking_reference": booking.BookingReference,
		"scanner_id":        scannerID.String(),
	})
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.Warn("failed to publish check-in notification", "booking_id", booking.ID.String(), "error", err.Error())
	}
}

func (s *service) authorizeEvent(ctx context.Context, actor authz.Actor, eventID uuid.UUID) error {
	allowed, err := s.authorizer.CanManageEvent(ctx, actor, eventID)
	if err != nil {
		return err
	}
	if !allowed {
		return authz.ErrForbidden
	}
	return nil
}
