package transfers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"tickethub/internal/bookings"
	"tickethub/internal/notifications"
	"tickethub/pkg/logger"
	"tickethub/pkg/metrics"

	"github.com/google/uuid"
)

// BookingStore is the slice of booking persistence the transfer protocol
// needs. Satisfied by bookings.Repository.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	BeginTransfer(ctx context.Context, id uuid.UUID, code string, initiatedAt, expiresAt time.Time) (*bookings.Booking, error)
	FindPendingTransferByCode(ctx context.Context, code string, now time.Time) (*bookings.Booking, error)
	CompleteTransfer(ctx context.Context, id uuid.UUID, code string, newOwner uuid.UUID) (*bookings.Booking, error)
	CancelTransfer(ctx context.Context, id uuid.UUID) error
}

type Service interface {
	// Initiate opens a transfer window and returns the one-time code. The
	// code is only ever surfaced here; it is the owner's job to hand it to
	// the recipient out of band.
	Initiate(ctx context.Context, owner uuid.UUID, bookingID uuid.UUID) (*bookings.Booking, string, error)
	Accept(ctx context.Context, newOwner uuid.UUID, code string) (*bookings.Booking, error)
	Cancel(ctx context.Context, owner uuid.UUID, bookingID uuid.UUID) error
}

type service struct {
	store     BookingStore
	publisher notifications.Publisher
	ttl       time.Duration
	log       *logger.Logger
}

func NewService(store BookingStore, publisher notifications.Publisher, ttl time.Duration, log *logger.Logger) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		store:     store,
		publisher: publisher,
		ttl:       ttl,
		log:       log,
	}
}

func (s *service) Initiate(ctx context.Context, owner uuid.UUID, bookingID uuid.UUID) (*bookings.Booking, string, error) {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if booking.UserID != owner {
		return nil, "", bookings.ErrNotOwner
	}

	now := time.Now()

	// An expired pending transfer is dead weight; clear it so the owner can
	// start over without a manual cancel.
	if booking.HasPendingTransfer() && booking.TransferExpired(now) {
		if err := s.store.CancelTransfer(ctx, bookingID); err != nil {
			return nil, "", err
		}
	}

	code, err := generateTransferCode()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate transfer code: %w", err)
	}

	updated, err := s.store.BeginTransfer(ctx, bookingID, code, now, now.Add(s.ttl))
	if err != nil {
		return nil, "", err
	}

	metrics.TransferOutcome("initiated")
	return updated, code, nil
}

func (s *service) Accept(ctx context.Context, newOwner uuid.UUID, code string) (*bookings.Booking, error) {
	now := time.Now()

	booking, err := s.store.FindPendingTransferByCode(ctx, code, now)
	if err != nil {
		metrics.TransferOutcome("rejected")
		return nil, err
	}

	if booking.UserID == newOwner {
		return nil, bookings.ErrSelfTransfer
	}

	previousOwner := booking.UserID
	completed, err := s.store.CompleteTransfer(ctx, booking.ID, code, newOwner)
	if err != nil {
		metrics.TransferOutcome("rejected")
		return nil, err
	}

	metrics.TransferOutcome("completed")
	s.log.LogTransferCompleted(ctx, booking.ID.String(), previousOwner.String(), newOwner.String())
	s.publish(ctx, completed)
	return completed, nil
}

func (s *service) Cancel(ctx context.Context, owner uuid.UUID, bookingID uuid.UUID) error {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != owner {
		return bookings.ErrNotOwner
	}

	if err := s.store.CancelTransfer(ctx, bookingID); err != nil {
		return err
	}
	metrics.TransferOutcome("cancelled")
	return nil
}

func (s *service) publish(ctx context.Context, booking *bookings.Booking) {
	if s.publisher == nil {
		return
	}
	n := notifications.New(notifications.TransferCompleted,
		booking.UserID, booking.ID, booking.EventID,
		map[string]interface{}{"booking_reference": booking.BookingReference})
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to publish transfer notification", err,
			map[string]interface{}{"booking_id": booking.ID.String()})
	}
}

// generateTransferCode returns 128 bits of hex, unguessable by construction.
func generateTransferCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
