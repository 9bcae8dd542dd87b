package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tickethub/internal/discounts"
	"tickethub/internal/tickettypes"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationArgs carries the inventory context for a booking creation
// transaction: the instant of the attempt and the event's own start/end as
// the fallback sales window.
type ReservationArgs struct {
	Now           time.Time
	FallbackStart time.Time
	FallbackEnd   time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByReference(ctx context.Context, reference string) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetBookingsByEventID(ctx context.Context, eventID uuid.UUID) ([]Booking, error)

	// CreateWithReservation inserts the booking, consumes inventory, and
	// optionally redeems a discount code, all in one transaction.
	CreateWithReservation(ctx context.Context, booking *Booking, args ReservationArgs) error

	// Payment-driven transitions
	Confirm(ctx context.Context, id uuid.UUID, paymentRef string) (*Booking, bool, error)
	FailWithRelease(ctx context.Context, id uuid.UUID) (*Booking, error)
	CancelWithRelease(ctx context.Context, id uuid.UUID, now time.Time) (*Booking, error)
	MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) (*Booking, error)

	// Check-in transitions
	SetCheckedIn(ctx context.Context, id uuid.UUID, scannerID uuid.UUID, at time.Time) (*Booking, error)
	ClearCheckedIn(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, payload, url string) error

	// Transfer lifecycle
	BeginTransfer(ctx context.Context, id uuid.UUID, code string, initiatedAt, expiresAt time.Time) (*Booking, error)
	FindPendingTransferByCode(ctx context.Context, code string, now time.Time) (*Booking, error)
	CompleteTransfer(ctx context.Context, id uuid.UUID, code string, newOwner uuid.UUID) (*Booking, error)
	CancelTransfer(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db             *gorm.DB
	ticketTypeRepo tickettypes.Repository
	discountRepo   discounts.Repository
}

func NewRepository(db *gorm.DB, ticketTypeRepo tickettypes.Repository, discountRepo discounts.Repository) Repository {
	return &repository{
		db:             db,
		ticketTypeRepo: ticketTypeRepo,
		discountRepo:   discountRepo,
	}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("booking_reference = ?", reference).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if query.EventID != "" {
		if eventID, err := uuid.Parse(query.EventID); err == nil {
			baseQuery = baseQuery.Where("event_id = ?", eventID)
		}
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) GetBookingsByEventID(ctx context.Context, eventID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// CreateWithReservation runs the whole purchase commit as one transaction:
// lock and decrement the ticket type counter, redeem the discount code if one
// is attached, insert the booking row. Any failure rolls everything back, so
// a rejected discount never leaves a dangling reservation.
func (r *repository) CreateWithReservation(ctx context.Context, booking *Booking, args ReservationArgs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := r.ticketTypeRepo.ReserveTx(tx, booking.TicketTypeID, booking.Quantity,
			args.Now, args.FallbackStart, args.FallbackEnd)
		if err != nil {
			return err
		}

		if booking.DiscountID != nil {
			if _, err := r.discountRepo.RedeemTx(tx, *booking.DiscountID, args.Now); err != nil {
				return err
			}
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
}

// Confirm moves a booking from pending to confirmed and marks the payment
// paid. The update is guarded on the current status, so a duplicate webhook
// finds zero rows to change and the call degrades to a no-op; the second
// return value reports whether this invocation performed the transition.
func (r *repository) Confirm(ctx context.Context, id uuid.UUID, paymentRef string) (*Booking, bool, error) {
	var booking *Booking
	var transitioned bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The payment_status guard keeps a booking whose payment already
		// failed (inventory released) from being resurrected by a late
		// success webhook.
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ? AND payment_status = ?", id, StatusPending, PaymentPending).
			Updates(map[string]interface{}{
				"status":            StatusConfirmed,
				"payment_status":    PaymentPaid,
				"payment_reference": paymentRef,
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		transitioned = result.RowsAffected > 0

		var row Booking
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if !transitioned && row.Status != StatusConfirmed {
			return fmt.Errorf("cannot confirm booking in status %s", row.Status)
		}

		booking = &row
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return booking, transitioned, nil
}

// FailWithRelease cancels a booking whose payment failed and returns the
// held inventory. The booking leaves pending in the same update that releases
// the tickets, so it can never be confirmed afterwards while its reservation
// is gone. A repeated failure webhook is a no-op.
func (r *repository) FailWithRelease(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking *Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Booking
		err := tx.Where("id = ?", id).
			Set("gorm:query_option", "FOR UPDATE").
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if row.PaymentStatus == PaymentFailed {
			booking = &row
			return nil
		}
		if row.Status != StatusPending {
			return fmt.Errorf("cannot fail payment for booking in status %s", row.Status)
		}

		now := time.Now()
		if err := tx.Model(&Booking{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":         StatusCancelled,
				"payment_status": PaymentFailed,
				"cancelled_at":   now,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}

		if err := r.ticketTypeRepo.ReleaseTx(tx, row.TicketTypeID, row.Quantity); err != nil {
			return err
		}

		row.Status = StatusCancelled
		row.PaymentStatus = PaymentFailed
		row.CancelledAt = &now
		booking = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelWithRelease cancels a booking and returns its inventory. The row is
// locked so a concurrent check-in cannot slip between the guard and the
// update. Event-level guards (start time) are checked by the service before
// entry and do not race with booking-local state.
func (r *repository) CancelWithRelease(ctx context.Context, id uuid.UUID, now time.Time) (*Booking, error) {
	var booking *Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Booking
		err := tx.Where("id = ?", id).
			Set("gorm:query_option", "FOR UPDATE").
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if row.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		if row.IsCheckedIn() {
			return ErrCannotCancelCheckedIn
		}

		if err := tx.Model(&Booking{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":         StatusCancelled,
				"payment_status": PaymentCancelled,
				"cancelled_at":   now,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}

		if err := r.ticketTypeRepo.ReleaseTx(tx, row.TicketTypeID, row.Quantity); err != nil {
			return err
		}

		row.Status = StatusCancelled
		row.PaymentStatus = PaymentCancelled
		row.CancelledAt = &now
		booking = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// MarkRefunded records an externally confirmed refund. Inventory is not
// released: the capacity window was already consumed by the confirmed seat.
// A checked-in booking is not refundable; the attendee already used it, and
// refunding it would leave check-in fields on a non-confirmed row.
func (r *repository) MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) (*Booking, error) {
	var booking Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ? AND checked_in_at IS NULL", id, StatusConfirmed).
			Updates(map[string]interface{}{
				"status":            Status(StatusRefunded),
				"payment_status":    PaymentRefunded,
				"payment_reference": refundRef,
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		// Idempotent for duplicate refund webhooks.
		if result.RowsAffected == 0 && booking.Status != StatusRefunded {
			if booking.CheckedInAt != nil {
				return ErrCannotRefundCheckedIn
			}
			return ErrNotRefundable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// SetCheckedIn marks attendance exactly once. The guarded update only lands
// on a confirmed, not-yet-checked-in row; on zero rows the current state is
// re-read to name the failed guard.
func (r *repository) SetCheckedIn(ctx context.Context, id uuid.UUID, scannerID uuid.UUID, at time.Time) (*Booking, error) {
	var booking Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ? AND checked_in_at IS NULL", id, StatusConfirmed).
			Updates(map[string]interface{}{
				"checked_in_at": at,
				"checked_in_by": scannerID,
				"updated_at":    at,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if result.RowsAffected == 0 {
			if booking.Status != StatusConfirmed {
				return ErrNotConfirmed
			}
			return ErrAlreadyCheckedIn
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ClearCheckedIn is the organizer correction tool; no time restriction.
func (r *repository) ClearCheckedIn(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND checked_in_at IS NOT NULL", id).
			Updates(map[string]interface{}{
				"checked_in_at": nil,
				"checked_in_by": nil,
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if result.RowsAffected == 0 {
			return ErrNotCheckedIn
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateCredential(ctx context.Context, id uuid.UUID, payload, url string) error {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"qr_code":     payload,
			"qr_code_url": url,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// BeginTransfer opens a transfer window. The guarded update enforces all
// three preconditions at once: confirmed, not checked in, no open transfer.
func (r *repository) BeginTransfer(ctx context.Context, id uuid.UUID, code string, initiatedAt, expiresAt time.Time) (*Booking, error) {
	var booking Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ? AND checked_in_at IS NULL AND (transfer_status IS NULL OR transfer_status <> ?)",
				id, StatusConfirmed, TransferPending).
			Updates(map[string]interface{}{
				"transfer_code":         code,
				"transfer_status":       TransferPending,
				"transfer_initiated_at": initiatedAt,
				"transfer_expires_at":   expiresAt,
				"updated_at":            initiatedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if result.RowsAffected == 0 {
			if booking.Status != StatusConfirmed {
				return ErrNotConfirmed
			}
			if booking.IsCheckedIn() {
				return ErrAlreadyCheckedIn
			}
			return ErrTransferAlreadyPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindPendingTransferByCode resolves a live transfer code. Expired codes
// simply fail the lookup; no background sweep is needed.
func (r *repository) FindPendingTransferByCode(ctx context.Context, code string, now time.Time) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("transfer_code = ? AND transfer_status = ?", code, TransferPending).
		Where("transfer_expires_at IS NULL OR transfer_expires_at > ?", now).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// CompleteTransfer reassigns ownership and burns the code. The guard on
// transfer_code and transfer_status makes acceptance exactly-once: a second
// accept with the same code matches zero rows.
func (r *repository) CompleteTransfer(ctx context.Context, id uuid.UUID, code string, newOwner uuid.UUID) (*Booking, error) {
	var booking Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Booking
		err := tx.Where("id = ?", id).
			Set("gorm:query_option", "FOR UPDATE").
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		result := tx.Model(&Booking{}).
			Where("id = ? AND transfer_code = ? AND transfer_status = ?", id, code, TransferPending).
			Updates(map[string]interface{}{
				"user_id":          newOwner,
				"transferred_from": row.UserID,
				"transfer_code":    nil,
				"transfer_status":  TransferCompleted,
				"updated_at":       time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTransferNotFound
		}

		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelTransfer clears all transfer fields on an open transfer.
func (r *repository) CancelTransfer(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND transfer_status = ?", id, TransferPending).
		Updates(map[string]interface{}{
			"transfer_code":         nil,
			"transfer_status":       nil,
			"transfer_initiated_at": nil,
			"transfer_expires_at":   nil,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoPendingTransfer
	}
	return nil
}
