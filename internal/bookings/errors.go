package bookings

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrEventEnded      = errors.New("event has already ended")

	// Cancellation guards
	ErrAlreadyCancelled      = errors.New("booking is already cancelled")
	ErrCannotCancelCheckedIn = errors.New("checked-in bookings cannot be cancelled")
	ErrEventAlreadyStarted   = errors.New("event has already started")

	// Check-in guards
	ErrNotConfirmed     = errors.New("booking is not confirmed")
	ErrAlreadyCheckedIn = errors.New("booking is already checked in")
	ErrNotCheckedIn     = errors.New("booking is not checked in")

	// Transfer guards
	ErrTransferAlreadyPending = errors.New("booking already has a pending transfer")
	ErrNoPendingTransfer      = errors.New("booking has no pending transfer")
	ErrTransferNotFound       = errors.New("transfer code is invalid or expired")
	ErrSelfTransfer           = errors.New("cannot transfer a booking to its current owner")

	// Refund guards
	ErrNotRefundable         = errors.New("only confirmed bookings can be refunded")
	ErrCannotRefundCheckedIn = errors.New("checked-in bookings cannot be refunded")

	ErrNotOwner = errors.New("booking does not belong to this user")
)
