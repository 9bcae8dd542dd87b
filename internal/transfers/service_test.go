package transfers

import (
	"context"
	"sync"
	"testing"
	"time"

	"tickethub/internal/bookings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mirrors the guarded-update semantics of the real repository:
// begin requires no open transfer, complete burns the code exactly once.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookings.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[uuid.UUID]*bookings.Booking)}
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeStore) BeginTransfer(ctx context.Context, id uuid.UUID, code string, initiatedAt, expiresAt time.Time) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	if b.Status != bookings.StatusConfirmed {
		return nil, bookings.ErrNotConfirmed
	}
	if b.CheckedInAt != nil {
		return nil, bookings.ErrAlreadyCheckedIn
	}
	if b.HasPendingTransfer() {
		return nil, bookings.ErrTransferAlreadyPending
	}
	pending := bookings.TransferPending
	b.TransferCode = &code
	b.TransferStatus = &pending
	b.TransferInitiatedAt = &initiatedAt
	b.TransferExpiresAt = &expiresAt
	copied := *b
	return &copied, nil
}

func (f *fakeStore) FindPendingTransferByCode(ctx context.Context, code string, now time.Time) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.TransferCode != nil && *b.TransferCode == code && b.HasPendingTransfer() && !b.TransferExpired(now) {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookings.ErrTransferNotFound
}

func (f *fakeStore) CompleteTransfer(ctx context.Context, id uuid.UUID, code string, newOwner uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	if b.TransferCode == nil || *b.TransferCode != code || !b.HasPendingTransfer() {
		return nil, bookings.ErrTransferNotFound
	}
	from := b.UserID
	completed := bookings.TransferCompleted
	b.UserID = newOwner
	b.TransferredFrom = &from
	b.TransferCode = nil
	b.TransferStatus = &completed
	copied := *b
	return &copied, nil
}

func (f *fakeStore) CancelTransfer(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return bookings.ErrBookingNotFound
	}
	if !b.HasPendingTransfer() {
		return bookings.ErrNoPendingTransfer
	}
	b.TransferCode = nil
	b.TransferStatus = nil
	b.TransferInitiatedAt = nil
	b.TransferExpiresAt = nil
	return nil
}

func confirmedBooking(owner uuid.UUID) *bookings.Booking {
	return &bookings.Booking{
		ID:               uuid.New(),
		UserID:           owner,
		EventID:          uuid.New(),
		TicketTypeID:     uuid.New(),
		Quantity:         1,
		Status:           bookings.StatusConfirmed,
		PaymentStatus:    bookings.PaymentPaid,
		BookingReference: "EVT-20260601-ABCDEF",
	}
}

func TestInitiateTransfer(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	booking := confirmedBooking(owner)
	store.bookings[booking.ID] = booking
	svc := NewService(store, nil, 24*time.Hour, nil)

	updated, code, err := svc.Initiate(context.Background(), owner, booking.ID)
	require.NoError(t, err)
	assert.Len(t, code, 32)
	assert.True(t, updated.HasPendingTransfer())
	require.NotNil(t, updated.TransferExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *updated.TransferExpiresAt, time.Minute)
}

func TestInitiateGuards(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	svc := NewService(store, nil, 24*time.Hour, nil)

	t.Run("not owner", func(t *testing.T) {
		b := confirmedBooking(owner)
		store.bookings[b.ID] = b
		_, _, err := svc.Initiate(context.Background(), uuid.New(), b.ID)
		assert.ErrorIs(t, err, bookings.ErrNotOwner)
	})

	t.Run("pending booking", func(t *testing.T) {
		b := confirmedBooking(owner)
		b.Status = bookings.StatusPending
		store.bookings[b.ID] = b
		_, _, err := svc.Initiate(context.Background(), owner, b.ID)
		assert.ErrorIs(t, err, bookings.ErrNotConfirmed)
	})

	t.Run("checked in", func(t *testing.T) {
		b := confirmedBooking(owner)
		now := time.Now()
		b.CheckedInAt = &now
		store.bookings[b.ID] = b
		_, _, err := svc.Initiate(context.Background(), owner, b.ID)
		assert.ErrorIs(t, err, bookings.ErrAlreadyCheckedIn)
	})

	t.Run("second initiate blocked", func(t *testing.T) {
		b := confirmedBooking(owner)
		store.bookings[b.ID] = b
		_, _, err := svc.Initiate(context.Background(), owner, b.ID)
		require.NoError(t, err)
		_, _, err = svc.Initiate(context.Background(), owner, b.ID)
		assert.ErrorIs(t, err, bookings.ErrTransferAlreadyPending)
	})
}

func TestInitiateClearsExpiredTransfer(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	booking := confirmedBooking(owner)
	pending := bookings.TransferPending
	code := "deadbeefdeadbeefdeadbeefdeadbeef"
	past := time.Now().Add(-time.Hour)
	booking.TransferCode = &code
	booking.TransferStatus = &pending
	booking.TransferExpiresAt = &past
	store.bookings[booking.ID] = booking
	svc := NewService(store, nil, 24*time.Hour, nil)

	updated, newCode, err := svc.Initiate(context.Background(), owner, booking.ID)
	require.NoError(t, err)
	assert.NotEqual(t, code, newCode)
	assert.True(t, updated.HasPendingTransfer())
	assert.False(t, updated.TransferExpired(time.Now()))
}

func TestAcceptTransferExactlyOnce(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	booking := confirmedBooking(owner)
	store.bookings[booking.ID] = booking
	svc := NewService(store, nil, 24*time.Hour, nil)

	_, code, err := svc.Initiate(context.Background(), owner, booking.ID)
	require.NoError(t, err)

	recipient := uuid.New()
	accepted, err := svc.Accept(context.Background(), recipient, code)
	require.NoError(t, err)
	assert.Equal(t, recipient, accepted.UserID)
	require.NotNil(t, accepted.TransferredFrom)
	assert.Equal(t, owner, *accepted.TransferredFrom)
	assert.Nil(t, accepted.TransferCode)

	// The burned code cannot be accepted again by anyone.
	_, err = svc.Accept(context.Background(), uuid.New(), code)
	assert.ErrorIs(t, err, bookings.ErrTransferNotFound)
}

func TestAcceptRejectsSelfTransfer(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	booking := confirmedBooking(owner)
	store.bookings[booking.ID] = booking
	svc := NewService(store, nil, 24*time.Hour, nil)

	_, code, err := svc.Initiate(context.Background(), owner, booking.ID)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), owner, code)
	assert.ErrorIs(t, err, bookings.ErrSelfTransfer)
}

func TestAcceptRejectsExpiredCode(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	booking := confirmedBooking(owner)
	store.bookings[booking.ID] = booking

	// TTL so short the code is dead on arrival.
	svc := NewService(store, nil, time.Nanosecond, nil)
	_, code, err := svc.Initiate(context.Background(), owner, booking.ID)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.Accept(context.Background(), uuid.New(), code)
	assert.ErrorIs(t, err, bookings.ErrTransferNotFound)
}

func TestCancelTransfer(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	booking := confirmedBooking(owner)
	store.bookings[booking.ID] = booking
	svc := NewService(store, nil, 24*time.Hour, nil)

	_, code, err := svc.Initiate(context.Background(), owner, booking.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Cancel(context.Background(), uuid.New(), booking.ID), bookings.ErrNotOwner)
	require.NoError(t, svc.Cancel(context.Background(), owner, booking.ID))

	_, err = svc.Accept(context.Background(), uuid.New(), code)
	assert.ErrorIs(t, err, bookings.ErrTransferNotFound)

	assert.ErrorIs(t, svc.Cancel(context.Background(), owner, booking.ID), bookings.ErrNoPendingTransfer)
}
