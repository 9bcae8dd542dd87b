package bookings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tickethub/internal/discounts"
	"tickethub/internal/events"
	"tickethub/internal/shared/authz"
	"tickethub/internal/tickettypes"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes. The repository fake enforces the same atomicity contract
// as the real one: remaining-count check and decrement happen under one lock.

type fakeEventRepo struct {
	events map[uuid.UUID]*events.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, e *events.Event) error { return nil }
func (f *fakeEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return e, nil
}
func (f *fakeEventRepo) List(ctx context.Context, q events.EventListQuery) ([]events.Event, int64, error) {
	return nil, 0, nil
}
func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to events.Status) error {
	return nil
}
func (f *fakeEventRepo) OrganizerOf(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	e, ok := f.events[eventID]
	if !ok {
		return uuid.Nil, events.ErrEventNotFound
	}
	return e.OrganizerID, nil
}

type fakeTicketTypeRepo struct {
	ticketTypes map[uuid.UUID]*tickettypes.TicketType
}

func (f *fakeTicketTypeRepo) Create(ctx context.Context, tt *tickettypes.TicketType) error {
	return nil
}
func (f *fakeTicketTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*tickettypes.TicketType, error) {
	tt, ok := f.ticketTypes[id]
	if !ok {
		return nil, tickettypes.ErrTicketTypeNotFound
	}
	copied := *tt
	return &copied, nil
}
func (f *fakeTicketTypeRepo) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]tickettypes.TicketType, error) {
	return nil, nil
}
func (f *fakeTicketTypeRepo) Update(ctx context.Context, tt *tickettypes.TicketType) error {
	return nil
}
func (f *fakeTicketTypeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to tickettypes.Status) error {
	tt, ok := f.ticketTypes[id]
	if !ok || tt.Status != from {
		return tickettypes.ErrTicketTypeNotFound
	}
	tt.Status = to
	return nil
}
func (f *fakeTicketTypeRepo) ReserveTx(tx *gorm.DB, id uuid.UUID, quantity int, now, fallbackStart, fallbackEnd time.Time) (*tickettypes.TicketType, error) {
	panic("not used by the service fake")
}
func (f *fakeTicketTypeRepo) ReleaseTx(tx *gorm.DB, id uuid.UUID, quantity int) error {
	panic("not used by the service fake")
}

type fakeDiscountRepo struct {
	codes map[string]*discounts.DiscountCode
}

func (f *fakeDiscountRepo) Create(ctx context.Context, c *discounts.DiscountCode) error { return nil }
func (f *fakeDiscountRepo) GetByID(ctx context.Context, id uuid.UUID) (*discounts.DiscountCode, error) {
	return nil, discounts.ErrDiscountNotFound
}
func (f *fakeDiscountRepo) GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*discounts.DiscountCode, error) {
	c, ok := f.codes[code]
	if !ok {
		return nil, discounts.ErrDiscountNotFound
	}
	return c, nil
}
func (f *fakeDiscountRepo) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]discounts.DiscountCode, error) {
	return nil, nil
}
func (f *fakeDiscountRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return nil
}
func (f *fakeDiscountRepo) RedeemTx(tx *gorm.DB, id uuid.UUID, now time.Time) (*discounts.DiscountCode, error) {
	panic("not used by the service fake")
}

// fakeBookingRepo keeps an authoritative remaining counter per ticket type
// and mutates it under a mutex, mirroring the row-locked transaction.
type fakeBookingRepo struct {
	mu           sync.Mutex
	remaining    map[uuid.UUID]int
	closed       map[uuid.UUID]bool
	bookings     map[uuid.UUID]*Booking
	discountMax  map[uuid.UUID]int
	discountUses map[uuid.UUID]int
	confirms     int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		remaining:    make(map[uuid.UUID]int),
		closed:       make(map[uuid.UUID]bool),
		bookings:     make(map[uuid.UUID]*Booking),
		discountMax:  make(map[uuid.UUID]int),
		discountUses: make(map[uuid.UUID]int),
	}
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) GetByReference(ctx context.Context, ref string) (*Booking, error) {
	return nil, ErrBookingNotFound
}

func (f *fakeBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, q BookingListQuery) ([]Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) GetBookingsByEventID(ctx context.Context, eventID uuid.UUID) ([]Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) CreateWithReservation(ctx context.Context, booking *Booking, args ReservationArgs) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed[booking.TicketTypeID] {
		return tickettypes.ErrSalesClosed
	}

	left := f.remaining[booking.TicketTypeID]
	if left < booking.Quantity {
		if left == 0 {
			return tickettypes.ErrSoldOut
		}
		return &tickettypes.InsufficientTicketsError{Available: left, Requested: booking.Quantity}
	}

	// Redemption happens in the same transaction as the reservation; when it
	// fails, no inventory is consumed either.
	if booking.DiscountID != nil {
		if max, capped := f.discountMax[*booking.DiscountID]; capped && f.discountUses[*booking.DiscountID] >= max {
			return discounts.ErrDiscountExhausted
		}
		f.discountUses[*booking.DiscountID]++
	}

	f.remaining[booking.TicketTypeID] = left - booking.Quantity

	booking.ID = uuid.New()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) Confirm(ctx context.Context, id uuid.UUID, paymentRef string) (*Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, false, ErrBookingNotFound
	}
	if b.Status == StatusConfirmed {
		copied := *b
		return &copied, false, nil
	}
	if b.Status != StatusPending || b.PaymentStatus != PaymentPending {
		return nil, false, fmt.Errorf("cannot confirm booking in status %s", b.Status)
	}
	b.Status = StatusConfirmed
	b.PaymentStatus = PaymentPaid
	b.PaymentReference = &paymentRef
	f.confirms++
	copied := *b
	return &copied, true, nil
}

func (f *fakeBookingRepo) FailWithRelease(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.PaymentStatus != PaymentFailed {
		if b.Status != StatusPending {
			return nil, fmt.Errorf("cannot fail booking in status %s", b.Status)
		}
		now := time.Now()
		b.Status = StatusCancelled
		b.PaymentStatus = PaymentFailed
		b.CancelledAt = &now
		f.remaining[b.TicketTypeID] += b.Quantity
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) CancelWithRelease(ctx context.Context, id uuid.UUID, now time.Time) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if b.CheckedInAt != nil {
		return nil, ErrCannotCancelCheckedIn
	}
	b.Status = StatusCancelled
	b.PaymentStatus = PaymentCancelled
	b.CancelledAt = &now
	f.remaining[b.TicketTypeID] += b.Quantity
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.Status != StatusConfirmed && b.Status != StatusRefunded {
		return nil, ErrNotRefundable
	}
	if b.Status == StatusConfirmed && b.CheckedInAt != nil {
		return nil, ErrCannotRefundCheckedIn
	}
	b.Status = StatusRefunded
	b.PaymentStatus = PaymentRefunded
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) SetCheckedIn(ctx context.Context, id uuid.UUID, scannerID uuid.UUID, at time.Time) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}
	if b.CheckedInAt != nil {
		return nil, ErrAlreadyCheckedIn
	}
	b.CheckedInAt = &at
	b.CheckedInBy = &scannerID
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ClearCheckedIn(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.CheckedInAt == nil {
		return nil, ErrNotCheckedIn
	}
	b.CheckedInAt = nil
	b.CheckedInBy = nil
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) UpdateCredential(ctx context.Context, id uuid.UUID, payload, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.QRCode = payload
	b.QRCodeURL = url
	return nil
}

func (f *fakeBookingRepo) BeginTransfer(ctx context.Context, id uuid.UUID, code string, initiatedAt, expiresAt time.Time) (*Booking, error) {
	return nil, ErrBookingNotFound
}

func (f *fakeBookingRepo) FindPendingTransferByCode(ctx context.Context, code string, now time.Time) (*Booking, error) {
	return nil, ErrTransferNotFound
}

func (f *fakeBookingRepo) CompleteTransfer(ctx context.Context, id uuid.UUID, code string, newOwner uuid.UUID) (*Booking, error) {
	return nil, ErrTransferNotFound
}

func (f *fakeBookingRepo) CancelTransfer(ctx context.Context, id uuid.UUID) error {
	return ErrNoPendingTransfer
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanManageEvent(ctx context.Context, actor authz.Actor, eventID uuid.UUID) (bool, error) {
	return true, nil
}

type countingIssuer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingIssuer) Issue(ctx context.Context, booking *Booking) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return "payload-" + booking.ID.String(), "/static/qrcodes/" + booking.ID.String() + ".png", nil
}

type fixture struct {
	service   Service
	repo      *fakeBookingRepo
	types     *fakeTicketTypeRepo
	issuer    *countingIssuer
	eventID   uuid.UUID
	ticketID  uuid.UUID
	discounts *fakeDiscountRepo
}

func newFixture(t *testing.T, remaining int, price float64) *fixture {
	t.Helper()

	eventID := uuid.New()
	ticketID := uuid.New()
	now := time.Now()

	eventRepo := &fakeEventRepo{events: map[uuid.UUID]*events.Event{
		eventID: {
			ID:          eventID,
			Name:        "Go Conference",
			Status:      events.StatusPublished,
			StartTime:   now.Add(24 * time.Hour),
			EndTime:     now.Add(32 * time.Hour),
			OrganizerID: uuid.New(),
		},
	}}

	ticketRepo := &fakeTicketTypeRepo{ticketTypes: map[uuid.UUID]*tickettypes.TicketType{
		ticketID: {
			ID:               ticketID,
			EventID:          eventID,
			Name:             "Regular",
			Price:            price,
			Quantity:         remaining,
			TicketsRemaining: remaining,
			Status:           tickettypes.StatusActive,
			IsAvailable:      true,
		},
	}}

	discountRepo := &fakeDiscountRepo{codes: map[string]*discounts.DiscountCode{}}
	repo := newFakeBookingRepo()
	repo.remaining[ticketID] = remaining
	issuer := &countingIssuer{}

	svc := NewService(ServiceDeps{
		Repo:           repo,
		EventRepo:      eventRepo,
		TicketTypeRepo: ticketRepo,
		DiscountRepo:   discountRepo,
		Credentials:    issuer,
		Authorizer:     allowAllAuthorizer{},
	})

	return &fixture{
		service:   svc,
		repo:      repo,
		types:     ticketRepo,
		issuer:    issuer,
		eventID:   eventID,
		ticketID:  ticketID,
		discounts: discountRepo,
	}
}

func TestCreateBookingPricing(t *testing.T) {
	f := newFixture(t, 10, 50.00)

	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     3,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, PaymentPending, booking.PaymentStatus)
	assert.True(t, booking.Subtotal.Equal(decimal.NewFromFloat(150.00)))
	assert.True(t, booking.DiscountAmount.IsZero())
	assert.True(t, booking.TotalPrice.Equal(decimal.NewFromFloat(150.00)))
	assert.Regexp(t, `^EVT-\d{8}-[A-Z2-9]{6}$`, booking.BookingReference)
	assert.Equal(t, 7, f.repo.remaining[f.ticketID])
}

func TestCreateBookingWithPercentageDiscount(t *testing.T) {
	f := newFixture(t, 10, 100.00)
	f.discounts.codes["TEN"] = &discounts.DiscountCode{
		ID:             uuid.New(),
		EventID:        f.eventID,
		Code:           "TEN",
		DiscountType:   discounts.TypePercentage,
		DiscountAmount: decimal.NewFromInt(10),
		IsActive:       true,
	}

	code := "TEN"
	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     2,
		DiscountCode: &code,
	})
	require.NoError(t, err)

	assert.True(t, booking.DiscountAmount.Equal(decimal.NewFromInt(20)), "got %s", booking.DiscountAmount)
	assert.True(t, booking.TotalPrice.Equal(decimal.NewFromInt(180)), "got %s", booking.TotalPrice)
	require.NotNil(t, booking.DiscountID)
}

func TestCreateBookingFloorsTotalAtZero(t *testing.T) {
	f := newFixture(t, 10, 10.00)
	f.discounts.codes["BIG"] = &discounts.DiscountCode{
		ID:             uuid.New(),
		EventID:        f.eventID,
		Code:           "BIG",
		DiscountType:   discounts.TypeFixed,
		DiscountAmount: decimal.NewFromInt(50),
		IsActive:       true,
	}

	code := "BIG"
	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
		DiscountCode: &code,
	})
	require.NoError(t, err)

	assert.True(t, booking.TotalPrice.IsZero(), "got %s", booking.TotalPrice)
}

func TestCreateBookingInvalidDiscountRejected(t *testing.T) {
	f := newFixture(t, 10, 10.00)
	f.discounts.codes["DEAD"] = &discounts.DiscountCode{
		ID:             uuid.New(),
		EventID:        f.eventID,
		Code:           "DEAD",
		DiscountType:   discounts.TypeFixed,
		DiscountAmount: decimal.NewFromInt(5),
		IsActive:       false,
	}

	code := "DEAD"
	_, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
		DiscountCode: &code,
	})
	assert.ErrorIs(t, err, discounts.ErrDiscountInactive)
	assert.Equal(t, 10, f.repo.remaining[f.ticketID], "rejected booking must not hold inventory")
}

func TestConcurrentCreateNonOversell(t *testing.T) {
	const capacity = 5
	const attempts = 20

	f := newFixture(t, capacity, 25.00)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
				EventID:      f.eventID.String(),
				TicketTypeID: f.ticketID.String(),
				Quantity:     1,
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}

	assert.Equal(t, capacity, successes)
	assert.Equal(t, 0, f.repo.remaining[f.ticketID])
	assert.Len(t, f.repo.bookings, capacity)
}

func TestConfirmIdempotent(t *testing.T) {
	f := newFixture(t, 10, 30.00)

	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	require.NoError(t, err)

	first, err := f.service.ConfirmBooking(context.Background(), booking.ID, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, first.Status)
	assert.Equal(t, PaymentPaid, first.PaymentStatus)
	assert.NotEmpty(t, first.QRCodeURL)

	second, err := f.service.ConfirmBooking(context.Background(), booking.ID, "txn-1-retry")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, second.Status)

	assert.Equal(t, 1, f.repo.confirms, "transition must happen exactly once")
	assert.Equal(t, 1, f.issuer.calls, "credential must be issued exactly once")
	assert.Equal(t, 9, f.repo.remaining[f.ticketID], "inventory must not move on confirm")
}

func TestFailReleasesInventory(t *testing.T) {
	f := newFixture(t, 5, 30.00)

	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     2,
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.repo.remaining[f.ticketID])

	failed, err := f.service.FailBooking(context.Background(), booking.ID, "card_declined")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, failed.Status)
	assert.Equal(t, PaymentFailed, failed.PaymentStatus)
	assert.NotNil(t, failed.CancelledAt)
	assert.Equal(t, 5, f.repo.remaining[f.ticketID])
}

func TestLateConfirmAfterFailureRejected(t *testing.T) {
	f := newFixture(t, 1, 30.00)

	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	require.NoError(t, err)

	_, err = f.service.FailBooking(context.Background(), booking.ID, "card_declined")
	require.NoError(t, err)
	require.Equal(t, 1, f.repo.remaining[f.ticketID])

	// The released ticket goes to the next buyer.
	second, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	require.NoError(t, err)
	require.Equal(t, 0, f.repo.remaining[f.ticketID])

	// A delayed success webhook for the failed booking must not revive it:
	// its inventory is gone, so confirming it would oversell.
	_, err = f.service.ConfirmBooking(context.Background(), booking.ID, "txn-late")
	assert.Error(t, err)

	stale, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stale.Status)
	assert.Equal(t, PaymentFailed, stale.PaymentStatus)
	assert.Equal(t, 0, f.repo.confirms)
	assert.Equal(t, 0, f.issuer.calls)

	_, err = f.service.ConfirmBooking(context.Background(), second.ID, "txn-2")
	require.NoError(t, err)
	assert.Equal(t, 0, f.repo.remaining[f.ticketID], "capacity stays at one confirmed seat")
}

func TestCancelGuards(t *testing.T) {
	f := newFixture(t, 5, 30.00)
	owner := uuid.New()
	actor := authz.Actor{UserID: owner}

	booking, err := f.service.CreateBooking(context.Background(), owner, CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	require.NoError(t, err)

	cancelled, err := f.service.CancelBooking(context.Background(), actor, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.repo.remaining[f.ticketID])

	_, err = f.service.CancelBooking(context.Background(), actor, booking.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelCheckedInRejected(t *testing.T) {
	f := newFixture(t, 5, 30.00)
	owner := uuid.New()

	booking, err := f.service.CreateBooking(context.Background(), owner, CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	require.NoError(t, err)

	_, err = f.service.ConfirmBooking(context.Background(), booking.ID, "txn-9")
	require.NoError(t, err)
	_, err = f.repo.SetCheckedIn(context.Background(), booking.ID, uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = f.service.CancelBooking(context.Background(), authz.Actor{UserID: owner}, booking.ID)
	assert.ErrorIs(t, err, ErrCannotCancelCheckedIn)
}

func TestRefundKeepsInventoryConsumed(t *testing.T) {
	f := newFixture(t, 5, 30.00)

	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     2,
	})
	require.NoError(t, err)

	_, err = f.service.ConfirmBooking(context.Background(), booking.ID, "txn-5")
	require.NoError(t, err)

	refunded, err := f.service.RefundBooking(context.Background(), booking.ID, "re_123")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)
	assert.Equal(t, PaymentRefunded, refunded.PaymentStatus)
	assert.Equal(t, 3, f.repo.remaining[f.ticketID], "refund must not restore inventory")
}

func TestRefundCheckedInRejected(t *testing.T) {
	f := newFixture(t, 5, 30.00)

	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	require.NoError(t, err)

	_, err = f.service.ConfirmBooking(context.Background(), booking.ID, "txn-7")
	require.NoError(t, err)
	_, err = f.repo.SetCheckedIn(context.Background(), booking.ID, uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = f.service.RefundBooking(context.Background(), booking.ID, "re_456")
	assert.ErrorIs(t, err, ErrCannotRefundCheckedIn)

	stored, err := f.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.NotNil(t, stored.CheckedInAt, "check-in must survive the rejected refund")
}

func TestDiscountBelowMinimumNotRedeemed(t *testing.T) {
	f := newFixture(t, 10, 40.00)

	discountID := uuid.New()
	f.discounts.codes["GROUP5"] = &discounts.DiscountCode{
		ID:             discountID,
		EventID:        f.eventID,
		Code:           "GROUP5",
		DiscountType:   discounts.TypeFixed,
		DiscountAmount: decimal.NewFromInt(25),
		MinTicketCount: 5,
		IsActive:       true,
	}

	code := "GROUP5"
	booking, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
		DiscountCode: &code,
	})
	require.NoError(t, err)

	assert.True(t, booking.DiscountAmount.IsZero())
	assert.Nil(t, booking.DiscountID, "a code that yields no discount must not attach")
	assert.Equal(t, 0, f.repo.discountUses[discountID], "no use may be burned")
}

func TestSalesClosedExpiresTicketType(t *testing.T) {
	f := newFixture(t, 10, 40.00)
	f.repo.closed[f.ticketID] = true

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:      f.eventID.String(),
		TicketTypeID: f.ticketID.String(),
		Quantity:     1,
	})
	assert.ErrorIs(t, err, tickettypes.ErrSalesClosed)

	// The derived expiry must land even though the booking transaction
	// rolled back.
	assert.Equal(t, tickettypes.StatusExpired, f.types.ticketTypes[f.ticketID].Status)
}

func TestConcurrentRedemptionSingleUseCode(t *testing.T) {
	f := newFixture(t, 50, 40.00)

	one := 1
	discountID := uuid.New()
	f.discounts.codes["ONCE"] = &discounts.DiscountCode{
		ID:             discountID,
		EventID:        f.eventID,
		Code:           "ONCE",
		DiscountType:   discounts.TypeFixed,
		DiscountAmount: decimal.NewFromInt(10),
		MaxUses:        &one,
		IsActive:       true,
	}
	f.repo.discountMax[discountID] = 1

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := "ONCE"
			_, errs[i] = f.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
				EventID:      f.eventID.String(),
				TicketTypeID: f.ticketID.String(),
				Quantity:     1,
				DiscountCode: &code,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, discounts.ErrDiscountExhausted)
		}
	}

	assert.Equal(t, 1, succeeded, "single-use code must redeem exactly once")
	assert.Equal(t, 1, f.repo.discountUses[discountID])
	assert.Equal(t, 49, f.repo.remaining[f.ticketID], "losing attempts must not hold inventory")
}
