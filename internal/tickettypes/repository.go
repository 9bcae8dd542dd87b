package tickettypes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, ticketType *TicketType) error
	GetByID(ctx context.Context, id uuid.UUID) (*TicketType, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error)
	Update(ctx context.Context, ticketType *TicketType) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	// Concurrency-safe inventory operations, composed into the booking
	// transaction by the bookings repository.
	ReserveTx(tx *gorm.DB, id uuid.UUID, quantity int, now, fallbackStart, fallbackEnd time.Time) (*TicketType, error)
	ReleaseTx(tx *gorm.DB, id uuid.UUID, quantity int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticketType *TicketType) error {
	return r.db.WithContext(ctx).Create(ticketType).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*TicketType, error) {
	var ticketType TicketType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticketType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &ticketType, nil
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	var ticketTypes []TicketType
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("price ASC").
		Find(&ticketTypes).Error
	return ticketTypes, err
}

func (r *repository) Update(ctx context.Context, ticketType *TicketType) error {
	return r.db.WithContext(ctx).Save(ticketType).Error
}

// UpdateStatus performs a guarded transition: the update only lands when the
// row is still in the expected source status.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	result := r.db.WithContext(ctx).
		Model(&TicketType{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}

// ReserveTx atomically consumes quantity from the shared counter. The row is
// locked FOR UPDATE so the remaining-count check and the decrement form one
// indivisible operation; two concurrent requests for the last ticket cannot
// both succeed. Must run inside the caller's transaction.
func (r *repository) ReserveTx(tx *gorm.DB, id uuid.UUID, quantity int, now, fallbackStart, fallbackEnd time.Time) (*TicketType, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var ticketType TicketType
	err := tx.
		Where("id = ?", id).
		Set("gorm:query_option", "FOR UPDATE").
		First(&ticketType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("failed to lock ticket type: %w", err)
	}

	if ticketType.TicketsRemaining < 0 || ticketType.TicketsRemaining > ticketType.Quantity {
		return nil, fmt.Errorf("%w: remaining=%d quantity=%d ticket_type=%s",
			ErrInventoryCorrupt, ticketType.TicketsRemaining, ticketType.Quantity, id)
	}

	// Terminal and not-yet-active types never touch the counter.
	if !ticketType.Status.AcceptsReservations() {
		return nil, ErrTicketTypeNotOnSale
	}
	if !ticketType.IsAvailable {
		return nil, ErrTicketTypeNotOnSale
	}

	start, end := ticketType.SaleWindow(fallbackStart, fallbackEnd)
	if now.Before(start) {
		return nil, ErrSalesNotStarted
	}
	if now.After(end) {
		// Writing expired here would roll back with the caller's aborted
		// booking transaction; the caller persists it separately.
		return nil, ErrSalesClosed
	}

	if ticketType.ExceedsMaxPerOrder(quantity) {
		return nil, ErrExceedsMaxPerOrder
	}

	if ticketType.TicketsRemaining < quantity {
		if ticketType.TicketsRemaining == 0 {
			return nil, ErrSoldOut
		}
		return nil, &InsufficientTicketsError{
			Available: ticketType.TicketsRemaining,
			Requested: quantity,
		}
	}

	newRemaining := ticketType.TicketsRemaining - quantity
	updates := map[string]interface{}{
		"tickets_remaining": newRemaining,
		"updated_at":        time.Now(),
	}
	if newRemaining == 0 && ticketType.Status.CanTransitionTo(StatusSoldOut) {
		updates["status"] = StatusSoldOut
	}

	if err := tx.Model(&TicketType{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reserve tickets: %w", err)
	}

	ticketType.TicketsRemaining = newRemaining
	if newRemaining == 0 && ticketType.Status == StatusActive {
		ticketType.Status = StatusSoldOut
	}

	return &ticketType, nil
}

// ReleaseTx restores quantity to the counter (failed payment, cancellation).
// The restored count is capped at the total capacity, and a sold_out type
// flips back to active once stock exists again. Must run inside the caller's
// transaction.
func (r *repository) ReleaseTx(tx *gorm.DB, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	var ticketType TicketType
	err := tx.
		Where("id = ?", id).
		Set("gorm:query_option", "FOR UPDATE").
		First(&ticketType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketTypeNotFound
		}
		return fmt.Errorf("failed to lock ticket type: %w", err)
	}

	newRemaining := ticketType.TicketsRemaining + quantity
	if newRemaining > ticketType.Quantity {
		newRemaining = ticketType.Quantity
	}

	updates := map[string]interface{}{
		"tickets_remaining": newRemaining,
		"updated_at":        time.Now(),
	}
	if ticketType.Status == StatusSoldOut && newRemaining > 0 {
		updates["status"] = StatusActive
	}

	if err := tx.Model(&TicketType{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to release tickets: %w", err)
	}

	return nil
}
