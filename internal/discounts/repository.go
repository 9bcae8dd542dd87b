package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, code *DiscountCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*DiscountCode, error)
	GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*DiscountCode, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]DiscountCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// RedeemTx increments used_count under a row lock, composed into the
	// booking transaction by the bookings repository.
	RedeemTx(tx *gorm.DB, id uuid.UUID, now time.Time) (*DiscountCode, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, code *DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*DiscountCode, error) {
	var code DiscountCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *repository) GetByCode(ctx context.Context, eventID uuid.UUID, code string) (*DiscountCode, error) {
	var discountCode DiscountCode
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND code = ?", eventID, code).
		First(&discountCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}
	return &discountCode, nil
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]DiscountCode, error) {
	var codes []DiscountCode
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&codes).Error
	return codes, err
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&DiscountCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

// RedeemTx consumes one use of the code. The row is locked FOR UPDATE so the
// uses-left check and the increment form one indivisible operation; under
// concurrent checkout a code with one use left is redeemed exactly once and
// the losing request observes ErrDiscountExhausted, failing its booking
// rather than silently dropping the discount. Must run inside the caller's
// transaction.
func (r *repository) RedeemTx(tx *gorm.DB, id uuid.UUID, now time.Time) (*DiscountCode, error) {
	var code DiscountCode
	err := tx.
		Where("id = ?", id).
		Set("gorm:query_option", "FOR UPDATE").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to lock discount code: %w", err)
	}

	if !code.IsActive {
		return nil, ErrDiscountInactive
	}
	if code.StartsAt != nil && now.Before(*code.StartsAt) {
		return nil, ErrDiscountNotYet
	}
	if code.ExpiresAt != nil && now.After(*code.ExpiresAt) {
		return nil, ErrDiscountExpired
	}
	if !code.HasUsesLeft() {
		return nil, ErrDiscountExhausted
	}

	if err := tx.Model(&DiscountCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to redeem discount code: %w", err)
	}

	code.UsedCount++
	return &code, nil
}
