package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	TypeFixed      DiscountType = "fixed"
	TypePercentage DiscountType = "percentage"
)

// IsValid checks if the discount type is valid
func (d DiscountType) IsValid() bool {
	return d == TypeFixed || d == TypePercentage
}

// DiscountCode is an organizer-issued promotion scoped to one event. The
// used_count counter is redeemed under the same row-lock discipline as ticket
// inventory; it is never decremented, even when the redeeming booking is later
// cancelled.
type DiscountCode struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID uuid.UUID `json:"event_id" gorm:"type:uuid;not null;uniqueIndex:idx_discount_event_code"`
	Code    string    `json:"code" gorm:"not null;size:50;uniqueIndex:idx_discount_event_code"`

	DiscountType   DiscountType        `json:"discount_type" gorm:"type:varchar(20);not null"`
	DiscountAmount decimal.Decimal     `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	MaxDiscount    decimal.NullDecimal `json:"max_discount,omitempty" gorm:"type:decimal(10,2)"`

	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	MaxUses        *int `json:"max_uses,omitempty"`
	UsedCount      int  `json:"used_count" gorm:"not null;default:0"`
	MinTicketCount int  `json:"min_ticket_count" gorm:"not null;default:0"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for DiscountCode
func (DiscountCode) TableName() string {
	return "discount_codes"
}

// WithinWindow reports whether now falls inside the code's validity window.
// Unset bounds are open.
func (d *DiscountCode) WithinWindow(now time.Time) bool {
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return false
	}
	return true
}

// HasUsesLeft reports whether the code may still be redeemed. A nil max_uses
// means unlimited.
func (d *DiscountCode) HasUsesLeft() bool {
	if d.MaxUses == nil {
		return true
	}
	return d.UsedCount < *d.MaxUses
}

type DiscountCodeResponse struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	Code           string     `json:"code"`
	DiscountType   string     `json:"discount_type"`
	DiscountAmount string     `json:"discount_amount"`
	MaxDiscount    *string    `json:"max_discount,omitempty"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	UsedCount      int        `json:"used_count"`
	MinTicketCount int        `json:"min_ticket_count"`
	IsActive       bool       `json:"is_active"`
}

func (d *DiscountCode) ToResponse() DiscountCodeResponse {
	resp := DiscountCodeResponse{
		ID:             d.ID.String(),
		EventID:        d.EventID.String(),
		Code:           d.Code,
		DiscountType:   string(d.DiscountType),
		DiscountAmount: d.DiscountAmount.StringFixed(2),
		StartsAt:       d.StartsAt,
		ExpiresAt:      d.ExpiresAt,
		MaxUses:        d.MaxUses,
		UsedCount:      d.UsedCount,
		MinTicketCount: d.MinTicketCount,
		IsActive:       d.IsActive,
	}
	if d.MaxDiscount.Valid {
		s := d.MaxDiscount.Decimal.StringFixed(2)
		resp.MaxDiscount = &s
	}
	return resp
}
