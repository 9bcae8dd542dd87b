package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking is one purchase attempt for a quantity of one ticket type. It is
// never hard-deleted; cancelled and refunded rows stay behind for the audit
// trail. Transfer fields hold ids and codes rather than object references.
type Booking struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	EventID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	TicketTypeID uuid.UUID  `gorm:"type:uuid;index;not null" json:"ticket_type_id"`
	DiscountID   *uuid.UUID `gorm:"type:uuid" json:"discount_id,omitempty"`

	Quantity       int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`

	Status        Status        `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`

	BookingReference string  `gorm:"unique;not null;size:32" json:"booking_reference"`
	PaymentReference *string `gorm:"size:255" json:"payment_reference,omitempty"`

	QRCode    string `gorm:"type:text" json:"qr_code,omitempty"`
	QRCodeURL string `gorm:"size:512" json:"qr_code_url,omitempty"`

	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CheckedInBy *uuid.UUID `gorm:"type:uuid" json:"checked_in_by,omitempty"`

	TransferCode        *string         `gorm:"size:64;index" json:"-"`
	TransferStatus      *TransferStatus `gorm:"type:varchar(20)" json:"transfer_status,omitempty"`
	TransferInitiatedAt *time.Time      `json:"transfer_initiated_at,omitempty"`
	TransferExpiresAt   *time.Time      `json:"transfer_expires_at,omitempty"`
	TransferredFrom     *uuid.UUID      `gorm:"type:uuid" json:"transferred_from,omitempty"`

	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsCheckedIn() bool {
	return b.CheckedInAt != nil
}

// HasPendingTransfer reports whether an ownership transfer is currently open.
func (b *Booking) HasPendingTransfer() bool {
	return b.TransferStatus != nil && *b.TransferStatus == TransferPending
}

// TransferExpired reports whether the open transfer's code is past its TTL.
func (b *Booking) TransferExpired(now time.Time) bool {
	return b.TransferExpiresAt != nil && now.After(*b.TransferExpiresAt)
}
