package database

import (
	"tickethub/internal/bookings"
	"tickethub/internal/discounts"
	"tickethub/internal/events"
	"tickethub/internal/tickettypes"
	"tickethub/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&tickettypes.TicketType{},
		&discounts.DiscountCode{},
		&bookings.Booking{},
	)
}
