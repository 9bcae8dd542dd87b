package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tickethub/internal/discounts"
	"tickethub/internal/events"
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/database"
	"tickethub/internal/tickettypes"
	"tickethub/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting TicketHub Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"bookings",
		"discount_codes",
		"ticket_types",
		"events",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	eventIDs, err := s.SeedEvents(userIDs["organizer"])
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.SeedTicketTypes(eventIDs); err != nil {
		return fmt.Errorf("failed to seed ticket types: %w", err)
	}

	if err := s.SeedDiscountCodes(eventIDs); err != nil {
		return fmt.Errorf("failed to seed discount codes: %w", err)
	}

	// Clear Redis so availability reads are not served from stale cache
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates an admin, an organizer, and two attendees.
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// All seeded accounts share the password "qwerty"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@tickethub.dev", users.RoleAdmin},
		{"organizer", "Olive", "Reyes", "organizer@tickethub.dev", users.RoleOrganizer},
		{"attendee1", "Arun", "Patel", "arun@tickethub.dev", users.RoleAttendee},
		{"attendee2", "Bea", "Kovacs", "bea@tickethub.dev", users.RoleAttendee},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedEvents creates a published event in the near future and a draft one.
func (s *Seeder) SeedEvents(organizerID uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  🎫 Seeding events...")

	eventIDs := make(map[string]uuid.UUID)

	eventsData := []struct {
		key         string
		name        string
		description string
		venue       string
		startsIn    time.Duration
		duration    time.Duration
		status      events.Status
	}{
		{"conference", "GopherConf 2026", "Two days of Go talks and workshops", "Harborview Convention Center", 30 * 24 * time.Hour, 48 * time.Hour, events.StatusPublished},
		{"concert", "Midnight Static Live", "One-night indie rock show", "The Velvet Room", 14 * 24 * time.Hour, 4 * time.Hour, events.StatusPublished},
		{"draft", "Winter Food Festival", "Street food from thirty vendors", "Riverside Park", 90 * 24 * time.Hour, 8 * time.Hour, events.StatusDraft},
	}

	for _, eventData := range eventsData {
		start := time.Now().Add(eventData.startsIn)
		event := events.Event{
			ID:          uuid.New(),
			Name:        eventData.name,
			Description: eventData.description,
			Venue:       eventData.venue,
			StartTime:   start,
			EndTime:     start.Add(eventData.duration),
			Status:      eventData.status,
			OrganizerID: organizerID,
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}

		eventIDs[eventData.key] = event.ID
		fmt.Printf("    ✅ Created event: %s (%s)\n", event.Name, event.Status)
	}

	return eventIDs, nil
}

// SeedTicketTypes creates tiers for the published events.
func (s *Seeder) SeedTicketTypes(eventIDs map[string]uuid.UUID) error {
	fmt.Println("  🎟️ Seeding ticket types...")

	maxFour := 4
	maxTen := 10

	ticketTypesData := []struct {
		eventKey    string
		name        string
		description string
		price       float64
		quantity    int
		maxPerOrder *int
		status      tickettypes.Status
	}{
		{"conference", "General Admission", "Access to all talks", 199.00, 500, &maxTen, tickettypes.StatusActive},
		{"conference", "VIP", "Front rows plus speaker dinner", 499.00, 50, &maxFour, tickettypes.StatusActive},
		{"conference", "Student", "Valid student ID required at the door", 79.00, 100, &maxFour, tickettypes.StatusDraft},
		{"concert", "Standing", "General standing area", 45.00, 300, &maxTen, tickettypes.StatusActive},
		{"concert", "Balcony", "Seated balcony view", 85.00, 80, &maxFour, tickettypes.StatusActive},
	}

	for _, ttData := range ticketTypesData {
		eventID, ok := eventIDs[ttData.eventKey]
		if !ok {
			continue
		}

		ticketType := tickettypes.TicketType{
			ID:               uuid.New(),
			EventID:          eventID,
			Name:             ttData.name,
			Description:      ttData.description,
			Price:            ttData.price,
			Quantity:         ttData.quantity,
			TicketsRemaining: ttData.quantity,
			MaxPerOrder:      ttData.maxPerOrder,
			Status:           ttData.status,
			IsAvailable:      true,
		}

		if err := s.db.PostgreSQL.Create(&ticketType).Error; err != nil {
			return fmt.Errorf("failed to create ticket type %s: %w", ticketType.Name, err)
		}

		fmt.Printf("    ✅ Created ticket type: %s / %s (%d tickets)\n", ttData.eventKey, ticketType.Name, ticketType.Quantity)
	}

	return nil
}

// SeedDiscountCodes creates a percentage and a fixed code per published event.
func (s *Seeder) SeedDiscountCodes(eventIDs map[string]uuid.UUID) error {
	fmt.Println("  💸 Seeding discount codes...")

	hundredUses := 100
	expiry := time.Now().Add(60 * 24 * time.Hour)

	discountsData := []struct {
		eventKey       string
		code           string
		discountType   discounts.DiscountType
		amount         decimal.Decimal
		maxDiscount    decimal.NullDecimal
		maxUses        *int
		minTicketCount int
	}{
		{"conference", "EARLYBIRD20", discounts.TypePercentage, decimal.NewFromInt(20), decimal.NewNullDecimal(decimal.NewFromInt(100)), &hundredUses, 0},
		{"conference", "TEAM50", discounts.TypeFixed, decimal.NewFromInt(50), decimal.NullDecimal{}, nil, 3},
		{"concert", "STATIC10", discounts.TypePercentage, decimal.NewFromInt(10), decimal.NewNullDecimal(decimal.NewFromInt(25)), &hundredUses, 0},
	}

	for _, dcData := range discountsData {
		eventID, ok := eventIDs[dcData.eventKey]
		if !ok {
			continue
		}

		code := discounts.DiscountCode{
			ID:             uuid.New(),
			EventID:        eventID,
			Code:           dcData.code,
			DiscountType:   dcData.discountType,
			DiscountAmount: dcData.amount,
			MaxDiscount:    dcData.maxDiscount,
			ExpiresAt:      &expiry,
			MaxUses:        dcData.maxUses,
			MinTicketCount: dcData.minTicketCount,
			IsActive:       true,
		}

		if err := s.db.PostgreSQL.Create(&code).Error; err != nil {
			return fmt.Errorf("failed to create discount code %s: %w", code.Code, err)
		}

		fmt.Printf("    ✅ Created discount code: %s / %s (%s)\n", dcData.eventKey, code.Code, code.DiscountType)
	}

	return nil
}
