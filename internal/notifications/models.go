package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	BookingConfirmed  EventType = "booking.confirmed"
	BookingCancelled  EventType = "booking.cancelled"
	CheckInCompleted  EventType = "checkin.completed"
	TransferCompleted EventType = "transfer.completed"
)

// Notification is one observable state change, published for downstream
// delivery channels (email, push) that live outside this service.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	UserID    uuid.UUID              `json:"user_id"`
	BookingID uuid.UUID              `json:"booking_id"`
	EventID   uuid.UUID              `json:"event_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func New(eventType EventType, userID, bookingID, eventID uuid.UUID, payload map[string]interface{}) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		BookingID: bookingID,
		EventID:   eventID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// PartitionKey routes all of one user's notifications to the same partition
// so delivery order is preserved per recipient.
func (n *Notification) PartitionKey() string {
	return n.UserID.String()
}
