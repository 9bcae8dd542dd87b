package constants

import "time"

// Redis cache keys and TTLs.
// Pattern: tickethub:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "tickethub"
)

// Availability is the only red-hot read-model: it sits in front of the
// inventory counter and must be invalidated on every reserve/release.
const (
	CACHE_KEY_AVAILABILITY_BY_EVENT = CACHE_PREFIX + ":tickettypes:availability:event:" // + event-id
	CACHE_KEY_EVENT_DETAIL          = CACHE_PREFIX + ":events:detail:uuid:"             // + event-id
)

const (
	TTL_AVAILABILITY = 30 * time.Second
	TTL_EVENT_DETAIL = 2 * time.Hour
)

func BuildAvailabilityKey(eventID string) string {
	return CACHE_KEY_AVAILABILITY_BY_EVENT + eventID
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}
