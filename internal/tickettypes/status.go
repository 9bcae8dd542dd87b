package tickettypes

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusSoldOut   Status = "sold_out"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the ticket type status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusSoldOut, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusExpired || s == StatusCancelled
}

// CanTransitionTo reports whether the status may move to target. sold_out and
// expired are additionally derived automatically when the counter hits zero or
// the sales window closes; those derivations route through the same table.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusActive
	case StatusActive:
		return target == StatusPaused || target == StatusSoldOut ||
			target == StatusExpired || target == StatusCancelled
	case StatusPaused:
		return target == StatusActive || target == StatusCancelled
	case StatusSoldOut:
		// active only when inventory has been restored
		return target == StatusActive || target == StatusCancelled
	default:
		return false
	}
}

// AcceptsReservations reports whether the counter may be touched at all in
// this status. Terminal and not-yet-active types are rejected before the row
// lock is taken.
func (s Status) AcceptsReservations() bool {
	return s == StatusActive || s == StatusSoldOut
}
