package events

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid checks if the event status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the status may move to target. Transitions
// happen only through explicit service operations, never through save hooks.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPublished || target == StatusCancelled
	case StatusPublished:
		return target == StatusCancelled || target == StatusCompleted
	default:
		return false
	}
}
