package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusCompleted, false},
		{StatusPublished, StatusCancelled, true},
		{StatusPublished, StatusCompleted, true},
		{StatusPublished, StatusDraft, false},
		{StatusCancelled, StatusPublished, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsBookable(t *testing.T) {
	now := time.Now()
	event := &Event{
		StartTime: now.Add(24 * time.Hour),
		EndTime:   now.Add(26 * time.Hour),
		Status:    StatusPublished,
	}

	assert.True(t, event.IsBookable(now))
	// Bookable up to the end of the event, even after doors open.
	assert.True(t, event.IsBookable(now.Add(25*time.Hour)))
	assert.False(t, event.IsBookable(now.Add(27*time.Hour)))

	event.Status = StatusDraft
	assert.False(t, event.IsBookable(now))

	event.Status = StatusCancelled
	assert.False(t, event.IsBookable(now))
}
