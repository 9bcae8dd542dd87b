package authz

import (
	"context"
	"errors"
	"fmt"

	"tickethub/internal/users"

	"github.com/google/uuid"
)

// ErrForbidden is returned uniformly for failed capability checks, leaking
// nothing about the resource beyond its existence.
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated principal an operation runs as.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// EventOwnership resolves who organizes an event. Implemented by the events
// repository via an adapter to keep this package dependency-free.
type EventOwnership interface {
	OrganizerOf(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error)
}

// Authorizer answers capability questions. Consulted once per operation rather
// than scattering role checks through controllers.
type Authorizer interface {
	CanManageEvent(ctx context.Context, actor Actor, eventID uuid.UUID) (bool, error)
}

type authorizer struct {
	ownership EventOwnership
}

func New(ownership EventOwnership) Authorizer {
	return &authorizer{ownership: ownership}
}

// CanManageEvent reports whether the actor may perform organizer-level
// operations (check-in, bulk check-in, forced cancellation) on the event.
func (a *authorizer) CanManageEvent(ctx context.Context, actor Actor, eventID uuid.UUID) (bool, error) {
	if actor.Role == string(users.RoleAdmin) {
		return true, nil
	}

	if actor.Role != string(users.RoleOrganizer) {
		return false, nil
	}

	organizerID, err := a.ownership.OrganizerOf(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve event organizer: %w", err)
	}

	return organizerID == actor.UserID, nil
}
