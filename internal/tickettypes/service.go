package tickettypes

import (
	"context"
	"fmt"
	"time"

	"tickethub/internal/events"
	"tickethub/internal/shared/constants"
	"tickethub/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for ticket type business logic
type Service interface {
	CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*TicketType, error)
	GetTicketType(ctx context.Context, id uuid.UUID) (*TicketType, error)
	GetAvailability(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error)
	ActivateTicketType(ctx context.Context, id uuid.UUID) error
	PauseTicketType(ctx context.Context, id uuid.UUID) error
	ResumeTicketType(ctx context.Context, id uuid.UUID) error
	CancelTicketType(ctx context.Context, id uuid.UUID) error

	// InvalidateAvailability drops the cached availability read-model for an
	// event. Called by the bookings service after every reserve/release.
	InvalidateAvailability(ctx context.Context, eventID uuid.UUID)
}

type service struct {
	repo      Repository
	eventRepo events.Repository
	cache     cache.Service
}

func NewService(repo Repository, eventRepo events.Repository, cacheService cache.Service) Service {
	return &service{
		repo:      repo,
		eventRepo: eventRepo,
		cache:     cacheService,
	}
}

func (s *service) CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*TicketType, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("failed to resolve event: %w", err)
	}

	ticketType := &TicketType{
		EventID:          eventID,
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		Quantity:         req.Quantity,
		TicketsRemaining: req.Quantity,
		MaxPerOrder:      req.MaxPerOrder,
		SalesStartDate:   req.SalesStartDate,
		SalesEndDate:     req.SalesEndDate,
		Status:           StatusDraft,
		IsAvailable:      true,
	}

	if err := s.repo.Create(ctx, ticketType); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}

	return ticketType, nil
}

func (s *service) GetTicketType(ctx context.Context, id uuid.UUID) (*TicketType, error) {
	return s.repo.GetByID(ctx, id)
}

// GetAvailability returns the display availability for all ticket types of an
// event, cached briefly; the authoritative counter is always the locked row.
func (s *service) GetAvailability(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error) {
	var responses []TicketTypeResponse

	fetch := func() (interface{}, error) {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}

		ticketTypes, err := s.repo.GetByEventID(ctx, eventID)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		result := make([]TicketTypeResponse, 0, len(ticketTypes))
		for i := range ticketTypes {
			result = append(result, ticketTypes[i].ToResponse(now, event.StartTime, event.EndTime))
		}
		return result, nil
	}

	if s.cache == nil {
		raw, err := fetch()
		if err != nil {
			return nil, err
		}
		return raw.([]TicketTypeResponse), nil
	}

	key := constants.BuildAvailabilityKey(eventID.String())
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_AVAILABILITY, fetch, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *service) ActivateTicketType(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusActive)
}

func (s *service) PauseTicketType(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusPaused)
}

func (s *service) ResumeTicketType(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusActive)
}

func (s *service) CancelTicketType(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target Status) error {
	ticketType, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !ticketType.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ticketType.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, id, ticketType.Status, target); err != nil {
		return err
	}

	s.InvalidateAvailability(ctx, ticketType.EventID)
	return nil
}

func (s *service) InvalidateAvailability(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	// Invalidation failures are logged by the caller's request logger; a stale
	// 30s read-model never affects the locked counter.
	_ = s.cache.Delete(ctx, constants.BuildAvailabilityKey(eventID.String()))
}
