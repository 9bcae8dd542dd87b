package events

import (
	"context"
	"errors"
	"fmt"

	"tickethub/internal/shared/constants"
	"tickethub/pkg/cache"

	"github.com/google/uuid"
)

var ErrInvalidStatusTransition = errors.New("invalid event status transition")

// Service interface defines the contract for event business logic
type Service interface {
	CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	PublishEvent(ctx context.Context, id uuid.UUID) error
	CancelEvent(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*Event, error) {
	event := &Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      StatusDraft,
		OrganizerID: organizerID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}

	var event Event
	key := constants.BuildEventDetailKey(id.String())
	fetch := func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_EVENT_DETAIL, fetch, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *service) ListEvents(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *service) PublishEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !event.Status.CanTransitionTo(StatusPublished) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, event.Status, StatusPublished)
	}

	if err := s.repo.UpdateStatus(ctx, id, event.Status, StatusPublished); err != nil {
		return err
	}
	s.invalidateDetail(ctx, id)
	return nil
}

func (s *service) CancelEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !event.Status.CanTransitionTo(StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, event.Status, StatusCancelled)
	}

	if err := s.repo.UpdateStatus(ctx, id, event.Status, StatusCancelled); err != nil {
		return err
	}
	s.invalidateDetail(ctx, id)
	return nil
}

func (s *service) invalidateDetail(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, constants.BuildEventDetailKey(id.String()))
}
