package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	OrganizerOf(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var eventList []Event
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Event{})
	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("start_time ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&eventList).Error

	return eventList, totalCount, err
}

// UpdateStatus performs a guarded transition: the update only lands when the
// row is still in the expected source status.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	result := r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) OrganizerOf(ctx context.Context, eventID uuid.UUID) (uuid.UUID, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Select("id, organizer_id").
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrEventNotFound
		}
		return uuid.Nil, err
	}
	return event.OrganizerID, nil
}
