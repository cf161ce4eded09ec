package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-events-api/internal/domain"
)

// EventFilter narrows FindAll. Zero values mean "no filter".
type EventFilter struct {
	HostID    *uuid.UUID
	EndsAfter *time.Time
	Limit     int
	Offset    int
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	FindAll(ctx context.Context, filter EventFilter) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	FindWithExpiredImageUploads(ctx context.Context, now time.Time) ([]*domain.Event, error)
}

// eventRepositoryImpl is the GORM implementation of EventRepository
type eventRepositoryImpl struct {
	db *gorm.DB
}

// NewEventRepository creates a new instance of EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepositoryImpl{db: db}
}

func (r *eventRepositoryImpl) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID finds an event by its ID
func (r *eventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate reads the event row with SELECT ... FOR UPDATE.
// SQLite ignores the locking clause.
func (r *eventRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindAll lists events ordered by start time
func (r *eventRepositoryImpl) FindAll(ctx context.Context, filter EventFilter) ([]*domain.Event, error) {
	query := r.db.WithContext(ctx).Model(&domain.Event{})

	if filter.HostID != nil {
		query = query.Where("host_id = ?", *filter.HostID)
	}
	if filter.EndsAfter != nil {
		query = query.Where("end_time > ?", *filter.EndsAfter)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var events []*domain.Event
	if err := query.Order("start_time ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Update saves all fields of the event, including a nil capacity
func (r *eventRepositoryImpl) Update(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete removes the event row. Returns gorm.ErrRecordNotFound when it does not exist.
func (r *eventRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Event{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindWithExpiredImageUploads lists events whose pending image upload expired at or before now
func (r *eventRepositoryImpl) FindWithExpiredImageUploads(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	var events []*domain.Event
	if err := r.db.WithContext(ctx).
		Where("pending_image_key <> ''").
		Where("pending_image_expires_at IS NOT NULL AND pending_image_expires_at <= ?", now).
		Order("pending_image_expires_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
