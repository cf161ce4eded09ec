package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-events-api/internal/client"
	"campus-events-api/internal/domain"
	"campus-events-api/internal/lock"
	"campus-events-api/internal/repository"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc            func(ctx context.Context, event *domain.Event) error
	FindByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	FindByIDForUpdateFunc func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	FindAllFunc           func(ctx context.Context, filter repository.EventFilter) ([]*domain.Event, error)
	UpdateFunc            func(ctx context.Context, event *domain.Event) error
	DeleteFunc            func(ctx context.Context, id uuid.UUID) error
	CountFunc             func(ctx context.Context) (int64, error)

	FindWithExpiredImageUploadsFunc func(ctx context.Context, now time.Time) ([]*domain.Event, error)
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

// FindByIDForUpdate falls back to FindByIDFunc so tests only need to stub one lookup
func (m *MockEventRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockEventRepository) FindAll(ctx context.Context, filter repository.EventFilter) ([]*domain.Event, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockEventRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockEventRepository) FindWithExpiredImageUploads(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	if m.FindWithExpiredImageUploadsFunc != nil {
		return m.FindWithExpiredImageUploadsFunc(ctx, now)
	}
	return []*domain.Event{}, nil
}

// MockParticipationRepository is a mock implementation of ParticipationRepository
type MockParticipationRepository struct {
	CountByEventFunc      func(ctx context.Context, eventID uuid.UUID) (int64, error)
	ExistsFunc            func(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	CreateFunc            func(ctx context.Context, userID, eventID uuid.UUID) (*domain.Participation, error)
	DeleteFunc            func(ctx context.Context, userID, eventID uuid.UUID) error
	DeleteAllForEventFunc func(ctx context.Context, eventID uuid.UUID) (int64, error)
	FindByEventIDFunc     func(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error)
	FindByUserIDFunc      func(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error)
	CountByUserFunc       func(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAllFunc          func(ctx context.Context) (int64, error)
	FindAllFunc           func(ctx context.Context, limit, offset int) ([]*domain.Participation, error)
}

func (m *MockParticipationRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	if m.CountByEventFunc != nil {
		return m.CountByEventFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockParticipationRepository) Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, userID, eventID)
	}
	return false, nil
}

func (m *MockParticipationRepository) Create(ctx context.Context, userID, eventID uuid.UUID) (*domain.Participation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, eventID)
	}
	return &domain.Participation{ID: uuid.New(), UserID: userID, EventID: eventID}, nil
}

func (m *MockParticipationRepository) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, eventID)
	}
	return nil
}

func (m *MockParticipationRepository) DeleteAllForEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	if m.DeleteAllForEventFunc != nil {
		return m.DeleteAllForEventFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockParticipationRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
	if m.FindByEventIDFunc != nil {
		return m.FindByEventIDFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockParticipationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockParticipationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.CountByUserFunc != nil {
		return m.CountByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockParticipationRepository) CountAll(ctx context.Context) (int64, error) {
	if m.CountAllFunc != nil {
		return m.CountAllFunc(ctx)
	}
	return 0, nil
}

func (m *MockParticipationRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Participation, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, limit, offset)
	}
	return []*domain.Participation{}, nil
}

// MockUnitOfWork runs the TxFunc directly against the mock repositories
type MockUnitOfWork struct {
	Events         repository.EventRepository
	Participations repository.ParticipationRepository
	Calls          int
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn repository.TxFunc) error {
	m.Calls++
	return fn(m.Events, m.Participations)
}

// MockLocker records acquired keys and can be told to fail
type MockLocker struct {
	AcquireErr error
	Keys       []string
	Released   int
}

func (m *MockLocker) Acquire(ctx context.Context, key string) (lock.Release, error) {
	if m.AcquireErr != nil {
		return nil, m.AcquireErr
	}
	m.Keys = append(m.Keys, key)
	return func() { m.Released++ }, nil
}

// MockNotificationClient captures notifications sent from background goroutines
type MockNotificationClient struct {
	mu   sync.Mutex
	sent []client.NotificationEvent
	done chan struct{}
}

func NewMockNotificationClient() *MockNotificationClient {
	return &MockNotificationClient{done: make(chan struct{}, 16)}
}

func (m *MockNotificationClient) SendNotification(ctx context.Context, event client.NotificationEvent) error {
	m.mu.Lock()
	m.sent = append(m.sent, event)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *MockNotificationClient) SendBulkNotifications(ctx context.Context, events []client.NotificationEvent) error {
	m.mu.Lock()
	m.sent = append(m.sent, events...)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *MockNotificationClient) Sent() []client.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.NotificationEvent(nil), m.sent...)
}
