package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"campus-events-api/internal/domain"
	"campus-events-api/internal/dto"
	"campus-events-api/internal/middleware"
	"campus-events-api/internal/response"
)

// MockRegistrationService is a mock implementation of RegistrationService
type MockRegistrationService struct {
	RegisterFunc              func(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) (*dto.ParticipationResponse, error)
	CancelFunc                func(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) error
	UpdateEventCapacityFunc   func(ctx context.Context, requester domain.Requester, eventID uuid.UUID, capacity *int) (*dto.EventResponse, error)
	DeleteEventFunc           func(ctx context.Context, requester domain.Requester, eventID uuid.UUID) (*dto.DeleteEventResponse, error)
	GetCountFunc              func(ctx context.Context, eventID uuid.UUID) (*dto.CountResponse, error)
	CheckRegisteredFunc       func(ctx context.Context, userID, eventID uuid.UUID) (*dto.CheckResponse, error)
	GetEventParticipantsFunc  func(ctx context.Context, requester domain.Requester, eventID uuid.UUID) ([]*dto.ParticipationResponse, error)
	GetUserParticipationsFunc func(ctx context.Context, requester domain.Requester, userID uuid.UUID) ([]*dto.ParticipationResponse, error)
	GetUserEventCountFunc     func(ctx context.Context, requester domain.Requester, userID uuid.UUID) (*dto.UserCountResponse, error)
	ListParticipationsFunc    func(ctx context.Context, requester domain.Requester, query *dto.ListParticipationsQuery) ([]*dto.ParticipationResponse, error)
}

func (m *MockRegistrationService) Register(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) (*dto.ParticipationResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, requester, userID, eventID)
	}
	return &dto.ParticipationResponse{ID: uuid.New(), UserID: userID, EventID: eventID}, nil
}

func (m *MockRegistrationService) Cancel(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, requester, userID, eventID)
	}
	return nil
}

func (m *MockRegistrationService) UpdateEventCapacity(ctx context.Context, requester domain.Requester, eventID uuid.UUID, capacity *int) (*dto.EventResponse, error) {
	if m.UpdateEventCapacityFunc != nil {
		return m.UpdateEventCapacityFunc(ctx, requester, eventID, capacity)
	}
	return &dto.EventResponse{ID: eventID, Capacity: capacity}, nil
}

func (m *MockRegistrationService) DeleteEvent(ctx context.Context, requester domain.Requester, eventID uuid.UUID) (*dto.DeleteEventResponse, error) {
	if m.DeleteEventFunc != nil {
		return m.DeleteEventFunc(ctx, requester, eventID)
	}
	return &dto.DeleteEventResponse{EventID: eventID}, nil
}

func (m *MockRegistrationService) GetCount(ctx context.Context, eventID uuid.UUID) (*dto.CountResponse, error) {
	if m.GetCountFunc != nil {
		return m.GetCountFunc(ctx, eventID)
	}
	return &dto.CountResponse{EventID: eventID}, nil
}

func (m *MockRegistrationService) CheckRegistered(ctx context.Context, userID, eventID uuid.UUID) (*dto.CheckResponse, error) {
	if m.CheckRegisteredFunc != nil {
		return m.CheckRegisteredFunc(ctx, userID, eventID)
	}
	return &dto.CheckResponse{UserID: userID, EventID: eventID}, nil
}

func (m *MockRegistrationService) GetEventParticipants(ctx context.Context, requester domain.Requester, eventID uuid.UUID) ([]*dto.ParticipationResponse, error) {
	if m.GetEventParticipantsFunc != nil {
		return m.GetEventParticipantsFunc(ctx, requester, eventID)
	}
	return []*dto.ParticipationResponse{}, nil
}

func (m *MockRegistrationService) GetUserParticipations(ctx context.Context, requester domain.Requester, userID uuid.UUID) ([]*dto.ParticipationResponse, error) {
	if m.GetUserParticipationsFunc != nil {
		return m.GetUserParticipationsFunc(ctx, requester, userID)
	}
	return []*dto.ParticipationResponse{}, nil
}

func (m *MockRegistrationService) GetUserEventCount(ctx context.Context, requester domain.Requester, userID uuid.UUID) (*dto.UserCountResponse, error) {
	if m.GetUserEventCountFunc != nil {
		return m.GetUserEventCountFunc(ctx, requester, userID)
	}
	return &dto.UserCountResponse{UserID: userID}, nil
}

func (m *MockRegistrationService) ListParticipations(ctx context.Context, requester domain.Requester, query *dto.ListParticipationsQuery) ([]*dto.ParticipationResponse, error) {
	if m.ListParticipationsFunc != nil {
		return m.ListParticipationsFunc(ctx, requester, query)
	}
	return []*dto.ParticipationResponse{}, nil
}

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	CreateEventFunc          func(ctx context.Context, requester domain.Requester, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEventFunc             func(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error)
	ListEventsFunc           func(ctx context.Context, query *dto.ListEventsQuery) ([]*dto.EventResponse, error)
	UpdateEventFunc          func(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	CreateImageUploadURLFunc func(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ImageUploadRequest) (*dto.ImageUploadResponse, error)
	ConfirmImageUploadFunc   func(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ConfirmImageUploadRequest) (*dto.EventResponse, error)
	DeleteEventImageFunc     func(ctx context.Context, requester domain.Requester, eventID uuid.UUID) error
}

func (m *MockEventService) CreateEvent(ctx context.Context, requester domain.Requester, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, requester, req)
	}
	return &dto.EventResponse{ID: uuid.New(), Title: req.Title, HostID: requester.UserID}, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, eventID)
	}
	return &dto.EventResponse{ID: eventID}, nil
}

func (m *MockEventService) ListEvents(ctx context.Context, query *dto.ListEventsQuery) ([]*dto.EventResponse, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, query)
	}
	return []*dto.EventResponse{}, nil
}

func (m *MockEventService) UpdateEvent(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	if m.UpdateEventFunc != nil {
		return m.UpdateEventFunc(ctx, requester, eventID, req)
	}
	return &dto.EventResponse{ID: eventID}, nil
}

func (m *MockEventService) CreateImageUploadURL(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ImageUploadRequest) (*dto.ImageUploadResponse, error) {
	if m.CreateImageUploadURLFunc != nil {
		return m.CreateImageUploadURLFunc(ctx, requester, eventID, req)
	}
	return &dto.ImageUploadResponse{}, nil
}

func (m *MockEventService) ConfirmImageUpload(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ConfirmImageUploadRequest) (*dto.EventResponse, error) {
	if m.ConfirmImageUploadFunc != nil {
		return m.ConfirmImageUploadFunc(ctx, requester, eventID, req)
	}
	return &dto.EventResponse{ID: eventID}, nil
}

func (m *MockEventService) DeleteEventImage(ctx context.Context, requester domain.Requester, eventID uuid.UUID) error {
	if m.DeleteEventImageFunc != nil {
		return m.DeleteEventImageFunc(ctx, requester, eventID)
	}
	return nil
}

func (m *MockEventService) DiscardExpiredImageUpload(ctx context.Context, eventID uuid.UUID) (string, error) {
	return "", nil
}

// withRequester stands in for the auth middleware
func withRequester(requester domain.Requester) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, requester.UserID)
		c.Set(middleware.ContextKeyUserRole, requester.Role)
		c.Next()
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NoError(t, json.Unmarshal(body.Data, out))
}
