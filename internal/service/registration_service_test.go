package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/client"
	"campus-events-api/internal/domain"
	"campus-events-api/internal/dto"
	"campus-events-api/internal/lock"
	"campus-events-api/internal/metrics"
	"campus-events-api/internal/repository"
	"campus-events-api/internal/response"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int {
	return &v
}

type registrationFixture struct {
	events         *MockEventRepository
	participations *MockParticipationRepository
	locker         *MockLocker
	uow            *MockUnitOfWork
	storage        *client.MockS3Client
	metrics        *metrics.Metrics
	svc            *registrationServiceImpl
}

func newRegistrationFixture() *registrationFixture {
	events := &MockEventRepository{}
	participations := &MockParticipationRepository{}
	locker := &MockLocker{}
	uow := &MockUnitOfWork{Events: events, Participations: participations}
	storage := client.NewMockS3Client()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())

	svc := NewRegistrationService(events, participations, uow, locker, nil, storage, nil, m, nil, zap.NewNop()).(*registrationServiceImpl)
	svc.now = func() time.Time { return fixedNow }

	return &registrationFixture{
		events:         events,
		participations: participations,
		locker:         locker,
		uow:            uow,
		storage:        storage,
		metrics:        m,
		svc:            svc,
	}
}

func newEvent(hostID uuid.UUID, capacity *int) *domain.Event {
	return &domain.Event{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Title:     "Spring Hackathon",
		HostID:    hostID,
		StartTime: fixedNow.Add(24 * time.Hour),
		EndTime:   fixedNow.Add(48 * time.Hour),
		Capacity:  capacity,
	}
}

func user(id uuid.UUID) domain.Requester {
	return domain.Requester{UserID: id, Role: domain.RoleUser}
}

func TestRegistrationService_Register(t *testing.T) {
	hostID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name        string
		requester   func(event *domain.Event) domain.Requester
		event       func() *domain.Event
		setup       func(f *registrationFixture, event *domain.Event)
		wantErrCode string
	}{
		{
			name:      "self registration succeeds",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event:     func() *domain.Event { return newEvent(hostID, intPtr(10)) },
			setup: func(f *registrationFixture, event *domain.Event) {
				f.participations.CountByEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
					return 9, nil
				}
			},
		},
		{
			name:      "event not found",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event:     func() *domain.Event { return nil },
			setup: func(f *registrationFixture, event *domain.Event) {
				f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
					return nil, gorm.ErrRecordNotFound
				}
			},
			wantErrCode: response.ErrCodeNotFound,
		},
		{
			name:      "registration closes at end time",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event: func() *domain.Event {
				event := newEvent(hostID, nil)
				event.StartTime = fixedNow.Add(-time.Hour)
				event.EndTime = fixedNow
				return event
			},
			wantErrCode: response.ErrCodeEventEnded,
		},
		{
			name:      "already registered",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event:     func() *domain.Event { return newEvent(hostID, intPtr(10)) },
			setup: func(f *registrationFixture, event *domain.Event) {
				f.participations.ExistsFunc = func(ctx context.Context, u, e uuid.UUID) (bool, error) {
					return true, nil
				}
			},
			wantErrCode: response.ErrCodeAlreadyRegistered,
		},
		{
			name:      "event full",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event:     func() *domain.Event { return newEvent(hostID, intPtr(2)) },
			setup: func(f *registrationFixture, event *domain.Event) {
				f.participations.CountByEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
					return 2, nil
				}
			},
			wantErrCode: response.ErrCodeEventFull,
		},
		{
			name:      "duplicate detected by unique index",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event:     func() *domain.Event { return newEvent(hostID, nil) },
			setup: func(f *registrationFixture, event *domain.Event) {
				f.participations.CreateFunc = func(ctx context.Context, u, e uuid.UUID) (*domain.Participation, error) {
					return nil, repository.ErrDuplicateParticipation
				}
			},
			wantErrCode: response.ErrCodeAlreadyRegistered,
		},
		{
			name:        "user cannot register someone else",
			requester:   func(*domain.Event) domain.Requester { return user(uuid.New()) },
			event:       func() *domain.Event { return newEvent(hostID, nil) },
			wantErrCode: response.ErrCodeForbidden,
		},
		{
			name:      "host can register someone onto the roster",
			requester: func(*domain.Event) domain.Requester { return domain.Requester{UserID: hostID, Role: domain.RoleOrganizer} },
			event:     func() *domain.Event { return newEvent(hostID, nil) },
		},
		{
			name:      "admin can register anyone",
			requester: func(*domain.Event) domain.Requester { return domain.Requester{UserID: uuid.New(), Role: domain.RoleAdmin} },
			event:     func() *domain.Event { return newEvent(hostID, nil) },
		},
		{
			name:        "organizer of another event cannot register others",
			requester:   func(*domain.Event) domain.Requester { return domain.Requester{UserID: uuid.New(), Role: domain.RoleOrganizer} },
			event:       func() *domain.Event { return newEvent(hostID, nil) },
			wantErrCode: response.ErrCodeForbidden,
		},
		{
			name:      "storage failure is internal",
			requester: func(*domain.Event) domain.Requester { return user(userID) },
			event:     func() *domain.Event { return newEvent(hostID, nil) },
			setup: func(f *registrationFixture, event *domain.Event) {
				f.participations.ExistsFunc = func(ctx context.Context, u, e uuid.UUID) (bool, error) {
					return false, errors.New("connection reset")
				}
			},
			wantErrCode: response.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			event := tt.event()
			eventID := uuid.New()
			if event != nil {
				eventID = event.ID
				f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
					return event, nil
				}
			}
			if tt.setup != nil {
				tt.setup(f, event)
			}

			resp, err := f.svc.Register(context.Background(), tt.requester(event), userID, eventID)

			assert.Equal(t, []string{lock.EventKey(eventID)}, f.locker.Keys)
			assert.Equal(t, 1, f.locker.Released)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.True(t, response.IsCode(err, tt.wantErrCode), "got %v", err)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, resp.UserID)
			assert.Equal(t, eventID, resp.EventID)
		})
	}
}

func TestRegistrationService_Register_UnlimitedSkipsCount(t *testing.T) {
	f := newRegistrationFixture()
	event := newEvent(uuid.New(), nil)
	f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}
	f.participations.CountByEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
		t.Fatal("count must not be read for unlimited events")
		return 0, nil
	}

	userID := uuid.New()
	_, err := f.svc.Register(context.Background(), user(userID), userID, event.ID)
	require.NoError(t, err)
}

func TestRegistrationService_Register_LockTimeout(t *testing.T) {
	f := newRegistrationFixture()
	f.locker.AcquireErr = fmt.Errorf("acquire: %w", lock.ErrLockTimeout)

	userID := uuid.New()
	_, err := f.svc.Register(context.Background(), user(userID), userID, uuid.New())

	require.Error(t, err)
	assert.True(t, response.IsCode(err, response.ErrCodeLockTimeout))
	assert.Equal(t, 0, f.uow.Calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.LockTimeoutsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultError)))
}

func TestRegistrationService_Register_RecordsOutcomeMetrics(t *testing.T) {
	f := newRegistrationFixture()
	event := newEvent(uuid.New(), intPtr(1))
	f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}
	var count int64
	f.participations.CountByEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
		return count, nil
	}
	f.participations.CreateFunc = func(ctx context.Context, u, e uuid.UUID) (*domain.Participation, error) {
		count++
		return &domain.Participation{ID: uuid.New(), UserID: u, EventID: e}, nil
	}

	first := uuid.New()
	_, err := f.svc.Register(context.Background(), user(first), first, event.ID)
	require.NoError(t, err)

	second := uuid.New()
	_, err = f.svc.Register(context.Background(), user(second), second, event.ID)
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultEventFull)))
}

func TestRegistrationService_Register_SendsConfirmation(t *testing.T) {
	f := newRegistrationFixture()
	notifier := NewMockNotificationClient()
	f.svc.notifier = notifier

	event := newEvent(uuid.New(), nil)
	f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}

	userID := uuid.New()
	_, err := f.svc.Register(context.Background(), user(userID), userID, event.ID)
	require.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, client.NotificationRegistrationConfirmed, sent[0].Type)
	assert.Equal(t, userID, sent[0].TargetUserID)
	assert.Equal(t, event.ID, sent[0].ResourceID)
	assert.Equal(t, event.Title, sent[0].ResourceName)
}

func TestRegistrationService_Cancel(t *testing.T) {
	hostID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name        string
		requester   domain.Requester
		deleteErr   error
		eventErr    error
		wantErrCode string
	}{
		{name: "user cancels own registration", requester: user(userID)},
		{name: "host cancels a participant", requester: domain.Requester{UserID: hostID, Role: domain.RoleOrganizer}},
		{name: "admin cancels a participant", requester: domain.Requester{UserID: uuid.New(), Role: domain.RoleAdmin}},
		{name: "other user is forbidden", requester: user(uuid.New()), wantErrCode: response.ErrCodeForbidden},
		{name: "no participation", requester: user(userID), deleteErr: gorm.ErrRecordNotFound, wantErrCode: response.ErrCodeNotFound},
		{name: "unknown event has no participation", requester: user(userID), eventErr: gorm.ErrRecordNotFound, wantErrCode: response.ErrCodeNotFound},
		{name: "delete failure is internal", requester: user(userID), deleteErr: errors.New("disk full"), wantErrCode: response.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			event := newEvent(hostID, intPtr(5))
			f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
				if tt.eventErr != nil {
					return nil, tt.eventErr
				}
				return event, nil
			}
			deleted := false
			f.participations.DeleteFunc = func(ctx context.Context, u, e uuid.UUID) error {
				if tt.deleteErr != nil {
					return tt.deleteErr
				}
				deleted = true
				return nil
			}

			err := f.svc.Cancel(context.Background(), tt.requester, userID, event.ID)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.True(t, response.IsCode(err, tt.wantErrCode), "got %v", err)
				assert.False(t, deleted)
				return
			}
			require.NoError(t, err)
			assert.True(t, deleted)
			assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CancellationsTotal))
		})
	}
}

func TestRegistrationService_UpdateEventCapacity(t *testing.T) {
	hostID := uuid.New()
	host := domain.Requester{UserID: hostID, Role: domain.RoleOrganizer}

	tests := []struct {
		name        string
		requester   domain.Requester
		capacity    *int
		count       int64
		wantErrCode string
	}{
		{name: "raise capacity", requester: host, capacity: intPtr(20), count: 5},
		{name: "lower to exactly the count", requester: host, capacity: intPtr(5), count: 5},
		{name: "remove the limit", requester: host, capacity: nil, count: 5},
		{name: "admin may change capacity", requester: domain.Requester{UserID: uuid.New(), Role: domain.RoleAdmin}, capacity: intPtr(8), count: 2},
		{name: "below current count", requester: host, capacity: intPtr(3), count: 5, wantErrCode: response.ErrCodeCapacityTooLow},
		{name: "zero is invalid", requester: host, capacity: intPtr(0), wantErrCode: response.ErrCodeInvalidCapacity},
		{name: "negative is invalid", requester: host, capacity: intPtr(-4), wantErrCode: response.ErrCodeInvalidCapacity},
		{name: "non host is forbidden", requester: domain.Requester{UserID: uuid.New(), Role: domain.RoleOrganizer}, capacity: intPtr(20), wantErrCode: response.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			event := newEvent(hostID, intPtr(10))
			f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
				return event.Clone(), nil
			}
			f.participations.CountByEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
				return tt.count, nil
			}
			var saved *domain.Event
			f.events.UpdateFunc = func(ctx context.Context, e *domain.Event) error {
				saved = e
				return nil
			}

			resp, err := f.svc.UpdateEventCapacity(context.Background(), tt.requester, event.ID, tt.capacity)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.True(t, response.IsCode(err, tt.wantErrCode), "got %v", err)
				assert.Nil(t, saved, "capacity must not be persisted on failure")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, tt.capacity, saved.Capacity)
			assert.Equal(t, tt.count, resp.ParticipantCount)
			if tt.capacity == nil {
				assert.Nil(t, resp.RemainingSeats)
			} else {
				require.NotNil(t, resp.RemainingSeats)
				assert.Equal(t, int64(*tt.capacity)-tt.count, *resp.RemainingSeats)
			}
		})
	}
}

func TestRegistrationService_DeleteEvent(t *testing.T) {
	hostID := uuid.New()
	host := domain.Requester{UserID: hostID, Role: domain.RoleOrganizer}

	t.Run("cascades and removes the image", func(t *testing.T) {
		f := newRegistrationFixture()
		event := newEvent(hostID, nil)
		event.ImageURL = f.storage.GetFileURL("events/" + event.ID.String() + "/cover.png")
		f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			return event, nil
		}
		var order []string
		f.participations.DeleteAllForEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
			order = append(order, "participations")
			return 3, nil
		}
		f.events.DeleteFunc = func(ctx context.Context, id uuid.UUID) error {
			order = append(order, "event")
			return nil
		}

		resp, err := f.svc.DeleteEvent(context.Background(), host, event.ID)

		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.RemovedParticipations)
		assert.Equal(t, []string{"participations", "event"}, order)
		assert.Equal(t, []string{"events/" + event.ID.String() + "/cover.png"}, f.storage.DeletedKeys)
	})

	t.Run("removes an unconfirmed upload too", func(t *testing.T) {
		f := newRegistrationFixture()
		event := newEvent(hostID, nil)
		event.PendingImageKey = "events/" + event.ID.String() + "/pending.png"
		f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			return event, nil
		}

		_, err := f.svc.DeleteEvent(context.Background(), host, event.ID)

		require.NoError(t, err)
		assert.Equal(t, []string{"events/" + event.ID.String() + "/pending.png"}, f.storage.DeletedKeys)
	})

	t.Run("failed cascade keeps the event", func(t *testing.T) {
		f := newRegistrationFixture()
		event := newEvent(hostID, nil)
		f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			return event, nil
		}
		f.participations.DeleteAllForEventFunc = func(ctx context.Context, eventID uuid.UUID) (int64, error) {
			return 0, errors.New("constraint violation")
		}
		f.events.DeleteFunc = func(ctx context.Context, id uuid.UUID) error {
			t.Fatal("event must not be deleted when the cascade fails")
			return nil
		}

		_, err := f.svc.DeleteEvent(context.Background(), host, event.ID)

		require.Error(t, err)
		assert.True(t, response.IsCode(err, response.ErrCodeInternal))
	})

	t.Run("non host is forbidden", func(t *testing.T) {
		f := newRegistrationFixture()
		event := newEvent(hostID, nil)
		f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			return event, nil
		}

		_, err := f.svc.DeleteEvent(context.Background(), user(uuid.New()), event.ID)

		assert.True(t, response.IsCode(err, response.ErrCodeForbidden))
	})

	t.Run("missing event", func(t *testing.T) {
		f := newRegistrationFixture()
		f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := f.svc.DeleteEvent(context.Background(), host, uuid.New())

		assert.True(t, response.IsCode(err, response.ErrCodeNotFound))
	})
}

func TestRegistrationService_DeleteEvent_NotifiesRoster(t *testing.T) {
	f := newRegistrationFixture()
	notifier := NewMockNotificationClient()
	f.svc.notifier = notifier

	hostID := uuid.New()
	event := newEvent(hostID, nil)
	f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}
	roster := []*domain.Participation{
		{ID: uuid.New(), UserID: uuid.New(), EventID: event.ID},
		{ID: uuid.New(), UserID: uuid.New(), EventID: event.ID},
	}
	f.participations.FindByEventIDFunc = func(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
		return roster, nil
	}

	_, err := f.svc.DeleteEvent(context.Background(), domain.Requester{UserID: hostID, Role: domain.RoleOrganizer}, event.ID)
	require.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifications were not sent")
	}
	sent := notifier.Sent()
	require.Len(t, sent, 2)
	for i, n := range sent {
		assert.Equal(t, client.NotificationEventCancelled, n.Type)
		assert.Equal(t, roster[i].UserID, n.TargetUserID)
	}
}

func TestRegistrationService_Reads(t *testing.T) {
	f := newRegistrationFixture()
	eventID := uuid.New()
	userID := uuid.New()

	f.participations.CountByEventFunc = func(ctx context.Context, id uuid.UUID) (int64, error) {
		return 7, nil
	}
	f.participations.ExistsFunc = func(ctx context.Context, u, e uuid.UUID) (bool, error) {
		return u == userID, nil
	}

	count, err := f.svc.GetCount(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count.Count)

	check, err := f.svc.CheckRegistered(context.Background(), userID, eventID)
	require.NoError(t, err)
	assert.True(t, check.Registered)

	check, err = f.svc.CheckRegistered(context.Background(), uuid.New(), eventID)
	require.NoError(t, err)
	assert.False(t, check.Registered)

	assert.Empty(t, f.locker.Keys, "reads never take the event lock")
}

func TestRegistrationService_GetEventParticipants(t *testing.T) {
	hostID := uuid.New()
	event := newEvent(hostID, nil)

	f := newRegistrationFixture()
	f.events.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}
	f.participations.FindByEventIDFunc = func(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
		return []*domain.Participation{{ID: uuid.New(), UserID: uuid.New(), EventID: eventID}}, nil
	}

	roster, err := f.svc.GetEventParticipants(context.Background(), domain.Requester{UserID: hostID, Role: domain.RoleOrganizer}, event.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)

	_, err = f.svc.GetEventParticipants(context.Background(), user(uuid.New()), event.ID)
	assert.True(t, response.IsCode(err, response.ErrCodeForbidden))
}

func TestRegistrationService_UserListings(t *testing.T) {
	f := newRegistrationFixture()
	userID := uuid.New()
	f.participations.CountByUserFunc = func(ctx context.Context, u uuid.UUID) (int64, error) {
		return 2, nil
	}

	count, err := f.svc.GetUserEventCount(context.Background(), user(userID), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Count)

	_, err = f.svc.GetUserParticipations(context.Background(), user(uuid.New()), userID)
	assert.True(t, response.IsCode(err, response.ErrCodeForbidden))

	_, err = f.svc.GetUserEventCount(context.Background(), domain.Requester{UserID: uuid.New(), Role: domain.RoleAdmin}, userID)
	assert.NoError(t, err)
}

func TestRegistrationService_ListParticipations(t *testing.T) {
	admin := domain.Requester{UserID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("admin pages with the default size", func(t *testing.T) {
		f := newRegistrationFixture()
		var gotLimit, gotOffset int
		f.participations.FindAllFunc = func(ctx context.Context, limit, offset int) ([]*domain.Participation, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.Participation{{UserID: uuid.New(), EventID: uuid.New()}}, nil
		}

		resp, err := f.svc.ListParticipations(context.Background(), admin, &dto.ListParticipationsQuery{Offset: 20})

		require.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, 50, gotLimit)
		assert.Equal(t, 20, gotOffset)
	})

	t.Run("explicit limit is passed through", func(t *testing.T) {
		f := newRegistrationFixture()
		var gotLimit int
		f.participations.FindAllFunc = func(ctx context.Context, limit, offset int) ([]*domain.Participation, error) {
			gotLimit = limit
			return nil, nil
		}

		resp, err := f.svc.ListParticipations(context.Background(), admin, &dto.ListParticipationsQuery{Limit: 5})

		require.NoError(t, err)
		assert.Empty(t, resp)
		assert.Equal(t, 5, gotLimit)
	})

	t.Run("organizer is forbidden", func(t *testing.T) {
		f := newRegistrationFixture()

		_, err := f.svc.ListParticipations(context.Background(),
			domain.Requester{UserID: uuid.New(), Role: domain.RoleOrganizer}, &dto.ListParticipationsQuery{})

		assert.True(t, response.IsCode(err, response.ErrCodeForbidden))
	})
}
