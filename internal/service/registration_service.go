package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/cache"
	"campus-events-api/internal/client"
	"campus-events-api/internal/domain"
	"campus-events-api/internal/dto"
	"campus-events-api/internal/lock"
	"campus-events-api/internal/metrics"
	"campus-events-api/internal/repository"
	"campus-events-api/internal/response"
)

const defaultParticipationPageSize = 50

// RegistrationService is the only way participations are created or removed.
// Every mutation runs under the event's lock inside one transaction.
type RegistrationService interface {
	Register(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) (*dto.ParticipationResponse, error)
	Cancel(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) error
	UpdateEventCapacity(ctx context.Context, requester domain.Requester, eventID uuid.UUID, capacity *int) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, requester domain.Requester, eventID uuid.UUID) (*dto.DeleteEventResponse, error)
	GetCount(ctx context.Context, eventID uuid.UUID) (*dto.CountResponse, error)
	CheckRegistered(ctx context.Context, userID, eventID uuid.UUID) (*dto.CheckResponse, error)
	GetEventParticipants(ctx context.Context, requester domain.Requester, eventID uuid.UUID) ([]*dto.ParticipationResponse, error)
	GetUserParticipations(ctx context.Context, requester domain.Requester, userID uuid.UUID) ([]*dto.ParticipationResponse, error)
	GetUserEventCount(ctx context.Context, requester domain.Requester, userID uuid.UUID) (*dto.UserCountResponse, error)
	ListParticipations(ctx context.Context, requester domain.Requester, query *dto.ListParticipationsQuery) ([]*dto.ParticipationResponse, error)
}

// registrationServiceImpl is the implementation of RegistrationService
type registrationServiceImpl struct {
	eventRepo         repository.EventRepository
	participationRepo repository.ParticipationRepository
	guard             *eventGuard
	eventCache        *cache.EventCache
	storage           ImageStorage
	notifier          client.NotificationClient
	metrics           *metrics.Metrics
	tracer            trace.Tracer
	logger            *zap.Logger
	now               func() time.Time
}

// NewRegistrationService creates a new instance of RegistrationService.
// eventCache, storage, notifier, metrics and tracer may be nil.
func NewRegistrationService(
	eventRepo repository.EventRepository,
	participationRepo repository.ParticipationRepository,
	uow repository.UnitOfWork,
	locker lock.Locker,
	eventCache *cache.EventCache,
	storage ImageStorage,
	notifier client.NotificationClient,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) RegistrationService {
	return &registrationServiceImpl{
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		guard:             newEventGuard(locker, uow, m, logger),
		eventCache:        eventCache,
		storage:           storage,
		notifier:          notifier,
		metrics:           m,
		tracer:            tracerOrNoop(tracer),
		logger:            logger,
		now:               time.Now,
	}
}

// Register registers userID for eventID
func (s *registrationServiceImpl) Register(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) (resp *dto.ParticipationResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.Register",
		trace.WithAttributes(eventAttr(eventID), userAttr(userID)))
	defer func() { endSpan(span, err) }()

	var (
		event         *domain.Event
		participation *domain.Participation
	)
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, participations repository.ParticipationRepository) error {
		found, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		event = found

		if !requester.CanActFor(userID) && !domain.IsHostOrAdmin(requester, event) {
			return response.NewForbiddenError("You cannot register another user for this event", "")
		}

		if event.HasEnded(s.now()) {
			return response.NewAppError(response.ErrCodeEventEnded, "Event has already ended", "")
		}

		exists, err := participations.Exists(ctx, userID, eventID)
		if err != nil {
			return response.NewInternalError("Failed to check registration", err.Error())
		}
		if exists {
			return response.NewConflictError(response.ErrCodeAlreadyRegistered, "User is already registered for this event")
		}

		if !event.IsUnlimited() {
			count, err := participations.CountByEvent(ctx, eventID)
			if err != nil {
				return response.NewInternalError("Failed to count participations", err.Error())
			}
			if event.IsFull(count) {
				return response.NewConflictError(response.ErrCodeEventFull, "Event is full")
			}
		}

		created, err := participations.Create(ctx, userID, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateParticipation) {
				return response.NewConflictError(response.ErrCodeAlreadyRegistered, "User is already registered for this event")
			}
			return response.NewInternalError("Failed to create participation", err.Error())
		}
		participation = created
		return nil
	})

	s.recordRegistration(err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Participation registered",
		zap.String("event_id", eventID.String()),
		zap.String("user_id", userID.String()),
		zap.String("requester_id", requester.UserID.String()))

	s.notify(ctx, client.NewEventNotification(client.NotificationRegistrationConfirmed,
		requester.UserID, userID, eventID, event.Title))

	return toParticipationResponse(participation), nil
}

// Cancel removes the registration of userID for eventID
func (s *registrationServiceImpl) Cancel(ctx context.Context, requester domain.Requester, userID, eventID uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.Cancel",
		trace.WithAttributes(eventAttr(eventID), userAttr(userID)))
	defer func() { endSpan(span, err) }()

	var event *domain.Event
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, participations repository.ParticipationRepository) error {
		found, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFoundError("Participation not found", "")
			}
			return response.NewInternalError("Failed to load event", err.Error())
		}
		event = found

		if !requester.CanActFor(userID) && !domain.IsHostOrAdmin(requester, event) {
			return response.NewForbiddenError("You cannot cancel another user's registration", "")
		}

		if err := participations.Delete(ctx, userID, eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFoundError("Participation not found", "")
			}
			return response.NewInternalError("Failed to delete participation", err.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementCancellation()
	}

	s.logger.Info("Participation cancelled",
		zap.String("event_id", eventID.String()),
		zap.String("user_id", userID.String()),
		zap.String("requester_id", requester.UserID.String()))

	s.notify(ctx, client.NewEventNotification(client.NotificationRegistrationCancelled,
		requester.UserID, userID, eventID, event.Title))

	return nil
}

// UpdateEventCapacity changes the capacity of an event. A nil capacity makes it unlimited.
// The stored capacity is left unchanged on any failure.
func (s *registrationServiceImpl) UpdateEventCapacity(ctx context.Context, requester domain.Requester, eventID uuid.UUID, capacity *int) (resp *dto.EventResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.UpdateEventCapacity",
		trace.WithAttributes(eventAttr(eventID)))
	defer func() { endSpan(span, err) }()

	var (
		event *domain.Event
		count int64
	)
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, participations repository.ParticipationRepository) error {
		found, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		if !domain.IsHostOrAdmin(requester, found) {
			return response.NewForbiddenError("Only the event host or an admin can change capacity", "")
		}

		if err := validateCapacity(capacity); err != nil {
			return err
		}

		count, err = participations.CountByEvent(ctx, eventID)
		if err != nil {
			return response.NewInternalError("Failed to count participations", err.Error())
		}
		if err := checkCapacityFloor(capacity, count); err != nil {
			return err
		}

		found.Capacity = capacity
		if err := events.Update(ctx, found); err != nil {
			return response.NewInternalError("Failed to update capacity", err.Error())
		}
		event = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(eventID)

	s.logger.Info("Event capacity updated",
		zap.String("event_id", eventID.String()),
		zap.Int64("participant_count", count),
		zap.Bool("unlimited", capacity == nil))

	return toEventResponse(event, count, s.logger), nil
}

// DeleteEvent removes an event and all of its participations in one transaction
func (s *registrationServiceImpl) DeleteEvent(ctx context.Context, requester domain.Requester, eventID uuid.UUID) (resp *dto.DeleteEventResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.DeleteEvent",
		trace.WithAttributes(eventAttr(eventID)))
	defer func() { endSpan(span, err) }()

	var (
		event   *domain.Event
		roster  []*domain.Participation
		removed int64
	)
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, participations repository.ParticipationRepository) error {
		found, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		if !domain.IsHostOrAdmin(requester, found) {
			return response.NewForbiddenError("Only the event host or an admin can delete this event", "")
		}
		event = found

		roster, err = participations.FindByEventID(ctx, eventID)
		if err != nil {
			return response.NewInternalError("Failed to load participants", err.Error())
		}

		removed, err = participations.DeleteAllForEvent(ctx, eventID)
		if err != nil {
			return response.NewInternalError("Failed to delete participations", err.Error())
		}

		if err := events.Delete(ctx, eventID); err != nil {
			return eventLookupError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(eventID)
	deleteEventImage(ctx, s.storage, s.logger, event.ImageURL)
	deleteImageKey(ctx, s.storage, s.logger, event.PendingImageKey)

	s.logger.Info("Event deleted",
		zap.String("event_id", eventID.String()),
		zap.Int64("removed_participations", removed),
		zap.String("requester_id", requester.UserID.String()))

	notifications := make([]client.NotificationEvent, 0, len(roster))
	for _, p := range roster {
		notifications = append(notifications, client.NewEventNotification(client.NotificationEventCancelled,
			requester.UserID, p.UserID, eventID, event.Title))
	}
	s.notify(ctx, notifications...)

	return &dto.DeleteEventResponse{
		EventID:               eventID,
		RemovedParticipations: removed,
	}, nil
}

// GetCount returns the live participation count of an event; unknown events count 0
func (s *registrationServiceImpl) GetCount(ctx context.Context, eventID uuid.UUID) (*dto.CountResponse, error) {
	count, err := s.participationRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count participations", err.Error())
	}
	return &dto.CountResponse{EventID: eventID, Count: count}, nil
}

func (s *registrationServiceImpl) CheckRegistered(ctx context.Context, userID, eventID uuid.UUID) (*dto.CheckResponse, error) {
	exists, err := s.participationRepo.Exists(ctx, userID, eventID)
	if err != nil {
		return nil, response.NewInternalError("Failed to check registration", err.Error())
	}
	return &dto.CheckResponse{
		EventID:    eventID,
		UserID:     userID,
		Registered: exists,
	}, nil
}

// GetEventParticipants returns the roster of an event to its host or an admin
func (s *registrationServiceImpl) GetEventParticipants(ctx context.Context, requester domain.Requester, eventID uuid.UUID) ([]*dto.ParticipationResponse, error) {
	event, err := findEvent(ctx, s.eventRepo, s.eventCache, eventID)
	if err != nil {
		return nil, err
	}
	if !domain.IsHostOrAdmin(requester, event) {
		return nil, response.NewForbiddenError("Only the event host or an admin can view participants", "")
	}

	participations, err := s.participationRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, response.NewInternalError("Failed to load participants", err.Error())
	}
	return toParticipationResponses(participations), nil
}

// GetUserParticipations lists the registrations of a user, newest first
func (s *registrationServiceImpl) GetUserParticipations(ctx context.Context, requester domain.Requester, userID uuid.UUID) ([]*dto.ParticipationResponse, error) {
	if !requester.CanActFor(userID) {
		return nil, response.NewForbiddenError("You can only view your own registrations", "")
	}

	participations, err := s.participationRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to load registrations", err.Error())
	}
	return toParticipationResponses(participations), nil
}

func (s *registrationServiceImpl) GetUserEventCount(ctx context.Context, requester domain.Requester, userID uuid.UUID) (*dto.UserCountResponse, error) {
	if !requester.CanActFor(userID) {
		return nil, response.NewForbiddenError("You can only view your own registrations", "")
	}

	count, err := s.participationRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count registrations", err.Error())
	}
	return &dto.UserCountResponse{UserID: userID, Count: count}, nil
}

// ListParticipations pages through all registrations for admins
func (s *registrationServiceImpl) ListParticipations(ctx context.Context, requester domain.Requester, query *dto.ListParticipationsQuery) ([]*dto.ParticipationResponse, error) {
	if !requester.IsAdmin() {
		return nil, response.NewForbiddenError("Only admins can list all registrations", "")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultParticipationPageSize
	}
	participations, err := s.participationRepo.FindAll(ctx, limit, query.Offset)
	if err != nil {
		return nil, response.NewInternalError("Failed to load registrations", err.Error())
	}
	return toParticipationResponses(participations), nil
}

func (s *registrationServiceImpl) invalidate(eventID uuid.UUID) {
	if s.eventCache != nil {
		s.eventCache.Invalidate(eventID)
	}
}

func (s *registrationServiceImpl) recordRegistration(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRegistration(registrationResult(err))
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case response.IsCode(err, response.ErrCodeEventFull):
		return metrics.ResultEventFull
	case response.IsCode(err, response.ErrCodeAlreadyRegistered):
		return metrics.ResultAlreadyRegistered
	case response.IsCode(err, response.ErrCodeEventEnded):
		return metrics.ResultEventEnded
	default:
		return metrics.ResultError
	}
}

// notify delivers notifications after commit without blocking the caller
func (s *registrationServiceImpl) notify(ctx context.Context, notifications ...client.NotificationEvent) {
	if s.notifier == nil || len(notifications) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		var err error
		if len(notifications) == 1 {
			err = s.notifier.SendNotification(ctx, notifications[0])
		} else {
			err = s.notifier.SendBulkNotifications(ctx, notifications)
		}
		if err != nil {
			s.logger.Warn("Failed to send notifications",
				zap.Int("count", len(notifications)),
				zap.Error(err))
		}
	}()
}
