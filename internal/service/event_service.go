package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/cache"
	"campus-events-api/internal/domain"
	"campus-events-api/internal/dto"
	"campus-events-api/internal/lock"
	"campus-events-api/internal/metrics"
	"campus-events-api/internal/repository"
	"campus-events-api/internal/response"
)

const (
	// presignedURLExpiry matches the expiry used by the S3 client when presigning
	presignedURLExpiry = 5 * time.Minute
	// pendingImageTTL is how long an unconfirmed upload is kept before cleanup
	pendingImageTTL = time.Hour
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// EventService defines the interface for event business logic
type EventService interface {
	CreateEvent(ctx context.Context, requester domain.Requester, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error)
	ListEvents(ctx context.Context, query *dto.ListEventsQuery) ([]*dto.EventResponse, error)
	UpdateEvent(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	CreateImageUploadURL(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ImageUploadRequest) (*dto.ImageUploadResponse, error)
	ConfirmImageUpload(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ConfirmImageUploadRequest) (*dto.EventResponse, error)
	DeleteEventImage(ctx context.Context, requester domain.Requester, eventID uuid.UUID) error
	DiscardExpiredImageUpload(ctx context.Context, eventID uuid.UUID) (string, error)
}

// eventServiceImpl is the implementation of EventService
type eventServiceImpl struct {
	eventRepo         repository.EventRepository
	participationRepo repository.ParticipationRepository
	guard             *eventGuard
	eventCache        *cache.EventCache
	storage           ImageStorage
	metrics           *metrics.Metrics
	tracer            trace.Tracer
	logger            *zap.Logger
	now               func() time.Time
}

// NewEventService creates a new instance of EventService.
// A nil storage disables image uploads.
func NewEventService(
	eventRepo repository.EventRepository,
	participationRepo repository.ParticipationRepository,
	uow repository.UnitOfWork,
	locker lock.Locker,
	eventCache *cache.EventCache,
	storage ImageStorage,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		guard:             newEventGuard(locker, uow, m, logger),
		eventCache:        eventCache,
		storage:           storage,
		metrics:           m,
		tracer:            tracerOrNoop(tracer),
		logger:            logger,
		now:               time.Now,
	}
}

// CreateEvent creates an event hosted by the requester
func (s *eventServiceImpl) CreateEvent(ctx context.Context, requester domain.Requester, req *dto.CreateEventRequest) (resp *dto.EventResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "EventService.CreateEvent")
	defer func() { endSpan(span, err) }()

	if !requester.CanHost() {
		return nil, response.NewForbiddenError("Only organizers and admins can create events", "")
	}

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := validateSchedule(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateCapacity(req.Capacity); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       title,
		Description: req.Description,
		HostID:      requester.UserID,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Capacity:    req.Capacity,
		Tags:        tags,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, response.NewInternalError("Failed to create event", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementEventCreated()
	}

	s.logger.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("host_id", event.HostID.String()))

	return toEventResponse(event, 0, s.logger), nil
}

// GetEvent returns an event with its live participation count
func (s *eventServiceImpl) GetEvent(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error) {
	event, err := findEvent(ctx, s.eventRepo, s.eventCache, eventID)
	if err != nil {
		return nil, err
	}

	count, err := s.participationRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count participations", err.Error())
	}
	return toEventResponse(event, count, s.logger), nil
}

// ListEvents lists events ordered by start time.
// The tag filter is applied after loading, so limit and offset are applied afterwards too.
func (s *eventServiceImpl) ListEvents(ctx context.Context, query *dto.ListEventsQuery) ([]*dto.EventResponse, error) {
	filter := repository.EventFilter{}

	if query.HostID != "" {
		hostID, err := uuid.Parse(query.HostID)
		if err != nil {
			return nil, response.NewValidationError("Invalid host ID", err.Error())
		}
		filter.HostID = &hostID
	}
	if query.Upcoming {
		now := s.now()
		filter.EndsAfter = &now
	}

	tag := strings.TrimSpace(query.Tag)
	if tag == "" {
		filter.Limit = query.Limit
		filter.Offset = query.Offset
	}

	events, err := s.eventRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, response.NewInternalError("Failed to list events", err.Error())
	}

	if tag != "" {
		events = paginate(filterByTag(events, tag), query.Limit, query.Offset)
	}

	responses := make([]*dto.EventResponse, 0, len(events))
	for _, event := range events {
		count, err := s.participationRepo.CountByEvent(ctx, event.ID)
		if err != nil {
			return nil, response.NewInternalError("Failed to count participations", err.Error())
		}
		responses = append(responses, toEventResponse(event, count, s.logger))
	}
	return responses, nil
}

// UpdateEvent applies a partial update. A capacity change is checked against
// the current participation count under the same lock as registrations.
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.UpdateEventRequest) (resp *dto.EventResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "EventService.UpdateEvent",
		trace.WithAttributes(eventAttr(eventID)))
	defer func() { endSpan(span, err) }()

	if req.RemoveCapacity && req.Capacity != nil {
		return nil, response.NewValidationError("capacity and removeCapacity cannot be combined", "")
	}

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
			return response.NewForbiddenError("Only the event host or an admin can update this event", "")
		}

		if err := applyEventUpdate(found, req); err != nil {
			return err
		}

		count, err = participations.CountByEvent(ctx, eventID)
		if err != nil {
			return response.NewInternalError("Failed to count participations", err.Error())
		}
		if req.Capacity != nil {
			if err := checkCapacityFloor(found.Capacity, count); err != nil {
				return err
			}
		}

		if err := events.Update(ctx, found); err != nil {
			return response.NewInternalError("Failed to update event", err.Error())
		}
		event = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(eventID)

	s.logger.Info("Event updated",
		zap.String("event_id", eventID.String()),
		zap.String("requester_id", requester.UserID.String()))

	return toEventResponse(event, count, s.logger), nil
}

// applyEventUpdate copies the provided fields onto event and re-validates them
func applyEventUpdate(event *domain.Event, req *dto.UpdateEventRequest) error {
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return err
		}
		event.Title = title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}

	start, end := event.StartTime, event.EndTime
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		end = req.EndTime.UTC()
	}
	if req.StartTime != nil || req.EndTime != nil {
		if err := validateSchedule(start, end); err != nil {
			return err
		}
		event.StartTime, event.EndTime = start, end
	}

	if req.RemoveCapacity {
		event.Capacity = nil
	} else if req.Capacity != nil {
		if err := validateCapacity(req.Capacity); err != nil {
			return err
		}
		capacity := *req.Capacity
		event.Capacity = &capacity
	}

	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags)
		if err != nil {
			return err
		}
		event.Tags = tags
	}
	return nil
}

// CreateImageUploadURL presigns an image upload and records its key as pending.
// The event image only changes once the upload is confirmed.
func (s *eventServiceImpl) CreateImageUploadURL(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ImageUploadRequest) (resp *dto.ImageUploadResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "EventService.CreateImageUploadURL",
		trace.WithAttributes(eventAttr(eventID)))
	defer func() { endSpan(span, err) }()

	if s.storage == nil {
		return nil, storageDisabledError()
	}
	if !strings.HasPrefix(strings.ToLower(req.ContentType), "image/") {
		return nil, response.NewValidationError("Only image uploads are allowed", req.ContentType)
	}
	if !allowedImageExtensions[strings.ToLower(filepath.Ext(req.FileName))] {
		return nil, response.NewValidationError("Unsupported image file extension", req.FileName)
	}

	var (
		uploadURL  string
		fileKey    string
		superseded string
	)
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, _ repository.ParticipationRepository) error {
		event, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		if !domain.IsHostOrAdmin(requester, event) {
			return response.NewForbiddenError("Only the event host or an admin can change the image", "")
		}

		uploadURL, fileKey, err = s.storage.GeneratePresignedURL(ctx, eventID, req.FileName, req.ContentType, req.FileSize)
		if err != nil {
			return response.NewInternalError("Failed to generate upload URL", err.Error())
		}

		superseded = event.ClearPendingImage()
		expiresAt := s.now().Add(pendingImageTTL).UTC()
		event.PendingImageKey = fileKey
		event.PendingImageExpiresAt = &expiresAt
		if err := events.Update(ctx, event); err != nil {
			return response.NewInternalError("Failed to record pending image upload", err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(eventID)
	if superseded != fileKey {
		deleteImageKey(ctx, s.storage, s.logger, superseded)
	}

	s.logger.Info("Event image upload URL generated",
		zap.String("event_id", eventID.String()),
		zap.String("file_key", fileKey))

	return &dto.ImageUploadResponse{
		UploadURL: uploadURL,
		FileKey:   fileKey,
		ImageURL:  s.storage.GetFileURL(fileKey),
		ExpiresIn: int(presignedURLExpiry.Seconds()),
	}, nil
}

// ConfirmImageUpload makes a finished pending upload the event image and
// removes the image it replaces
func (s *eventServiceImpl) ConfirmImageUpload(ctx context.Context, requester domain.Requester, eventID uuid.UUID, req *dto.ConfirmImageUploadRequest) (resp *dto.EventResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "EventService.ConfirmImageUpload",
		trace.WithAttributes(eventAttr(eventID)))
	defer func() { endSpan(span, err) }()

	if s.storage == nil {
		return nil, storageDisabledError()
	}

	var (
		event       *domain.Event
		count       int64
		previousURL string
	)
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, participations repository.ParticipationRepository) error {
		found, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		if !domain.IsHostOrAdmin(requester, found) {
			return response.NewForbiddenError("Only the event host or an admin can change the image", "")
		}
		if !found.HasPendingImage(req.FileKey) {
			return response.NewNotFoundError("Pending image upload not found", req.FileKey)
		}

		exists, err := s.storage.FileExists(ctx, req.FileKey)
		if err != nil {
			return response.NewInternalError("Failed to check uploaded image", err.Error())
		}
		if !exists {
			return response.NewValidationError("Image has not been uploaded yet", req.FileKey)
		}

		previousURL = found.ImageURL
		found.ImageURL = s.storage.GetFileURL(found.ClearPendingImage())
		if err := events.Update(ctx, found); err != nil {
			return response.NewInternalError("Failed to record event image", err.Error())
		}

		count, err = participations.CountByEvent(ctx, eventID)
		if err != nil {
			return response.NewInternalError("Failed to count participations", err.Error())
		}
		event = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(eventID)
	if previousURL != event.ImageURL {
		deleteEventImage(ctx, s.storage, s.logger, previousURL)
	}

	s.logger.Info("Event image confirmed",
		zap.String("event_id", eventID.String()),
		zap.String("file_key", req.FileKey))

	return toEventResponse(event, count, s.logger), nil
}

// DeleteEventImage removes the confirmed image of an event
func (s *eventServiceImpl) DeleteEventImage(ctx context.Context, requester domain.Requester, eventID uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "EventService.DeleteEventImage",
		trace.WithAttributes(eventAttr(eventID)))
	defer func() { endSpan(span, err) }()

	if s.storage == nil {
		return storageDisabledError()
	}

	var imageURL string
	err = s.guard.run(ctx, eventID, func(events repository.EventRepository, _ repository.ParticipationRepository) error {
		event, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}
		if !domain.IsHostOrAdmin(requester, event) {
			return response.NewForbiddenError("Only the event host or an admin can change the image", "")
		}
		if event.ImageURL == "" {
			return response.NewNotFoundError("Event has no image", "")
		}

		imageURL = event.ImageURL
		event.ImageURL = ""
		if err := events.Update(ctx, event); err != nil {
			return response.NewInternalError("Failed to remove event image", err.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(eventID)
	deleteEventImage(ctx, s.storage, s.logger, imageURL)

	s.logger.Info("Event image removed",
		zap.String("event_id", eventID.String()),
		zap.String("requester_id", requester.UserID.String()))
	return nil
}

// DiscardExpiredImageUpload forgets a pending upload whose confirmation window
// has passed and returns its key. It returns an empty key when the event is gone
// or the upload was confirmed or replaced in the meantime.
func (s *eventServiceImpl) DiscardExpiredImageUpload(ctx context.Context, eventID uuid.UUID) (string, error) {
	var key string
	err := s.guard.run(ctx, eventID, func(events repository.EventRepository, _ repository.ParticipationRepository) error {
		event, err := events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return response.NewInternalError("Failed to load event", err.Error())
		}
		if !event.ImageUploadExpired(s.now()) {
			return nil
		}

		key = event.ClearPendingImage()
		if err := events.Update(ctx, event); err != nil {
			return response.NewInternalError("Failed to clear pending image upload", err.Error())
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if key != "" {
		s.invalidate(eventID)
	}
	return key, nil
}

func (s *eventServiceImpl) invalidate(eventID uuid.UUID) {
	if s.eventCache != nil {
		s.eventCache.Invalidate(eventID)
	}
}

func storageDisabledError() error {
	return response.NewAppError(response.ErrCodeStorageDisabled, "Image storage is not configured", "")
}

func filterByTag(events []*domain.Event, tag string) []*domain.Event {
	filtered := make([]*domain.Event, 0, len(events))
	for _, event := range events {
		if event.HasTag(tag) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func paginate(events []*domain.Event, limit, offset int) []*domain.Event {
	if offset > 0 {
		if offset >= len(events) {
			return []*domain.Event{}
		}
		events = events[offset:]
	}
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}
