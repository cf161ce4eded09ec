package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-events-api/internal/dto"
	"campus-events-api/internal/response"
	"campus-events-api/internal/service"
)

type EventHandler struct {
	eventService        service.EventService
	registrationService service.RegistrationService
	logger              *zap.Logger
}

// NewEventHandler creates an EventHandler. Capacity changes and deletion go
// through the registration service because they touch the ledger.
func NewEventHandler(eventService service.EventService, registrationService service.RegistrationService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		eventService:        eventService,
		registrationService: registrationService,
		logger:              logger,
	}
}

// CreateEvent godoc
// @Summary      Create an event
// @Description  Organizers and admins create events they host
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateEventRequest true "Event"
// @Success      201 {object} response.SuccessResponse{data=dto.EventResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request body"
// @Failure      403 {object} response.ErrorResponse "Only organizers and admins"
// @Failure      422 {object} response.ErrorResponse "INVALID_SCHEDULE or INVALID_CAPACITY"
// @Router       /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), requester, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary      Get an event
// @Description  Event with its live participation count and remaining seats
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.EventResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid event ID"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Router       /events/{eventId} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, event)
}

// ListEvents godoc
// @Summary      List events
// @Description  Events ordered by start time
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        hostId query string false "Host ID (UUID)"
// @Param        tag query string false "Tag"
// @Param        upcoming query bool false "Only events that have not ended"
// @Param        limit query int false "Page size (1-100)"
// @Param        offset query int false "Offset"
// @Success      200 {object} response.SuccessResponse{data=[]dto.EventResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid query"
// @Router       /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	var query dto.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	events, err := h.eventService.ListEvents(c.Request.Context(), &query)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary      Update an event
// @Description  Partial update by the host or an admin. Capacity changes are checked against current registrations
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Param        request body dto.UpdateEventRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.EventResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Failure      422 {object} response.ErrorResponse "Invalid field value or CAPACITY_TOO_LOW"
// @Router       /events/{eventId} [put]
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), requester, eventID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, event)
}

// UpdateCapacity godoc
// @Summary      Change event capacity
// @Description  capacity must be present. null makes the event unlimited
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Param        request body dto.UpdateCapacityRequest true "New capacity"
// @Success      200 {object} response.SuccessResponse{data=dto.EventResponse}
// @Failure      400 {object} response.ErrorResponse "Missing or invalid capacity"
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Failure      422 {object} response.ErrorResponse "INVALID_CAPACITY or CAPACITY_TOO_LOW"
// @Router       /events/{eventId}/capacity [patch]
func (h *EventHandler) UpdateCapacity(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	capacity, ok := bindCapacity(c)
	if !ok {
		return
	}

	event, err := h.registrationService.UpdateEventCapacity(c.Request.Context(), requester, eventID, capacity)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary      Delete an event
// @Description  Deletes the event and all of its registrations in one transaction
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DeleteEventResponse}
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Router       /events/{eventId} [delete]
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	result, err := h.registrationService.DeleteEvent(c.Request.Context(), requester, eventID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccessWithMessage(c, http.StatusOK, "Event deleted", result)
}

// CreateImageUploadURL godoc
// @Summary      Presigned URL for the event image
// @Description  Returns a presigned PUT URL and records the key as a pending upload.
// @Description  The event image changes only after PUT /events/{eventId}/image/confirm
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Param        request body dto.ImageUploadRequest true "Image file"
// @Success      200 {object} response.SuccessResponse{data=dto.ImageUploadResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid file"
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Failure      503 {object} response.ErrorResponse "Storage is not configured"
// @Router       /events/{eventId}/image/presigned-url [post]
func (h *EventHandler) CreateImageUploadURL(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	var req dto.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.eventService.CreateImageUploadURL(c.Request.Context(), requester, eventID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// bindCapacity decodes {"capacity": n | null}. The key is required so an
// empty body cannot silently make an event unlimited.
func bindCapacity(c *gin.Context) (*int, bool) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return nil, false
	}
	raw, ok := body["capacity"]
	if !ok {
		badRequest(c, "capacity is required")
		return nil, false
	}

	var capacity *int
	if err := json.Unmarshal(raw, &capacity); err != nil {
		badRequest(c, "capacity must be an integer or null")
		return nil, false
	}
	return capacity, true
}

// ConfirmImageUpload godoc
// @Summary      Confirm an uploaded event image
// @Description  Makes a finished pending upload the event image and deletes the image it replaces
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Param        request body dto.ConfirmImageUploadRequest true "Uploaded file key"
// @Success      200 {object} response.SuccessResponse{data=dto.EventResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request or file not uploaded yet"
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event or pending upload not found"
// @Failure      503 {object} response.ErrorResponse "Storage is not configured"
// @Router       /events/{eventId}/image/confirm [put]
func (h *EventHandler) ConfirmImageUpload(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	var req dto.ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.ConfirmImageUpload(c.Request.Context(), requester, eventID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, event)
}

// DeleteEventImage godoc
// @Summary      Remove the event image
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event or image not found"
// @Failure      503 {object} response.ErrorResponse "Storage is not configured"
// @Router       /events/{eventId}/image [delete]
func (h *EventHandler) DeleteEventImage(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEventImage(c.Request.Context(), requester, eventID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccessWithMessage(c, http.StatusOK, "Event image removed", nil)
}
