package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-events-api/internal/dto"
	"campus-events-api/internal/response"
	"campus-events-api/internal/service"
)

type ParticipationHandler struct {
	registrationService service.RegistrationService
	logger              *zap.Logger
}

func NewParticipationHandler(registrationService service.RegistrationService, logger *zap.Logger) *ParticipationHandler {
	return &ParticipationHandler{
		registrationService: registrationService,
		logger:              logger,
	}
}

// Register godoc
// @Summary      Register for an event
// @Description  Registers the authenticated user (or, for hosts and admins, another user) for an event
// @Tags         participations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterRequest true "Registration request"
// @Success      201 {object} response.SuccessResponse{data=dto.ParticipationResponse} "Registered"
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      403 {object} response.ErrorResponse "Not allowed to register this user"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Failure      409 {object} response.ErrorResponse "ALREADY_REGISTERED or EVENT_FULL"
// @Failure      422 {object} response.ErrorResponse "EVENT_ENDED"
// @Failure      503 {object} response.ErrorResponse "LOCK_TIMEOUT"
// @Router       /participations [post]
func (h *ParticipationHandler) Register(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.EventID == uuid.Nil {
		badRequest(c, "eventId is required")
		return
	}

	userID := requester.UserID
	if req.UserID != nil && *req.UserID != uuid.Nil {
		userID = *req.UserID
	}

	participation, err := h.registrationService.Register(c.Request.Context(), requester, userID, req.EventID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, participation)
}

// Cancel godoc
// @Summary      Cancel a registration
// @Description  Removes a user's registration. Allowed for the user, the event host and admins
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse "Registration cancelled"
// @Failure      400 {object} response.ErrorResponse "Invalid ID"
// @Failure      403 {object} response.ErrorResponse "Not allowed"
// @Failure      404 {object} response.ErrorResponse "Participation not found"
// @Router       /participations/event/{eventId}/user/{userId} [delete]
func (h *ParticipationHandler) Cancel(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	if err := h.registrationService.Cancel(c.Request.Context(), requester, userID, eventID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccessWithMessage(c, http.StatusOK, "Registration cancelled", nil)
}

// GetCount godoc
// @Summary      Participation count
// @Description  Live number of registrations for an event
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CountResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid event ID"
// @Router       /participations/event/{eventId}/count [get]
func (h *ParticipationHandler) GetCount(c *gin.Context) {
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	count, err := h.registrationService.GetCount(c.Request.Context(), eventID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, count)
}

// Check godoc
// @Summary      Check registration
// @Description  Tells whether a user is registered for an event. userId defaults to the caller
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        eventId query string true "Event ID (UUID)"
// @Param        userId query string false "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CheckResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid query"
// @Router       /participations/check [get]
func (h *ParticipationHandler) Check(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}

	var query dto.CheckRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "eventId is required")
		return
	}
	eventID, err := uuid.Parse(query.EventID)
	if err != nil {
		badRequest(c, "Invalid event ID")
		return
	}
	userID := requester.UserID
	if query.UserID != "" {
		userID, err = uuid.Parse(query.UserID)
		if err != nil {
			badRequest(c, "Invalid user ID")
			return
		}
	}

	result, err := h.registrationService.CheckRegistered(c.Request.Context(), userID, eventID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// GetEventParticipants godoc
// @Summary      Event roster
// @Description  Registrations of an event, oldest first. Host or admin only
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        eventId path string true "Event ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ParticipationResponse}
// @Failure      403 {object} response.ErrorResponse "Not the host"
// @Failure      404 {object} response.ErrorResponse "Event not found"
// @Router       /participations/event/{eventId} [get]
func (h *ParticipationHandler) GetEventParticipants(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId", "Invalid event ID")
	if !ok {
		return
	}

	participants, err := h.registrationService.GetEventParticipants(c.Request.Context(), requester, eventID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, participants)
}

// GetUserParticipations godoc
// @Summary      A user's registrations
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ParticipationResponse}
// @Failure      403 {object} response.ErrorResponse "Only the user or an admin"
// @Router       /participations/user/{userId} [get]
func (h *ParticipationHandler) GetUserParticipations(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	participations, err := h.registrationService.GetUserParticipations(c.Request.Context(), requester, userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, participations)
}

// GetUserEventCount godoc
// @Summary      Number of events a user is registered for
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserCountResponse}
// @Failure      403 {object} response.ErrorResponse "Only the user or an admin"
// @Router       /participations/user/{userId}/count [get]
func (h *ParticipationHandler) GetUserEventCount(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	count, err := h.registrationService.GetUserEventCount(c.Request.Context(), requester, userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, count)
}

// ListParticipations godoc
// @Summary      List all registrations
// @Description  Admin only. Newest first
// @Tags         participations
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size (1-100, default 50)"
// @Param        offset query int false "Offset"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ParticipationResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid query"
// @Failure      403 {object} response.ErrorResponse "Admins only"
// @Router       /participations [get]
func (h *ParticipationHandler) ListParticipations(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}

	var query dto.ListParticipationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	participations, err := h.registrationService.ListParticipations(c.Request.Context(), requester, &query)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, participations)
}
