package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-events-api/internal/domain"
	"campus-events-api/internal/middleware"
	"campus-events-api/internal/response"
)

// requesterFromContext builds the caller identity stored by the auth middleware.
// It writes a 401 and returns false when the identity is missing.
func requesterFromContext(c *gin.Context) (domain.Requester, bool) {
	value, exists := c.Get(middleware.ContextKeyUserID)
	userID, ok := value.(uuid.UUID)
	if !exists || !ok || userID == uuid.Nil {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return domain.Requester{}, false
	}

	role := domain.RoleUser
	if value, exists := c.Get(middleware.ContextKeyUserRole); exists {
		if r, ok := value.(domain.Role); ok {
			role = r
		}
	}

	return domain.Requester{UserID: userID, Role: role}, true
}

// uuidParam parses a UUID path parameter, writing a 400 on failure
func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}
