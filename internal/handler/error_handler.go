package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/response"
)

// handleServiceError maps service layer errors to appropriate HTTP responses.
// Details of server-side failures are logged, never returned.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Resource not found")
		return
	}

	var appErr *response.AppError
	if errors.As(err, &appErr) {
		status := response.HTTPStatus(appErr.Code)
		if status >= http.StatusInternalServerError {
			logger.Error("Service error",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.String("details", appErr.Details),
				zap.String("path", c.Request.URL.Path))
		}
		response.SendError(c, status, appErr.Code, appErr.Message)
		return
	}

	logger.Error("Unhandled service error",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path))
	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

func badRequest(c *gin.Context, message string) {
	response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, message)
}
