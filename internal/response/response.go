package response

import "github.com/gin-gonic/gin"

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorDetail carries the machine-readable code and a human message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed responses
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// SendSuccess writes data wrapped in the success envelope
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// SendSuccessWithMessage writes a success envelope with a message and optional data
func SendSuccessWithMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendError writes the error envelope
func SendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// AbortWithError writes the error envelope and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, code, message string) {
	SendError(c, statusCode, code, message)
	c.Abort()
}
