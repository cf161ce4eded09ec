package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppError_DerivesKind(t *testing.T) {
	tests := []struct {
		code string
		kind ErrorKind
	}{
		{ErrCodeNotFound, KindNotFound},
		{ErrCodeAlreadyRegistered, KindConflict},
		{ErrCodeEventFull, KindConflict},
		{ErrCodeEventEnded, KindValidation},
		{ErrCodeCapacityTooLow, KindValidation},
		{ErrCodeForbidden, KindAuthorization},
		{ErrCodeLockTimeout, KindInternal},
		{"SOMETHING_ELSE", KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := NewAppError(tt.code, "msg", "")
			assert.Equal(t, tt.kind, err.Kind)
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeAlreadyRegistered))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeEventFull))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeEventEnded))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeCapacityTooLow))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeValidation))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrCodeForbidden))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeLockTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("UNKNOWN"))
}

func TestIsCode_UnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("register: %w", NewConflictError(ErrCodeEventFull, "Event is full"))

	assert.True(t, IsCode(err, ErrCodeEventFull))
	assert.False(t, IsCode(err, ErrCodeAlreadyRegistered))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrCodeEventFull))
}

func TestSendError_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendError(c, http.StatusConflict, ErrCodeEventFull, "Event is full")

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeEventFull, resp.Error.Code)
	assert.Equal(t, "Event is full", resp.Error.Message)
}

func TestSendSuccess_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendSuccess(c, http.StatusOK, gin.H{"count": 3})

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(3), resp["data"].(map[string]interface{})["count"])
}
