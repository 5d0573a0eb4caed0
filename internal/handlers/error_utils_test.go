package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contextutils "cyberadvisor/internal/utils"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   contextutils.ErrorCode
		status int
	}{
		{contextutils.ErrorCodeInvalidInput, http.StatusBadRequest},
		{contextutils.ErrorCodeValidationFailed, http.StatusBadRequest},
		{contextutils.ErrorCodeUnknownMode, http.StatusBadRequest},
		{contextutils.ErrorCodeUnauthorized, http.StatusUnauthorized},
		{contextutils.ErrorCodeInvalidCredentials, http.StatusUnauthorized},
		{contextutils.ErrorCodeForbidden, http.StatusForbidden},
		{contextutils.ErrorCodeRecordNotFound, http.StatusNotFound},
		{contextutils.ErrorCodeRecordExists, http.StatusConflict},
		{contextutils.ErrorCodeTimeout, http.StatusGatewayTimeout},
		{contextutils.ErrorCodeAllProvidersExhausted, http.StatusServiceUnavailable},
		{contextutils.ErrorCodeNoCredentialsConfigured, http.StatusServiceUnavailable},
		{contextutils.ErrorCodeQuestionBankEmpty, http.StatusServiceUnavailable},
		{contextutils.ErrorCodeInternalError, http.StatusInternalServerError},
		{contextutils.ErrorCodeDatabaseQuery, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, mapErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestHandleAppError_WrapsPlainErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAppError(c, assert.AnError)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestHandleAppError_LocalizesByAcceptLanguage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept-Language", "my")

	HandleAppError(c, contextutils.ErrRecordNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RECORD_NOT_FOUND")
}
