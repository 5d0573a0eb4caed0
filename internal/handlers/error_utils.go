package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	contextutils "cyberadvisor/internal/utils"
)

// HandleAppError sends the structured error response for any error,
// translating AppError codes to HTTP status codes.
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if !contextutils.AsError(err, &appErr) {
		appErr = contextutils.NewAppError(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			err.Error(),
		)
	}

	locale := contextutils.ParseLocale(c.GetHeader("Accept-Language"))
	body := appErr.ToJSONWithLocale(string(locale))
	body["retryable"] = contextutils.IsRetryable(appErr)

	c.JSON(mapErrorCodeToHTTPStatus(appErr.Code), body)
}

// HandleValidationError rejects a request with a field-level explanation.
func HandleValidationError(c *gin.Context, field, reason string) {
	HandleAppError(c, contextutils.NewAppError(
		contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn,
		"Invalid "+field,
		reason,
	))
}

// mapErrorCodeToHTTPStatus maps AppError codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeValidationFailed, contextutils.ErrorCodeUnknownMode:
		return http.StatusBadRequest

	case contextutils.ErrorCodeUnauthorized, contextutils.ErrorCodeInvalidCredentials,
		contextutils.ErrorCodeSessionExpired:
		return http.StatusUnauthorized

	case contextutils.ErrorCodeForbidden:
		return http.StatusForbidden

	case contextutils.ErrorCodeRecordNotFound:
		return http.StatusNotFound

	case contextutils.ErrorCodeRecordExists, contextutils.ErrorCodeConflict:
		return http.StatusConflict

	case contextutils.ErrorCodeTimeout:
		return http.StatusGatewayTimeout

	// The assistant being overloaded or unconfigured is a service-level
	// condition, not a client mistake.
	case contextutils.ErrorCodeAllProvidersExhausted,
		contextutils.ErrorCodeNoCredentialsConfigured,
		contextutils.ErrorCodeQuestionBankEmpty,
		contextutils.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
