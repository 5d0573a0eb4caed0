package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"cyberadvisor/internal/observability"
)

// ValidateRequest returns a middleware that validates the JSON request body
// against a named embedded schema before the handler runs. Invalid bodies are
// rejected with a field-level error list; the body is restored for the
// handler to bind.
func ValidateRequest(schemaName string, logger *observability.Logger) gin.HandlerFunc {
	schema := mustSchema(schemaName)

	return func(c *gin.Context) {
		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "request_validation")
		defer span.End()

		if c.Request.Body == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Request body required",
				"code":  "INVALID_INPUT",
			})
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to read request body",
				"code":  "INVALID_INPUT",
			})
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Request body is not valid JSON",
				"code":  "INVALID_INPUT",
			})
			c.Abort()
			return
		}

		if !result.Valid() {
			var details []string
			for _, e := range result.Errors() {
				details = append(details, e.String())
			}
			logger.Warn(ctx, "Request validation failed", map[string]interface{}{
				"schema":  schemaName,
				"path":    c.Request.URL.Path,
				"details": strings.Join(details, "; "),
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Request validation failed",
				"code":    "VALIDATION_FAILED",
				"details": details,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
