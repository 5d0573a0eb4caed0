package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"cyberadvisor/internal/middleware"
)

// GetUserIDFromSession retrieves the current user ID. The auth middleware
// stores the normalized ID in the request context; fall back to the raw
// session value for routes outside the auth group, tolerating the float64
// round-trip some session stores apply to numbers.
func GetUserIDFromSession(c *gin.Context) (int, bool) {
	if v, exists := c.Get(middleware.UserIDKey); exists {
		if id, ok := v.(int); ok {
			return id, true
		}
	}

	userID := sessions.Default(c).Get(middleware.UserIDKey)
	switch id := userID.(type) {
	case int:
		return id, true
	case float64:
		return int(id), true
	default:
		return 0, false
	}
}
