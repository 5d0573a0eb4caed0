// Package middleware provides authentication and request validation
// middleware for the Gin web framework.
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for storing user information
const (
	// UserIDKey is the key used to store the user ID in the session
	UserIDKey = "user_id"
	// UserEmailKey is the key used to store the user email in the session
	UserEmailKey = "user_email"
)

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Authentication required",
		"code":  "UNAUTHORIZED",
	})
	c.Abort()
}

// RequireAuth returns a middleware that requires an authenticated session.
// On success the user ID and email are copied into the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID := session.Get(UserIDKey)
		if userID == nil {
			abortUnauthorized(c)
			return
		}
		userIDInt, ok := userID.(int)
		if !ok {
			// Session stores may round-trip numbers as float64.
			userIDFloat, ok := userID.(float64)
			if !ok {
				abortUnauthorized(c)
				return
			}
			userIDInt = int(userIDFloat)
		}

		email, ok := session.Get(UserEmailKey).(string)
		if !ok || email == "" {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, userIDInt)
		c.Set(UserEmailKey, email)

		c.Next()
	}
}
