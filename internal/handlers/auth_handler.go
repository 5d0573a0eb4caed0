package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"cyberadvisor/internal/middleware"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"
)

// AuthHandler handles signup, login, logout, and profile endpoints.
type AuthHandler struct {
	users  services.UserServiceInterface
	logger *observability.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users services.UserServiceInterface, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger,
	}
}

type signupRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	KnowledgeLevel    string `json:"knowledgeLevel"`
	PreferredLanguage string `json:"preferredLanguage"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	KnowledgeLevel    string `json:"knowledgeLevel"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// Signup creates a new account and opens a session for it.
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "AuthHandler.Signup")
	var err error
	defer observability.FinishSpan(span, &err)

	var req signupRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid signup request",
			err.Error(),
			err,
		))
		return
	}

	user, err := h.users.CreateUser(ctx, req.Email, req.Password, models.ParseKnowledgeLevel(req.KnowledgeLevel), req.PreferredLanguage)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(attribute.Int("user.id", user.ID))

	if err = h.openSession(c, user); err != nil {
		HandleAppError(c, err)
		return
	}

	h.logger.Info(ctx, "User signed up", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login authenticates a user and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "AuthHandler.Login")
	var err error
	defer observability.FinishSpan(span, &err)

	var req loginRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid login request",
			err.Error(),
			err,
		))
		return
	}

	user, err := h.users.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(attribute.Int("user.id", user.ID))

	if err = h.openSession(c, user); err != nil {
		HandleAppError(c, err)
		return
	}

	h.logger.Info(ctx, "User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "AuthHandler.Logout")
	var err error
	defer observability.FinishSpan(span, &err)

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	if err = session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to clear session"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Status reports whether the caller has a valid session and returns the user.
func (h *AuthHandler) Status(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "AuthHandler.Status")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		// Stale session pointing at a deleted account.
		if errors.Is(err, contextutils.ErrRecordNotFound) {
			err = nil
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "AuthHandler.GetProfile")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile changes the authenticated user's knowledge level and language.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "AuthHandler.UpdateProfile")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid profile update request",
			err.Error(),
			err,
		))
		return
	}

	if err = h.users.UpdateProfile(ctx, userID, models.ParseKnowledgeLevel(req.KnowledgeLevel), req.PreferredLanguage); err != nil {
		HandleAppError(c, err)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) openSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(middleware.UserIDKey, user.ID)
	session.Set(middleware.UserEmailKey, user.Email)
	if err := session.Save(); err != nil {
		return contextutils.WrapError(err, "failed to save session")
	}
	return nil
}
