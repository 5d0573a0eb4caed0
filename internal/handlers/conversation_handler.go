package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"
)

// ConversationHandler handles conversation CRUD endpoints.
type ConversationHandler struct {
	conversations services.ConversationServiceInterface
	logger        *observability.Logger
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversations services.ConversationServiceInterface, logger *observability.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		logger:        logger,
	}
}

type createConversationRequest struct {
	Title string `json:"title"`
	Mode  string `json:"mode"`
}

type updateConversationRequest struct {
	Title string `json:"title"`
}

// List returns all conversations owned by the authenticated user,
// most recently updated first.
func (h *ConversationHandler) List(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ConversationHandler.List")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	conversations, err := h.conversations.GetUserConversations(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(attribute.Int("conversation.count", len(conversations)))
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// Create opens a new conversation in the requested mode.
func (h *ConversationHandler) Create(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ConversationHandler.Create")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req createConversationRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid conversation request",
			err.Error(),
			err,
		))
		return
	}

	mode, ok := models.ParseOperatingMode(req.Mode)
	if !ok {
		HandleAppError(c, contextutils.WrapErrorf(contextutils.ErrUnknownMode, "mode %q", req.Mode))
		return
	}

	conversation, err := h.conversations.CreateConversation(ctx, userID, req.Title, mode)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(
		attribute.String("conversation.id", conversation.ID),
		attribute.String("conversation.mode", string(mode)),
	)
	c.JSON(http.StatusCreated, gin.H{"conversation": conversation})
}

// Get returns a single conversation with its full turn history.
func (h *ConversationHandler) Get(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ConversationHandler.Get")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	conversationID := c.Param("id")
	conversation, err := h.conversations.GetConversation(ctx, conversationID, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// Rename updates a conversation's title.
func (h *ConversationHandler) Rename(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ConversationHandler.Rename")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req updateConversationRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid rename request",
			err.Error(),
			err,
		))
		return
	}

	conversationID := c.Param("id")
	if err = h.conversations.UpdateConversationTitle(ctx, conversationID, userID, req.Title); err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation updated"})
}

// Delete removes a conversation and all its turns.
func (h *ConversationHandler) Delete(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ConversationHandler.Delete")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	conversationID := c.Param("id")
	if err = h.conversations.DeleteConversation(ctx, conversationID, userID); err != nil {
		HandleAppError(c, err)
		return
	}

	h.logger.Info(ctx, "Conversation deleted", map[string]interface{}{
		"conversation_id": conversationID,
		"user_id":         userID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}
