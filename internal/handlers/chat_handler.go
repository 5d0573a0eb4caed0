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

// ChatHandler handles message turns against a conversation.
type ChatHandler struct {
	chat   *services.ChatService
	users  services.UserServiceInterface
	logger *observability.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat *services.ChatService, users services.UserServiceInterface, logger *observability.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		users:  users,
		logger: logger,
	}
}

type chatRequest struct {
	ConversationID string              `json:"conversationId"`
	Message        string              `json:"message"`
	Attachments    []models.Attachment `json:"attachments"`
}

// SendMessage appends the user's message to a conversation and returns
// the generated reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ChatHandler.SendMessage")
	var err error
	defer observability.FinishSpan(span, &err)

	userID, ok := GetUserIDFromSession(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req chatRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid chat request",
			err.Error(),
			err,
		))
		return
	}
	span.SetAttributes(
		attribute.String("conversation.id", req.ConversationID),
		attribute.Int("chat.attachments", len(req.Attachments)),
	)

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	result, err := h.chat.HandleTurn(ctx, user, req.ConversationID, req.Message, req.Attachments)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(attribute.String("chat.result_kind", string(result.Kind)))
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ResumeQuestion returns the most recent quiz question in a conversation,
// so a reloaded client can restore its answer buttons.
func (h *ChatHandler) ResumeQuestion(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "ChatHandler.ResumeQuestion")
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

	conversationID := c.Param("id")
	question, err := h.chat.ResumeQuestion(ctx, user, conversationID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}
