package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
)

// ChatService orchestrates one conversation turn: it persists the user
// message, routes quiz conversations to the quiz state machine, and sends
// everything else through the generation provider.
type ChatService struct {
	ai            AIServiceInterface
	conversations ConversationServiceInterface
	quiz          *QuizService
	cfg           *config.Config
	logger        *observability.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	ai AIServiceInterface,
	conversations ConversationServiceInterface,
	quiz *QuizService,
	cfg *config.Config,
	logger *observability.Logger,
) *ChatService {
	return &ChatService{
		ai:            ai,
		conversations: conversations,
		quiz:          quiz,
		cfg:           cfg,
		logger:        logger,
	}
}

// HandleTurn processes one user message in a conversation and returns the
// model's reply. The user turn is appended before any generation happens, so
// a provider failure never loses what the user typed.
func (s *ChatService) HandleTurn(ctx context.Context, user *models.User, conversationID, message string, attachments []models.Attachment) (result0 *models.GenerationResult, err error) {
	ctx, span := observability.TraceChatFunction(ctx, "handle_turn",
		observability.AttributeConversationID(conversationID),
		observability.AttributeUserID(user.ID),
	)
	defer observability.FinishSpan(span, &err)

	conversation, err := s.conversations.GetConversation(ctx, conversationID, user.ID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.AttributeMode(string(conversation.Mode)))

	userTurn := &models.ConversationTurn{
		Role:        models.RoleUser,
		Text:        message,
		Attachments: attachments,
	}
	if _, err := s.conversations.AppendTurn(ctx, conversationID, userTurn); err != nil {
		return nil, err
	}

	var result *models.GenerationResult
	if conversation.Mode == models.ModeQuiz {
		// Quiz turns are answered from the question bank, not the provider.
		result, err = s.quiz.HandleQuizTurn(ctx, conversationID, message)
		if err != nil {
			return nil, err
		}
	} else {
		result, err = s.generateReply(ctx, user, conversation, message, attachments)
		if err != nil {
			return nil, err
		}
	}

	modelTurn := &models.ConversationTurn{
		Role: models.RoleModel,
		Text: displayTextForTurn(result),
		Quiz: result.Quiz,
	}
	if _, err := s.conversations.AppendTurn(ctx, conversationID, modelTurn); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("chat.result_kind", string(result.Kind)))
	return result, nil
}

// generateReply builds the mode instruction, gathers the history window, and
// runs the provider call chain, then parses the output per mode.
func (s *ChatService) generateReply(ctx context.Context, user *models.User, conversation *models.Conversation, message string, attachments []models.Attachment) (*models.GenerationResult, error) {
	instruction, err := s.ai.TemplateManager().BuildInstruction(conversation.Mode, user)
	if err != nil {
		return nil, err
	}

	history, err := s.conversations.GetRecentTurns(ctx, conversation.ID, s.cfg.Server.EffectiveMaxHistory())
	if err != nil {
		return nil, err
	}
	// The user turn was just appended; the history window already ends with
	// it, so drop it from the context to avoid sending the message twice.
	if n := len(history); n > 0 && history[n-1].Role == models.RoleUser && history[n-1].Text == message {
		history = history[:n-1]
	}

	text, err := s.ai.Generate(ctx, &GenerationRequest{
		SystemInstruction: instruction,
		History:           history,
		Message:           message,
		Attachments:       attachments,
	})
	if err != nil {
		return nil, err
	}

	// Structured extraction is mode-selected. Quiz mode never reaches this
	// path, so normal and learning replies stay plain text even when they
	// happen to contain a JSON-looking block.
	if conversation.Mode != models.ModeAnalysis {
		return models.PlainText(text), nil
	}

	result := ExtractAnalysisResult(text)
	if result.Kind == models.KindText {
		s.logger.Warn(ctx, "Analysis output degraded to plain text", map[string]interface{}{
			"conversation_id": conversation.ID,
			"response_length": len(text),
		})
	}
	return result, nil
}

// displayTextForTurn picks the text persisted for a model turn. A quiz result
// with no lead-in stores the question text so history reads sensibly.
func displayTextForTurn(result *models.GenerationResult) string {
	if result.Text != "" {
		return result.Text
	}
	if result.Quiz != nil {
		return result.Quiz.QuestionText
	}
	return ""
}

// ResumeQuestion returns the latest question asked in a conversation, used by
// clients restoring an in-flight quiz view. Nil when none exists.
func (s *ChatService) ResumeQuestion(ctx context.Context, user *models.User, conversationID string) (result0 *models.QuizQuestion, err error) {
	ctx, span := observability.TraceChatFunction(ctx, "resume_question",
		observability.AttributeConversationID(conversationID),
		observability.AttributeUserID(user.ID),
	)
	defer observability.FinishSpan(span, &err)

	if _, err := s.conversations.GetConversation(ctx, conversationID, user.ID); err != nil {
		return nil, err
	}

	turn, err := s.conversations.GetLatestQuestionTurn(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if turn == nil {
		return nil, nil
	}
	return turn.Quiz, nil
}

// ensure the concrete services satisfy their interfaces
var (
	_ AIServiceInterface           = (*AIService)(nil)
	_ ConversationServiceInterface = (*ConversationService)(nil)
	_ QuizStoreInterface           = (*QuizStore)(nil)
	_ UserServiceInterface         = (*UserService)(nil)
)
