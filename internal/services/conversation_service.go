package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	contextutils "cyberadvisor/internal/utils"
)

// ConversationServiceInterface defines the conversation store operations
type ConversationServiceInterface interface {
	CreateConversation(ctx context.Context, userID int, title string, mode models.OperatingMode) (*models.Conversation, error)
	GetConversation(ctx context.Context, conversationID string, userID int) (*models.Conversation, error)
	GetUserConversations(ctx context.Context, userID int) ([]models.Conversation, error)
	UpdateConversationTitle(ctx context.Context, conversationID string, userID int, title string) error
	DeleteConversation(ctx context.Context, conversationID string, userID int) error

	AppendTurn(ctx context.Context, conversationID string, turn *models.ConversationTurn) (*models.ConversationTurn, error)
	GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
	GetLatestQuestionTurn(ctx context.Context, conversationID string) (*models.ConversationTurn, error)
}

// ConversationService handles conversation and turn persistence
type ConversationService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(db *sql.DB, logger *observability.Logger) *ConversationService {
	return &ConversationService{db: db, logger: logger}
}

// CreateConversation creates a new conversation owned by the user
func (s *ConversationService) CreateConversation(ctx context.Context, userID int, title string, mode models.OperatingMode) (result0 *models.Conversation, err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "create_conversation",
		observability.AttributeUserID(userID),
		observability.AttributeMode(string(mode)),
	)
	defer observability.FinishSpan(span, &err)

	if title == "" {
		title = "New Chat"
	}
	if _, ok := models.ParseOperatingMode(string(mode)); !ok {
		return nil, contextutils.WrapErrorf(contextutils.ErrUnknownMode, "cannot create conversation with mode %q", string(mode))
	}

	conversationID := uuid.New()
	query := `
		INSERT INTO conversations (id, user_id, title, mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, user_id, title, mode, created_at, updated_at`

	var conversation models.Conversation
	err = s.db.QueryRowContext(ctx, query, conversationID, userID, title, string(mode), time.Now()).Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.Title,
		&conversation.Mode,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create conversation")
	}

	return &conversation, nil
}

// GetConversation retrieves a conversation with all its turns. Ownership is
// part of the lookup: another user's conversation reads as not found.
func (s *ConversationService) GetConversation(ctx context.Context, conversationID string, userID int) (result0 *models.Conversation, err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "get_conversation",
		observability.AttributeConversationID(conversationID),
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, user_id, title, mode, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2`

	var conversation models.Conversation
	err = s.db.QueryRowContext(ctx, query, conversationID, userID).Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.Title,
		&conversation.Mode,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrRecordNotFound
		}
		return nil, contextutils.WrapError(err, "failed to get conversation")
	}

	turns, err := s.getTurns(ctx, conversationID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get conversation turns")
	}
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	conversation.Turns = turns

	return &conversation, nil
}

// GetUserConversations lists a user's conversations, most recently active first.
func (s *ConversationService) GetUserConversations(ctx context.Context, userID int) (result0 []models.Conversation, err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "get_user_conversations",
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, user_id, title, mode, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query conversations")
	}
	defer func() { _ = rows.Close() }()

	conversations := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.Mode, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan conversation")
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "error iterating conversations")
	}

	return conversations, nil
}

// UpdateConversationTitle renames a conversation the user owns.
func (s *ConversationService) UpdateConversationTitle(ctx context.Context, conversationID string, userID int, title string) (err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "update_conversation_title",
		observability.AttributeConversationID(conversationID),
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		title, time.Now(), conversationID, userID,
	)
	if err != nil {
		return contextutils.WrapError(err, "failed to update conversation title")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if affected == 0 {
		return contextutils.ErrRecordNotFound
	}
	return nil
}

// DeleteConversation deletes a conversation the user owns along with its
// turns and quiz session (via CASCADE).
func (s *ConversationService) DeleteConversation(ctx context.Context, conversationID string, userID int) (err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "delete_conversation",
		observability.AttributeConversationID(conversationID),
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = $1 AND user_id = $2`,
		conversationID, userID,
	)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete conversation")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if affected == 0 {
		return contextutils.ErrRecordNotFound
	}
	return nil
}

// AppendTurn durably appends one turn to a conversation and bumps its
// activity timestamp. The first user turn also titles the conversation.
func (s *ConversationService) AppendTurn(ctx context.Context, conversationID string, turn *models.ConversationTurn) (result0 *models.ConversationTurn, err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "append_turn",
		observability.AttributeConversationID(conversationID),
	)
	defer observability.FinishSpan(span, &err)

	var attachmentsJSON interface{}
	if len(turn.Attachments) > 0 {
		encoded, err := json.Marshal(turn.Attachments)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to encode attachments")
		}
		attachmentsJSON = encoded
	}

	var quizJSON interface{}
	if turn.Quiz != nil {
		encoded, err := json.Marshal(turn.Quiz)
		if err != nil {
			return nil, contextutils.WrapError(err, "failed to encode quiz payload")
		}
		quizJSON = encoded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_turns WHERE conversation_id = $1`, conversationID,
	).Scan(&existing); err != nil {
		return nil, contextutils.WrapError(err, "failed to count turns")
	}

	turnID := uuid.New()
	saved := *turn
	saved.ConversationID = conversationID
	err = tx.QueryRowContext(ctx,
		`INSERT INTO conversation_turns (id, conversation_id, role, text, attachments, quiz_payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		turnID, conversationID, string(turn.Role), turn.Text, attachmentsJSON, quizJSON, time.Now(),
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to append turn")
	}

	// Early user turns title the conversation; after that the title is the
	// user's to keep.
	if turn.Role == models.RoleUser && existing < 2 && strings.TrimSpace(turn.Text) != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE conversations SET title = $1, updated_at = $2 WHERE id = $3`,
			deriveTitle(turn.Text), time.Now(), conversationID,
		); err != nil {
			return nil, contextutils.WrapError(err, "failed to derive conversation title")
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			time.Now(), conversationID,
		); err != nil {
			return nil, contextutils.WrapError(err, "failed to touch conversation")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, contextutils.WrapError(err, "failed to commit turn")
	}

	return &saved, nil
}

// GetRecentTurns returns the last limit turns in chronological order.
func (s *ConversationService) GetRecentTurns(ctx context.Context, conversationID string, limit int) (result0 []models.ConversationTurn, err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "get_recent_turns",
		observability.AttributeConversationID(conversationID),
		observability.AttributeLimit(limit),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, conversation_id, role, text, attachments, quiz_payload, created_at
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query recent turns")
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	// Newest-first from the query; callers want chronological.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// GetLatestQuestionTurn returns the most recent turn carrying a quiz payload,
// or nil when the conversation has none.
func (s *ConversationService) GetLatestQuestionTurn(ctx context.Context, conversationID string) (result0 *models.ConversationTurn, err error) {
	ctx, span := observability.TraceConversationFunction(ctx, "get_latest_question_turn",
		observability.AttributeConversationID(conversationID),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, conversation_id, role, text, attachments, quiz_payload, created_at
		FROM conversation_turns
		WHERE conversation_id = $1 AND quiz_payload IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query latest question turn")
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, nil
	}
	return &turns[0], nil
}

func (s *ConversationService) getTurns(ctx context.Context, conversationID string) ([]models.ConversationTurn, error) {
	query := `
		SELECT id, conversation_id, role, text, attachments, quiz_payload, created_at
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query turns")
	}
	defer func() { _ = rows.Close() }()

	return scanTurns(rows)
}

func scanTurns(rows *sql.Rows) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		var attachmentsJSON, quizJSON []byte
		if err := rows.Scan(
			&turn.ID,
			&turn.ConversationID,
			&turn.Role,
			&turn.Text,
			&attachmentsJSON,
			&quizJSON,
			&turn.CreatedAt,
		); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan turn")
		}
		if len(attachmentsJSON) > 0 {
			if err := json.Unmarshal(attachmentsJSON, &turn.Attachments); err != nil {
				return nil, contextutils.WrapError(err, "failed to decode attachments")
			}
		}
		if len(quizJSON) > 0 {
			var question models.QuizQuestion
			if err := json.Unmarshal(quizJSON, &question); err != nil {
				return nil, contextutils.WrapError(err, "failed to decode quiz payload")
			}
			turn.Quiz = &question
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "error iterating turns")
	}
	return turns, nil
}

// deriveTitle builds a conversation title from the first words of a message.
func deriveTitle(text string) string {
	title := strings.Join(strings.Fields(text), " ")
	runes := []rune(title)
	if len(runes) > config.ConversationTitleMaxLen {
		title = string(runes[:config.ConversationTitleMaxLen])
	}
	return title
}
