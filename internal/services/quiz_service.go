package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	contextutils "cyberadvisor/internal/utils"
)

// incorrectAnswerPrefix is sent by the client when the user picked a wrong
// option in the UI; it forces the answer to score as incorrect regardless of
// the text that follows.
const incorrectAnswerPrefix = "incorrect:::"

var (
	quizStopWords  = []string{"stop", "quit", "exit"}
	quizStartWords = []string{"start", "yes", "continue", "play again"}
)

func containsAnyKeyword(message string, keywords []string) bool {
	for _, word := range keywords {
		if strings.Contains(message, word) {
			return true
		}
	}
	return false
}

// QuizStoreInterface is the persistence surface of quiz gameplay: the
// question bank and the per-conversation session record.
type QuizStoreInterface interface {
	DrawQuestion(ctx context.Context) (*models.QuizQuestion, error)
	GetSessionState(ctx context.Context, conversationID string) (*models.QuizSessionState, error)
	SaveSessionState(ctx context.Context, state *models.QuizSessionState) error
}

// QuizService runs the quiz round state machine on top of a store.
type QuizService struct {
	store  QuizStoreInterface
	cfg    *config.Config
	logger *observability.Logger
}

// NewQuizService creates a new quiz service backed by the given store
func NewQuizService(store QuizStoreInterface, cfg *config.Config, logger *observability.Logger) *QuizService {
	return &QuizService{store: store, cfg: cfg, logger: logger}
}

// HandleQuizTurn advances a conversation's quiz session by one user message.
// Control words start and stop rounds; anything else is treated as an answer
// to the current question. Quiz turns never call the generation provider.
func (s *QuizService) HandleQuizTurn(ctx context.Context, conversationID, message string) (result0 *models.GenerationResult, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "handle_quiz_turn",
		observability.AttributeConversationID(conversationID),
	)
	defer observability.FinishSpan(span, &err)

	normalized := strings.ToLower(strings.TrimSpace(message))

	// Keywords match as substrings, so "Start the quiz please" starts a
	// round. Stop words yield to start words when a message contains both.
	startLike := containsAnyKeyword(normalized, quizStartWords)
	if containsAnyKeyword(normalized, quizStopWords) && !startLike {
		span.SetAttributes(attribute.String("quiz.turn", "stop"))
		return models.PlainText("Thanks for playing! Type \"start\" whenever you want another round."), nil
	}

	if startLike {
		span.SetAttributes(attribute.String("quiz.turn", "start"))
		return s.startRound(ctx, conversationID)
	}

	span.SetAttributes(attribute.String("quiz.turn", "answer"))
	return s.scoreAnswer(ctx, conversationID, message)
}

// startRound resets the session record and draws the first question.
func (s *QuizService) startRound(ctx context.Context, conversationID string) (*models.GenerationResult, error) {
	question, err := s.store.DrawQuestion(ctx)
	if err != nil {
		return nil, err
	}

	state := &models.QuizSessionState{
		ConversationID:  conversationID,
		Score:           0,
		QuestionsAsked:  0,
		CurrentQuestion: question,
	}
	if err := s.store.SaveSessionState(ctx, state); err != nil {
		return nil, err
	}

	return models.QuizResult(question, "Let's go! Question 1:"), nil
}

// scoreAnswer checks the message against the current question, updates the
// session, and either asks the next question or closes out the round.
func (s *QuizService) scoreAnswer(ctx context.Context, conversationID, message string) (*models.GenerationResult, error) {
	state, err := s.store.GetSessionState(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.CurrentQuestion == nil {
		return models.PlainText("There is no quiz in progress. Type \"start\" to begin a round."), nil
	}

	question := state.CurrentQuestion
	correct := answerMatches(message, question.Options[question.CorrectOptionIndex])
	if correct {
		state.Score++
	}
	state.QuestionsAsked++

	roundLength := s.cfg.Quiz.EffectiveRoundLength()
	if state.QuestionsAsked >= roundLength {
		state.CurrentQuestion = nil
		if err := s.store.SaveSessionState(ctx, state); err != nil {
			return nil, err
		}
		return models.PlainText(answerFeedback(correct, question) + "\n\n" + roundSummary(state.Score, roundLength)), nil
	}

	next, err := s.store.DrawQuestion(ctx)
	if err != nil {
		return nil, err
	}
	state.CurrentQuestion = next
	if err := s.store.SaveSessionState(ctx, state); err != nil {
		return nil, err
	}

	leadIn := fmt.Sprintf("%s\n\nQuestion %d:", answerFeedback(correct, question), state.QuestionsAsked+1)
	return models.QuizResult(next, leadIn), nil
}

// answerMatches reports whether a free-text answer names the correct option.
// Matching is a bidirectional substring check with case and whitespace
// ignored, so "phishing", "Phishing!" and the full option text all count.
func answerMatches(message, correctOption string) bool {
	if strings.HasPrefix(strings.TrimSpace(message), incorrectAnswerPrefix) {
		return false
	}
	a := normalizeAnswer(message)
	b := normalizeAnswer(correctOption)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func answerFeedback(correct bool, question *models.QuizQuestion) string {
	if correct {
		return "Correct! " + question.Explanation
	}
	return fmt.Sprintf("Not quite. The correct answer was %q. %s",
		question.Options[question.CorrectOptionIndex], question.Explanation)
}

// roundSummary grades a finished round: a full score, a passing score of at
// least 60 percent, or encouragement to try again.
func roundSummary(score, roundLength int) string {
	switch {
	case score >= roundLength:
		return fmt.Sprintf("Perfect score! You got %d out of %d. You really know your stuff. Type \"play again\" for another round.", score, roundLength)
	case score*5 >= roundLength*3:
		return fmt.Sprintf("Nice work! You scored %d out of %d. Type \"play again\" for another round.", score, roundLength)
	default:
		return fmt.Sprintf("You scored %d out of %d. Keep learning and try again! Type \"play again\" for another round.", score, roundLength)
	}
}

// QuizStore is the SQL-backed store for the question bank and session records.
type QuizStore struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewQuizStore creates a new SQL-backed quiz store
func NewQuizStore(db *sql.DB, logger *observability.Logger) *QuizStore {
	return &QuizStore{db: db, logger: logger}
}

// DrawQuestion picks one question uniformly at random from the bank. Draws
// are with replacement; a round may repeat a question.
func (qs *QuizStore) DrawQuestion(ctx context.Context) (result0 *models.QuizQuestion, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "draw_question")
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT question_text, options, correct_option_index, explanation
		FROM quiz_questions
		ORDER BY RANDOM()
		LIMIT 1`

	var question models.QuizQuestion
	var optionsJSON []byte
	err = qs.db.QueryRowContext(ctx, query).Scan(
		&question.QuestionText,
		&optionsJSON,
		&question.CorrectOptionIndex,
		&question.Explanation,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrQuestionBankEmpty
		}
		return nil, contextutils.WrapError(err, "failed to draw quiz question")
	}

	if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
		return nil, contextutils.WrapError(err, "failed to decode question options")
	}

	return &question, nil
}

// GetSessionState loads the session record for a conversation. A conversation
// with no record yet returns nil rather than an error.
func (qs *QuizStore) GetSessionState(ctx context.Context, conversationID string) (result0 *models.QuizSessionState, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "get_session_state",
		observability.AttributeConversationID(conversationID),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT conversation_id, score, questions_asked, current_question, updated_at
		FROM quiz_sessions
		WHERE conversation_id = $1`

	var state models.QuizSessionState
	var questionJSON []byte
	err = qs.db.QueryRowContext(ctx, query, conversationID).Scan(
		&state.ConversationID,
		&state.Score,
		&state.QuestionsAsked,
		&questionJSON,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, contextutils.WrapError(err, "failed to load quiz session")
	}

	if len(questionJSON) > 0 {
		var question models.QuizQuestion
		if err := json.Unmarshal(questionJSON, &question); err != nil {
			return nil, contextutils.WrapError(err, "failed to decode current question")
		}
		state.CurrentQuestion = &question
	}

	return &state, nil
}

// SaveSessionState upserts the session record for a conversation.
func (qs *QuizStore) SaveSessionState(ctx context.Context, state *models.QuizSessionState) (err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "save_session_state",
		observability.AttributeConversationID(state.ConversationID),
	)
	defer observability.FinishSpan(span, &err)

	var questionJSON interface{}
	if state.CurrentQuestion != nil {
		encoded, err := json.Marshal(state.CurrentQuestion)
		if err != nil {
			return contextutils.WrapError(err, "failed to encode current question")
		}
		questionJSON = encoded
	}

	query := `
		INSERT INTO quiz_sessions (conversation_id, score, questions_asked, current_question, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (conversation_id) DO UPDATE
		SET score = EXCLUDED.score,
		    questions_asked = EXCLUDED.questions_asked,
		    current_question = EXCLUDED.current_question,
		    updated_at = CURRENT_TIMESTAMP`

	if _, err := qs.db.ExecContext(ctx, query, state.ConversationID, state.Score, state.QuestionsAsked, questionJSON); err != nil {
		return contextutils.WrapError(err, "failed to save quiz session")
	}
	return nil
}

// CountQuestions returns the size of the question bank.
func (qs *QuizStore) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := qs.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_questions`).Scan(&count); err != nil {
		return 0, contextutils.WrapError(err, "failed to count quiz questions")
	}
	return count, nil
}

// SeedQuestions inserts questions into the bank, skipping ones whose text is
// already present. Returns the number inserted.
func (qs *QuizStore) SeedQuestions(ctx context.Context, questions []models.QuizQuestion) (result0 int, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "seed_questions")
	defer observability.FinishSpan(span, &err)

	tx, err := qs.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, q := range questions {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return 0, contextutils.WrapError(err, "failed to encode question options")
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM quiz_questions WHERE question_text = $1)`, q.QuestionText,
		).Scan(&exists); err != nil {
			return 0, contextutils.WrapError(err, "failed to check for existing question")
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_questions (question_text, options, correct_option_index, explanation)
			 VALUES ($1, $2, $3, $4)`,
			q.QuestionText, optionsJSON, q.CorrectOptionIndex, q.Explanation,
		); err != nil {
			return 0, contextutils.WrapError(err, "failed to insert question")
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, contextutils.WrapError(err, "failed to commit seed transaction")
	}

	span.SetAttributes(attribute.Int("quiz.seeded", inserted))
	return inserted, nil
}
