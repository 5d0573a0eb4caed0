package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	contextutils "cyberadvisor/internal/utils"
)

// fakeQuizStore serves questions from a fixed list and keeps session state in
// memory.
type fakeQuizStore struct {
	questions []models.QuizQuestion
	next      int
	states    map[string]*models.QuizSessionState
	drawErr   error
}

func newFakeQuizStore(questions ...models.QuizQuestion) *fakeQuizStore {
	return &fakeQuizStore{
		questions: questions,
		states:    make(map[string]*models.QuizSessionState),
	}
}

func (f *fakeQuizStore) DrawQuestion(ctx context.Context) (*models.QuizQuestion, error) {
	if f.drawErr != nil {
		return nil, f.drawErr
	}
	q := f.questions[f.next%len(f.questions)]
	f.next++
	return &q, nil
}

func (f *fakeQuizStore) GetSessionState(ctx context.Context, conversationID string) (*models.QuizSessionState, error) {
	state, ok := f.states[conversationID]
	if !ok {
		return nil, nil
	}
	clone := *state
	return &clone, nil
}

func (f *fakeQuizStore) SaveSessionState(ctx context.Context, state *models.QuizSessionState) error {
	clone := *state
	f.states[state.ConversationID] = &clone
	return nil
}

func phishingQuestion() models.QuizQuestion {
	return models.QuizQuestion{
		QuestionText:       "What is phishing?",
		Options:            []string{"A water sport", "An impersonation scam", "A firewall", "A password manager"},
		CorrectOptionIndex: 1,
		Explanation:        "Phishing impersonates trusted parties to steal information.",
	}
}

func newTestQuizService(store QuizStoreInterface) *QuizService {
	cfg := &config.Config{Quiz: config.QuizConfig{RoundLength: 5}}
	return NewQuizService(store, cfg, observability.NewLogger(nil))
}

func TestHandleQuizTurn_StartDrawsQuestion(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	for _, word := range []string{"start", "yes", "continue", "play again", "  Start  ", "Start the quiz please", "yes, let's go"} {
		t.Run(word, func(t *testing.T) {
			result, err := svc.HandleQuizTurn(context.Background(), "conv-1", word)
			require.NoError(t, err)
			require.Equal(t, models.KindQuiz, result.Kind)
			require.NotNil(t, result.Quiz)
			assert.Equal(t, "What is phishing?", result.Quiz.QuestionText)

			state := store.states["conv-1"]
			require.NotNil(t, state)
			assert.Equal(t, 0, state.Score)
			assert.Equal(t, 0, state.QuestionsAsked)
			require.NotNil(t, state.CurrentQuestion)
		})
	}
}

func TestHandleQuizTurn_StopLeavesStateUntouched(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	_, err := svc.HandleQuizTurn(context.Background(), "conv-1", "start")
	require.NoError(t, err)
	before := *store.states["conv-1"]

	for _, word := range []string{"stop", "quit", "exit", "STOP", "please stop now"} {
		result, err := svc.HandleQuizTurn(context.Background(), "conv-1", word)
		require.NoError(t, err)
		assert.Equal(t, models.KindText, result.Kind)
		assert.Contains(t, result.Text, "Thanks for playing")
	}

	assert.Equal(t, before, *store.states["conv-1"])
}

func TestHandleQuizTurn_StartWordWinsOverStopWord(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	result, err := svc.HandleQuizTurn(context.Background(), "conv-1", "stop, actually start over")
	require.NoError(t, err)
	require.Equal(t, models.KindQuiz, result.Kind)
	require.NotNil(t, store.states["conv-1"])
	assert.Equal(t, 0, store.states["conv-1"].QuestionsAsked)
}

func TestHandleQuizTurn_AnswerWithoutQuestionPrompts(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	result, err := svc.HandleQuizTurn(context.Background(), "conv-1", "an impersonation scam")
	require.NoError(t, err)
	assert.Equal(t, models.KindText, result.Kind)
	assert.Contains(t, result.Text, "start")
	assert.Empty(t, store.states)
}

func TestHandleQuizTurn_CorrectAnswerScores(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	_, err := svc.HandleQuizTurn(context.Background(), "conv-1", "start")
	require.NoError(t, err)

	result, err := svc.HandleQuizTurn(context.Background(), "conv-1", "An impersonation scam")
	require.NoError(t, err)
	require.Equal(t, models.KindQuiz, result.Kind)
	assert.Contains(t, result.Text, "Correct!")

	state := store.states["conv-1"]
	assert.Equal(t, 1, state.Score)
	assert.Equal(t, 1, state.QuestionsAsked)
}

func TestHandleQuizTurn_WrongAnswerShowsCorrection(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	_, err := svc.HandleQuizTurn(context.Background(), "conv-1", "start")
	require.NoError(t, err)

	result, err := svc.HandleQuizTurn(context.Background(), "conv-1", "a firewall")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Not quite")
	assert.Contains(t, result.Text, "An impersonation scam")

	state := store.states["conv-1"]
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, 1, state.QuestionsAsked)
}

func TestHandleQuizTurn_IncorrectPrefixForcesWrong(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	_, err := svc.HandleQuizTurn(context.Background(), "conv-1", "start")
	require.NoError(t, err)

	// The payload after the prefix matches the correct option, but the
	// prefix wins.
	result, err := svc.HandleQuizTurn(context.Background(), "conv-1", "incorrect:::An impersonation scam")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Not quite")
	assert.Equal(t, 0, store.states["conv-1"].Score)
}

func TestHandleQuizTurn_RoundCompletesAfterFiveQuestions(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	svc := newTestQuizService(store)

	_, err := svc.HandleQuizTurn(context.Background(), "conv-1", "start")
	require.NoError(t, err)

	var result *models.GenerationResult
	for i := 0; i < 5; i++ {
		result, err = svc.HandleQuizTurn(context.Background(), "conv-1", "an impersonation scam")
		require.NoError(t, err)
	}

	assert.Equal(t, models.KindText, result.Kind)
	assert.Contains(t, result.Text, "Perfect score")
	assert.Contains(t, result.Text, "5 out of 5")

	state := store.states["conv-1"]
	assert.Equal(t, 5, state.QuestionsAsked)
	assert.Nil(t, state.CurrentQuestion)
}

func TestHandleQuizTurn_QuestionBankEmpty(t *testing.T) {
	store := newFakeQuizStore(phishingQuestion())
	store.drawErr = contextutils.ErrQuestionBankEmpty
	svc := newTestQuizService(store)

	_, err := svc.HandleQuizTurn(context.Background(), "conv-1", "start")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrQuestionBankEmpty))
}

func TestAnswerMatches(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		correct  string
		expected bool
	}{
		{"exact", "An impersonation scam", "An impersonation scam", true},
		{"case insensitive", "an IMPERSONATION scam", "An impersonation scam", true},
		{"whitespace insensitive", "  an  impersonation   scam ", "An impersonation scam", true},
		{"message contains option", "I think it is an impersonation scam!", "An impersonation scam", true},
		{"partial word of option", "impersonation", "An impersonation scam", true},
		{"short option inside message", "use a VPN for that", "VPN", true},
		{"wrong answer", "a firewall", "An impersonation scam", false},
		{"forced incorrect", "incorrect:::An impersonation scam", "An impersonation scam", false},
		{"empty message", "", "An impersonation scam", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, answerMatches(tt.message, tt.correct))
		})
	}
}

func TestRoundSummary(t *testing.T) {
	assert.Contains(t, roundSummary(5, 5), "Perfect score")
	assert.Contains(t, roundSummary(4, 5), "Nice work")
	assert.Contains(t, roundSummary(3, 5), "Nice work")
	assert.Contains(t, roundSummary(2, 5), "Keep learning")
	assert.Contains(t, roundSummary(0, 5), "Keep learning")
}
