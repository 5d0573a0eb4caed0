package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	contextutils "cyberadvisor/internal/utils"
)

// fakeAIService returns a canned response and records the request it saw.
type fakeAIService struct {
	tm       *AITemplateManager
	response string
	err      error
	calls    int
	lastReq  *GenerationRequest
}

func newFakeAIService(t *testing.T, response string) *fakeAIService {
	t.Helper()
	tm, err := NewAITemplateManager()
	require.NoError(t, err)
	return &fakeAIService{tm: tm, response: response}
}

func (f *fakeAIService) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAIService) TemplateManager() *AITemplateManager {
	return f.tm
}

// fakeConversationStore keeps conversations and turns in memory.
type fakeConversationStore struct {
	conversations map[string]*models.Conversation
	turns         map[string][]models.ConversationTurn
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		conversations: make(map[string]*models.Conversation),
		turns:         make(map[string][]models.ConversationTurn),
	}
}

func (f *fakeConversationStore) addConversation(id string, userID int, mode models.OperatingMode) {
	f.conversations[id] = &models.Conversation{ID: id, UserID: userID, Mode: mode, Title: "New Chat"}
}

func (f *fakeConversationStore) CreateConversation(ctx context.Context, userID int, title string, mode models.OperatingMode) (*models.Conversation, error) {
	id := fmt.Sprintf("conv-%d", len(f.conversations)+1)
	f.addConversation(id, userID, mode)
	return f.conversations[id], nil
}

func (f *fakeConversationStore) GetConversation(ctx context.Context, conversationID string, userID int) (*models.Conversation, error) {
	conv, ok := f.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, contextutils.ErrRecordNotFound
	}
	clone := *conv
	clone.Turns = f.turns[conversationID]
	return &clone, nil
}

func (f *fakeConversationStore) GetUserConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, conv := range f.conversations {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (f *fakeConversationStore) UpdateConversationTitle(ctx context.Context, conversationID string, userID int, title string) error {
	conv, ok := f.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return contextutils.ErrRecordNotFound
	}
	conv.Title = title
	return nil
}

func (f *fakeConversationStore) DeleteConversation(ctx context.Context, conversationID string, userID int) error {
	conv, ok := f.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return contextutils.ErrRecordNotFound
	}
	delete(f.conversations, conversationID)
	delete(f.turns, conversationID)
	return nil
}

func (f *fakeConversationStore) AppendTurn(ctx context.Context, conversationID string, turn *models.ConversationTurn) (*models.ConversationTurn, error) {
	saved := *turn
	saved.ID = fmt.Sprintf("turn-%d", len(f.turns[conversationID])+1)
	saved.ConversationID = conversationID
	saved.CreatedAt = time.Now()
	f.turns[conversationID] = append(f.turns[conversationID], saved)
	return &saved, nil
}

func (f *fakeConversationStore) GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	turns := f.turns[conversationID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (f *fakeConversationStore) GetLatestQuestionTurn(ctx context.Context, conversationID string) (*models.ConversationTurn, error) {
	turns := f.turns[conversationID]
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Quiz != nil {
			return &turns[i], nil
		}
	}
	return nil, nil
}

func testUser() *models.User {
	return &models.User{ID: 7, Email: "test@example.com"}
}

func newTestChatService(t *testing.T, ai AIServiceInterface, store ConversationServiceInterface, quizStore QuizStoreInterface) *ChatService {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{MaxHistory: 10},
		Quiz:   config.QuizConfig{RoundLength: 5},
	}
	logger := observability.NewLogger(nil)
	quiz := NewQuizService(quizStore, cfg, logger)
	return NewChatService(ai, store, quiz, cfg, logger)
}

func TestHandleTurn_NormalModeTextReply(t *testing.T) {
	ai := newFakeAIService(t, "Phishing is an impersonation scam. Stay alert.")
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeNormal)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	result, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "What is phishing?", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, "Phishing is an impersonation scam. Stay alert.", result.Text)

	turns := store.turns["conv-1"]
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "What is phishing?", turns[0].Text)
	assert.Equal(t, models.RoleModel, turns[1].Role)
}

func TestHandleTurn_NormalModeJSONStaysText(t *testing.T) {
	reply := "Config files look like this: {\"question\": \"what port?\", \"options\": [\"80\", \"443\"]} in practice."
	ai := newFakeAIService(t, reply)
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeNormal)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	result, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "Show me an example", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, reply, result.Text)
	assert.Nil(t, result.Quiz)
}

func TestHandleTurn_UserTurnPersistedBeforeGenerationFails(t *testing.T) {
	ai := newFakeAIService(t, "")
	ai.err = contextutils.ErrAllProvidersExhausted
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeNormal)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	_, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "hello?", nil)
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrAllProvidersExhausted))

	// The message survives even though no reply was generated.
	turns := store.turns["conv-1"]
	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "hello?", turns[0].Text)
}

func TestHandleTurn_QuizModeSkipsProvider(t *testing.T) {
	ai := newFakeAIService(t, "should never be used")
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeQuiz)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	result, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "start", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KindQuiz, result.Kind)
	assert.Zero(t, ai.calls)

	// The model turn stores the question payload for later resumption.
	turns := store.turns["conv-1"]
	require.Len(t, turns, 2)
	require.NotNil(t, turns[1].Quiz)
	assert.Equal(t, "What is phishing?", turns[1].Quiz.QuestionText)
}

func TestHandleTurn_AnalysisModeParsesReport(t *testing.T) {
	ai := newFakeAIService(t, `{"riskLevel": "Critical", "score": 5, "summary": "Active scam."}`)
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeAnalysis)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	result, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "Check this message please", nil)
	require.NoError(t, err)
	require.Equal(t, models.KindAnalysis, result.Kind)
	assert.Equal(t, models.RiskCritical, result.Analysis.RiskLevel)
	assert.Equal(t, "Active scam.", result.Text)
}

func TestHandleTurn_HistoryExcludesCurrentMessage(t *testing.T) {
	ai := newFakeAIService(t, "reply two")
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeNormal)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	_, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "first question", nil)
	require.NoError(t, err)
	_, err = svc.HandleTurn(context.Background(), testUser(), "conv-1", "second question", nil)
	require.NoError(t, err)

	require.NotNil(t, ai.lastReq)
	assert.Equal(t, "second question", ai.lastReq.Message)
	require.Len(t, ai.lastReq.History, 2)
	assert.Equal(t, "first question", ai.lastReq.History[0].Text)
	assert.Equal(t, "reply two", ai.lastReq.History[1].Text)
	assert.NotEmpty(t, ai.lastReq.SystemInstruction)
}

func TestHandleTurn_UnknownConversation(t *testing.T) {
	ai := newFakeAIService(t, "reply")
	store := newFakeConversationStore()
	store.addConversation("conv-1", 99, models.ModeNormal) // owned by someone else
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	_, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "hello", nil)
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
	assert.Zero(t, ai.calls)
	assert.Empty(t, store.turns["conv-1"])
}

func TestResumeQuestion(t *testing.T) {
	ai := newFakeAIService(t, "unused")
	store := newFakeConversationStore()
	store.addConversation("conv-1", 7, models.ModeQuiz)
	svc := newTestChatService(t, ai, store, newFakeQuizStore(phishingQuestion()))

	t.Run("no question yet", func(t *testing.T) {
		q, err := svc.ResumeQuestion(context.Background(), testUser(), "conv-1")
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("after a question was asked", func(t *testing.T) {
		_, err := svc.HandleTurn(context.Background(), testUser(), "conv-1", "start", nil)
		require.NoError(t, err)

		q, err := svc.ResumeQuestion(context.Background(), testUser(), "conv-1")
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, "What is phishing?", q.QuestionText)
	})
}
