package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"
)

// fakeUserService is an in-memory stand-in for the user store.
type fakeUserService struct {
	nextID  int
	byEmail map[string]*models.User
	byID    map[int]*models.User
	authErr error
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		nextID:  1,
		byEmail: make(map[string]*models.User),
		byID:    make(map[int]*models.User),
	}
}

func (f *fakeUserService) CreateUser(_ context.Context, email, password string, level models.KnowledgeLevel, language string) (*models.User, error) {
	if !contextutils.IsValidEmail(email) {
		return nil, contextutils.ErrInvalidInput
	}
	if _, exists := f.byEmail[email]; exists {
		return nil, contextutils.ErrRecordExists
	}
	user := &models.User{
		ID:                f.nextID,
		Email:             email,
		KnowledgeLevel:    sql.NullString{String: string(level), Valid: true},
		PreferredLanguage: sql.NullString{String: language, Valid: true},
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	f.nextID++
	f.byEmail[email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUserService) AuthenticateUser(_ context.Context, email, _ string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	user, ok := f.byEmail[email]
	if !ok {
		return nil, contextutils.ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeUserService) GetUserByID(_ context.Context, userID int) (*models.User, error) {
	user, ok := f.byID[userID]
	if !ok {
		return nil, contextutils.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, contextutils.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserService) UpdateProfile(_ context.Context, userID int, level models.KnowledgeLevel, language string) error {
	user, ok := f.byID[userID]
	if !ok {
		return contextutils.ErrRecordNotFound
	}
	user.KnowledgeLevel = sql.NullString{String: string(level), Valid: true}
	user.PreferredLanguage = sql.NullString{String: language, Valid: true}
	return nil
}

func (f *fakeUserService) UpdateLastActive(_ context.Context, _ int) error { return nil }

// fakeConversationService keeps conversations and turns in memory.
type fakeConversationService struct {
	conversations map[string]*models.Conversation
	turns         map[string][]models.ConversationTurn
	nextConvID    int
}

func newFakeConversationService() *fakeConversationService {
	return &fakeConversationService{
		conversations: make(map[string]*models.Conversation),
		turns:         make(map[string][]models.ConversationTurn),
		nextConvID:    1,
	}
}

func (f *fakeConversationService) CreateConversation(_ context.Context, userID int, title string, mode models.OperatingMode) (*models.Conversation, error) {
	id := fmt.Sprintf("conv-%d", f.nextConvID)
	f.nextConvID++
	conversation := &models.Conversation{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Mode:      mode,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.conversations[id] = conversation
	return conversation, nil
}

func (f *fakeConversationService) GetConversation(_ context.Context, conversationID string, userID int) (*models.Conversation, error) {
	conversation, ok := f.conversations[conversationID]
	if !ok || conversation.UserID != userID {
		return nil, contextutils.ErrRecordNotFound
	}
	out := *conversation
	out.Turns = f.turns[conversationID]
	return &out, nil
}

func (f *fakeConversationService) GetUserConversations(_ context.Context, userID int) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, conversation := range f.conversations {
		if conversation.UserID == userID {
			out = append(out, *conversation)
		}
	}
	return out, nil
}

func (f *fakeConversationService) UpdateConversationTitle(_ context.Context, conversationID string, userID int, title string) error {
	conversation, ok := f.conversations[conversationID]
	if !ok || conversation.UserID != userID {
		return contextutils.ErrRecordNotFound
	}
	conversation.Title = title
	return nil
}

func (f *fakeConversationService) DeleteConversation(_ context.Context, conversationID string, userID int) error {
	conversation, ok := f.conversations[conversationID]
	if !ok || conversation.UserID != userID {
		return contextutils.ErrRecordNotFound
	}
	delete(f.conversations, conversationID)
	delete(f.turns, conversationID)
	return nil
}

func (f *fakeConversationService) AppendTurn(_ context.Context, conversationID string, turn *models.ConversationTurn) (*models.ConversationTurn, error) {
	if _, ok := f.conversations[conversationID]; !ok {
		return nil, contextutils.ErrRecordNotFound
	}
	saved := *turn
	saved.ConversationID = conversationID
	saved.CreatedAt = time.Now()
	f.turns[conversationID] = append(f.turns[conversationID], saved)
	return &saved, nil
}

func (f *fakeConversationService) GetRecentTurns(_ context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	turns := f.turns[conversationID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (f *fakeConversationService) GetLatestQuestionTurn(_ context.Context, conversationID string) (*models.ConversationTurn, error) {
	turns := f.turns[conversationID]
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Quiz != nil {
			out := turns[i]
			return &out, nil
		}
	}
	return nil, nil
}

// fakeGenerator returns a canned provider reply.
type fakeGenerator struct {
	tm       *services.AITemplateManager
	response string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, _ *services.GenerationRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) TemplateManager() *services.AITemplateManager { return f.tm }

// fakeQuestionStore serves one fixed question and keeps session state in memory.
type fakeQuestionStore struct {
	question *models.QuizQuestion
	states   map[string]*models.QuizSessionState
}

func (f *fakeQuestionStore) DrawQuestion(_ context.Context) (*models.QuizQuestion, error) {
	if f.question == nil {
		return nil, contextutils.ErrQuestionBankEmpty
	}
	out := *f.question
	return &out, nil
}

func (f *fakeQuestionStore) GetSessionState(_ context.Context, conversationID string) (*models.QuizSessionState, error) {
	state, ok := f.states[conversationID]
	if !ok {
		return nil, nil
	}
	out := *state
	return &out, nil
}

func (f *fakeQuestionStore) SaveSessionState(_ context.Context, state *models.QuizSessionState) error {
	if f.states == nil {
		f.states = make(map[string]*models.QuizSessionState)
	}
	saved := *state
	f.states[state.ConversationID] = &saved
	return nil
}

type testEnv struct {
	router        *gin.Engine
	users         *fakeUserService
	conversations *fakeConversationService
	generator     *fakeGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tm, err := services.NewAITemplateManager()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Debug = true
	cfg.Server.SessionSecret = "test-secret"
	cfg.OpenTelemetry.ServiceName = "cyberadvisor-test"

	logger := observability.NewLogger(nil)
	users := newFakeUserService()
	conversations := newFakeConversationService()
	generator := &fakeGenerator{tm: tm, response: "Use a password manager."}
	quiz := services.NewQuizService(&fakeQuestionStore{question: &models.QuizQuestion{
		QuestionText:       "What does 2FA add to a login?",
		Options:            []string{"A second password", "A second verification factor", "A longer username", "Nothing"},
		CorrectOptionIndex: 1,
		Explanation:        "Two-factor authentication pairs the password with something you have.",
	}}, cfg, logger)
	chat := services.NewChatService(generator, conversations, quiz, cfg, logger)

	router := NewRouter(cfg, RouterDeps{
		Users:         users,
		Conversations: conversations,
		Chat:          chat,
	}, logger)

	return &testEnv{
		router:        router,
		users:         users,
		conversations: conversations,
		generator:     generator,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// signupAndLogin creates an account and returns the session cookies.
func (e *testEnv) signupAndLogin(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	w := e.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
