package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createConversation(t *testing.T, env *testEnv, cookies []*http.Cookie, mode string) string {
	t.Helper()
	w := env.do(withCookies(jsonRequest(t, http.MethodPost, "/api/v1/conversations", map[string]string{
		"mode": mode,
	}), cookies))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	conversation, ok := body["conversation"].(map[string]interface{})
	require.True(t, ok)
	id, ok := conversation["id"].(string)
	require.True(t, ok)
	return id
}

func TestConversationHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")

	id := createConversation(t, env, cookies, "learning")

	w := env.do(withCookies(jsonRequest(t, http.MethodGet, "/api/v1/conversations/"+id, nil), cookies))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	conversation := body["conversation"].(map[string]interface{})
	assert.Equal(t, "learning", conversation["mode"])
}

func TestConversationHandler_CreateDefaultsToNormalMode(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")

	w := env.do(withCookies(jsonRequest(t, http.MethodPost, "/api/v1/conversations", map[string]string{}), cookies))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	conversation := body["conversation"].(map[string]interface{})
	assert.Equal(t, "normal", conversation["mode"])
}

func TestConversationHandler_CreateRejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")

	w := env.do(withCookies(jsonRequest(t, http.MethodPost, "/api/v1/conversations", map[string]string{
		"mode": "turbo",
	}), cookies))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationHandler_ListReturnsOwnConversationsOnly(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")
	otherCookies := env.signupAndLogin(t, "other@example.com")

	createConversation(t, env, cookies, "normal")
	createConversation(t, env, otherCookies, "normal")

	w := env.do(withCookies(jsonRequest(t, http.MethodGet, "/api/v1/conversations", nil), cookies))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	conversations, ok := body["conversations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, conversations, 1)
}

func TestConversationHandler_GetForeignConversationIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ownerCookies := env.signupAndLogin(t, "owner@example.com")
	otherCookies := env.signupAndLogin(t, "other@example.com")

	id := createConversation(t, env, ownerCookies, "normal")

	w := env.do(withCookies(jsonRequest(t, http.MethodGet, "/api/v1/conversations/"+id, nil), otherCookies))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationHandler_Rename(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")
	id := createConversation(t, env, cookies, "normal")

	w := env.do(withCookies(jsonRequest(t, http.MethodPut, "/api/v1/conversations/"+id, map[string]string{
		"title": "Phishing questions",
	}), cookies))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(withCookies(jsonRequest(t, http.MethodGet, "/api/v1/conversations/"+id, nil), cookies))
	body := decodeBody(t, w)
	conversation := body["conversation"].(map[string]interface{})
	assert.Equal(t, "Phishing questions", conversation["title"])
}

func TestConversationHandler_RenameRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")
	id := createConversation(t, env, cookies, "normal")

	w := env.do(withCookies(jsonRequest(t, http.MethodPut, "/api/v1/conversations/"+id, map[string]string{}), cookies))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "user@example.com")
	id := createConversation(t, env, cookies, "normal")

	w := env.do(withCookies(jsonRequest(t, http.MethodDelete, "/api/v1/conversations/"+id, nil), cookies))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(withCookies(jsonRequest(t, http.MethodGet, "/api/v1/conversations/"+id, nil), cookies))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationHandler_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodGet, "/api/v1/conversations", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
