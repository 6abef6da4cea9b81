package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupify/backend/pkg/chat"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")

	var resp chat.Message
	w := env.doJSON(t, http.MethodPost, "/api/v1/chat/message", sess.AccessToken,
		SendMessageRequest{RoomID: "room-1", Content: "hello"}, &resp)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "room-1", resp.RoomID)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, sess.User.ID, resp.SenderID)
	assert.NotZero(t, resp.ID)
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")

	w := env.doJSON(t, http.MethodPost, "/api/v1/chat/message", sess.AccessToken,
		SendMessageRequest{RoomID: "", Content: "hello"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/v1/chat/message", sess.AccessToken,
		SendMessageRequest{RoomID: "room-1", Content: ""}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessage_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(t, http.MethodPost, "/api/v1/chat/message", "",
		SendMessageRequest{RoomID: "room-1", Content: "hello"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomMessages(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")

	for _, content := range []string{"first", "second"} {
		w := env.doJSON(t, http.MethodPost, "/api/v1/chat/message", sess.AccessToken,
			SendMessageRequest{RoomID: "room-1", Content: content}, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var resp struct {
		Messages []chat.Message `json:"messages"`
	}
	w := env.doJSON(t, http.MethodGet, "/api/v1/chat/room/room-1/messages", sess.AccessToken, nil, &resp)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "first", resp.Messages[0].Content)
	assert.Equal(t, "second", resp.Messages[1].Content)
}

func TestRoomMessages_EmptyRoom(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")

	var resp struct {
		Messages []chat.Message `json:"messages"`
	}
	w := env.doJSON(t, http.MethodGet, "/api/v1/chat/room/empty-room/messages", sess.AccessToken, nil, &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, resp.Messages)
	assert.Empty(t, resp.Messages)
}

func TestGenerateAI_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")

	w := env.doJSON(t, http.MethodPost, "/api/v1/chat/ai", sess.AccessToken,
		GenerateRequest{Prompt: "hello"}, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGenerateAI_MissingPrompt(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, "alice@example.com", "hunter22")

	w := env.doJSON(t, http.MethodPost, "/api/v1/chat/ai", sess.AccessToken,
		GenerateRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
