package core

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aiwolfdial/whos-the-ai/logic"
	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, configure func(*model.Config)) (*Server, http.Handler) {
	t.Helper()
	config := model.DefaultConfig()
	config.Game.NPC.Seed = 0
	if configure != nil {
		configure(&config)
	}
	server, err := NewServer(config)
	require.NoError(t, err)
	t.Cleanup(server.sessions.CloseAll)
	return server, server.Router()
}

func do(handler http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func createGame(t *testing.T, handler http.Handler, body string) gjson.Result {
	t.Helper()
	w := do(handler, http.MethodPost, "/api/games", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return gjson.Parse(w.Body.String())
}

func TestVersion(t *testing.T) {
	_, handler := newTestServer(t, nil)
	w := do(handler, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev", gjson.Get(w.Body.String(), "version").String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Server"), "whos-the-ai/"))
}

func TestCreateGame(t *testing.T) {
	server, handler := newTestServer(t, nil)
	created := createGame(t, handler, `{"playerCount": 5, "gameMode": "find-ai"}`)

	id := created.Get("id").String()
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, server.sessions.Len())
	assert.Equal(t, "CHAT", created.Get("state.phase").String())
	assert.Equal(t, int64(0), created.Get("state.round").Int())
	assert.InDelta(t, 360, created.Get("state.timeRemaining").Int(), 1)

	players := created.Get("state.players").Array()
	require.Len(t, players, 5)
	assert.Equal(t, model.HumanPlayerID, players[0].Get("id").String())
	assert.False(t, players[0].Get("isAi").Bool())
	for _, player := range players[1:] {
		assert.False(t, player.Get("isAi").Exists(), "roles must stay hidden")
	}
	assert.Equal(t, int64(1), created.Get("state.aliveAiCount").Int())
	assert.Equal(t, int64(4), created.Get("state.aliveHumanCount").Int())

	w := do(handler, http.MethodGet, "/api/games/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, gjson.Get(w.Body.String(), "gameId").String())
}

func TestCreateGameRejectsBadSettings(t *testing.T) {
	_, handler := newTestServer(t, nil)
	for _, body := range []string{
		`{"playerCount": 2, "gameMode": "find-ai"}`,
		`{"playerCount": 21, "gameMode": "find-ai"}`,
		`{"playerCount": 5, "gameMode": "guess-who"}`,
		`{"playerCount": 5, "aiCount": 5, "gameMode": "find-ai"}`,
		`{"playerCount": 5, "aiCount": 0, "gameMode": "find-ai"}`,
		`not json`,
	} {
		w := do(handler, http.MethodPost, "/api/games", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSessionLimit(t *testing.T) {
	dir := t.TempDir()
	server, handler := newTestServer(t, func(config *model.Config) {
		config.Game.MaxSessions = 1
		config.GameLogger.Enable = true
		config.GameLogger.OutputDir = dir
	})
	id := createGame(t, handler, `{"playerCount": 4, "gameMode": "hide-from-ai"}`).Get("id").String()
	w := do(handler, http.MethodPost, "/api/games", `{"playerCount": 4, "gameMode": "hide-from-ai"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 1, server.sessions.Len())

	// a rejected game is never started, so it leaves no game log behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, id+".log", entry.Name())
	}
}

func TestGameActions(t *testing.T) {
	_, handler := newTestServer(t, nil)
	id := createGame(t, handler, `{"playerCount": 5, "gameMode": "find-ai"}`).Get("id").String()
	base := "/api/games/" + id

	w := do(handler, http.MethodPost, base+"/messages", `{"text": "hi all"}`)
	require.Equal(t, http.StatusOK, w.Code)
	messages := gjson.Get(w.Body.String(), "messages").Array()
	require.Len(t, messages, 1)
	assert.Equal(t, "hi all", messages[0].Get("text").String())
	assert.False(t, messages[0].Get("isAiOriginated").Bool())

	w = do(handler, http.MethodPost, base+"/messages", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(handler, http.MethodPost, base+"/messages", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(handler, http.MethodPost, base+"/votes", `{"targetId": "player_2"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CHAT", gjson.Get(w.Body.String(), "state.phase").String())
	w = do(handler, http.MethodPost, base+"/confirm", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(handler, http.MethodPost, base+"/continue", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(handler, http.MethodGet, "/api/games/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteGame(t *testing.T) {
	server, handler := newTestServer(t, nil)
	id := createGame(t, handler, `{"playerCount": 5, "gameMode": "find-ai"}`).Get("id").String()
	game, err := server.sessions.Get(id)
	require.NoError(t, err)

	w := do(handler, http.MethodDelete, "/api/games/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, server.sessions.Len())
	assert.True(t, game.IsFinished())
	assert.ErrorIs(t, game.SendMessage("anyone?"), logic.ErrGameClosed)

	w = do(handler, http.MethodGet, "/api/games/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthentication(t *testing.T) {
	_, handler := newTestServer(t, func(config *model.Config) {
		config.Server.Authentication.Enable = true
		config.Server.Authentication.Secret = "test-secret"
	})
	created := createGame(t, handler, `{"playerCount": 5, "gameMode": "find-ai"}`)
	id, token := created.Get("id").String(), created.Get("token").String()
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/api/games/"+id, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/api/games/"+id, "", "Authorization", "Bearer nope").Code)
	assert.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/api/games/"+id, "", "Authorization", "Bearer "+token).Code)
	assert.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/api/games/"+id+"?token="+token, "").Code)

	other := createGame(t, handler, `{"playerCount": 5, "gameMode": "find-ai"}`).Get("id").String()
	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/api/games/"+other, "", "Authorization", "Bearer "+token).Code)
}

type failingGateway struct{}

func (failingGateway) ChatReply(ctx context.Context, request model.ChatRequest) (model.ChatResponse, error) {
	return model.ChatResponse{}, errors.New("down")
}

func (failingGateway) VoteDecision(ctx context.Context, request model.VoteRequest) (model.VoteResponse, error) {
	return model.VoteResponse{}, errors.New("down")
}

func TestAIEndpoint(t *testing.T) {
	server, handler := newTestServer(t, nil)

	w := do(handler, http.MethodPost, "/api/ai", `{"action": "chatReply", "speakerId": "player_1", "message": "hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "result.response").String())

	w = do(handler, http.MethodPost, "/api/ai", `{"action": "voteDecision", "voterId": "player_2",
		"eligibleTargets": [{"id": "player_1", "name": "You"}, {"id": "player_3", "name": "Nexus"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, []string{"player_1", "player_3"}, gjson.Get(w.Body.String(), "result.votedForPlayerId").String())

	w = do(handler, http.MethodPost, "/api/ai", `{"action": "voteDecision", "voterId": "player_2", "eligibleTargets": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(handler, http.MethodPost, "/api/ai", `{"action": "chatReply", "speakerId": "player_1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(handler, http.MethodPost, "/api/ai", `{"action": "dance"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	server.SetGateway(failingGateway{})
	w = do(handler, http.MethodPost, "/api/ai", `{"action": "chatReply", "speakerId": "player_1", "message": "hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "fallback").Bool())
}

func TestWebsocketStream(t *testing.T) {
	_, handler := newTestServer(t, nil)
	id := createGame(t, handler, `{"playerCount": 5, "gameMode": "find-ai"}`).Get("id").String()

	ts := httptest.NewServer(handler)
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game="

	_, resp, err := websocket.DefaultDialer.Dial(url+"missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+id, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "state", gjson.GetBytes(data, "event").String())
	assert.Equal(t, id, gjson.GetBytes(data, "state.gameId").String())

	w := do(handler, http.MethodPost, "/api/games/"+id+"/messages", `{"text": "hello stream"}`)
	require.Equal(t, http.StatusOK, w.Code)
	for {
		_, data, err = conn.ReadMessage()
		require.NoError(t, err)
		if gjson.GetBytes(data, "event").String() == "message" {
			break
		}
	}
	assert.Equal(t, "hello stream", gjson.GetBytes(data, "message.text").String())
}
