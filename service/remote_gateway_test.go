package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRemoteGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		switch gjson.GetBytes(data, "action").String() {
		case ActionChatReply:
			assert.Equal(t, "hello", gjson.GetBytes(data, "message").String())
			io.WriteString(w, `{"result": {"response": "hi there", "updatedChatHistory": "You: hello"}}`)
		case ActionVoteDecision:
			assert.Equal(t, "player_3", gjson.GetBytes(data, "eligibleTargets.1.id").String())
			io.WriteString(w, `{"result": {"votedForPlayerId": "player_3"}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error": "Invalid action"}`)
		}
	}))
	defer server.Close()

	gateway := NewRemoteGateway(server.URL, server.Client(), util.NewRand(1))
	chat, err := gateway.ChatReply(context.Background(), model.ChatRequest{SpeakerID: "player_1", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", chat.Response)
	assert.Equal(t, "You: hello", chat.UpdatedChatHistory)

	vote, err := gateway.VoteDecision(context.Background(), model.VoteRequest{VoterID: "player_2", EligibleTargets: testTargets})
	require.NoError(t, err)
	assert.Equal(t, "player_3", vote.VotedForPlayerID)
}

func TestRemoteGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			io.WriteString(w, `{"ok": true}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "AI service failed", "fallback": true}`)
	}))
	defer server.Close()

	_, err := NewRemoteGateway(server.URL, nil, util.NewRand(1)).ChatReply(context.Background(), model.ChatRequest{SpeakerID: "player_1", Message: "hi"})
	assert.ErrorIs(t, err, ErrRemoteGateway)
	assert.Contains(t, err.Error(), "AI service failed")

	_, err = NewRemoteGateway(server.URL+"/empty", nil, util.NewRand(1)).VoteDecision(context.Background(), model.VoteRequest{VoterID: "player_2", EligibleTargets: testTargets})
	assert.ErrorIs(t, err, ErrRemoteGateway)
}

func TestRemoteGatewayRepairsUnusableAnswers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		if gjson.GetBytes(data, "action").String() == ActionVoteDecision {
			io.WriteString(w, `{"result": {"votedForPlayerId": "player_99"}}`)
			return
		}
		io.WriteString(w, `{"result": {"response": "  "}}`)
	}))
	defer server.Close()

	gateway := NewRemoteGateway(server.URL, server.Client(), util.NewRand(1))
	chat, err := gateway.ChatReply(context.Background(), model.ChatRequest{SpeakerID: "player_1", Message: "hello"})
	require.NoError(t, err)
	assert.True(t, util.IsCannedReply(chat.Response))
	assert.Contains(t, chat.UpdatedChatHistory, chat.Response)

	vote, err := gateway.VoteDecision(context.Background(), model.VoteRequest{VoterID: "player_2", EligibleTargets: testTargets})
	require.NoError(t, err)
	assert.Contains(t, []string{"player_1", "player_3", "player_12"}, vote.VotedForPlayerID)
}
