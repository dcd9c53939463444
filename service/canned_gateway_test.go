package service

import (
	"context"
	"testing"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedGateway(t *testing.T) {
	gateway := NewCannedGateway(util.NewRand(3))

	response, err := gateway.ChatReply(context.Background(), model.ChatRequest{SpeakerID: "player_1", Message: "hello"})
	require.NoError(t, err)
	assert.True(t, util.IsCannedReply(response.Response))

	request := model.VoteRequest{VoterID: "player_2", EligibleTargets: testTargets}
	ids := []string{"player_1", "player_3", "player_12"}
	for i := 0; i < 20; i++ {
		vote, err := gateway.VoteDecision(context.Background(), request)
		require.NoError(t, err)
		assert.Contains(t, ids, vote.VotedForPlayerID)
	}

	_, err = gateway.VoteDecision(context.Background(), model.VoteRequest{VoterID: "player_2"})
	assert.ErrorIs(t, err, ErrNoEligible)
}

func TestCannedGatewayHonoursCancellation(t *testing.T) {
	gateway := NewCannedGateway(util.NewRand(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.ChatReply(ctx, model.ChatRequest{SpeakerID: "player_1", Message: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = gateway.VoteDecision(ctx, model.VoteRequest{VoterID: "player_2", EligibleTargets: testTargets})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGateway(t *testing.T) {
	rnd := util.NewRand(1)

	config := model.DefaultConfig()
	gateway, err := NewGateway(config, rnd)
	require.NoError(t, err)
	assert.IsType(t, &CannedGateway{}, gateway)

	config.Gateway.Provider = "OpenAI"
	config.Gateway.Model = "gpt-4o-mini"
	gateway, err = NewGateway(config, rnd)
	require.NoError(t, err)
	assert.IsType(t, &LLMGateway{}, gateway)

	config.Gateway.Provider = ProviderRemote
	_, err = NewGateway(config, rnd)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	config.Gateway.BaseURL = "http://localhost:9/api/ai"
	gateway, err = NewGateway(config, rnd)
	require.NoError(t, err)
	assert.IsType(t, &RemoteGateway{}, gateway)

	config.Gateway.Provider = "carrier-pigeon"
	_, err = NewGateway(config, rnd)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
