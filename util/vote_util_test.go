package util

import (
	"testing"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threshold3 = model.EliminationRule{Kind: model.RULE_THRESHOLD, Threshold: 3}

func TestTallyThreshold(t *testing.T) {
	players := testRoster(5, 5)
	votes := map[string]string{
		"player_1": "player_5",
		"player_2": "player_5",
	}
	result := Tally(votes, players, threshold3)
	assert.Nil(t, result.Eliminated)
	assert.Equal(t, 2, result.Counts["player_5"])

	votes["player_3"] = "player_5"
	result = Tally(votes, players, threshold3)
	require.NotNil(t, result.Eliminated)
	assert.Equal(t, "player_5", result.Eliminated.ID)
	assert.Equal(t, model.S_KICKED, result.Eliminated.Status)
	require.NotNil(t, result.SystemMessage)
	assert.Equal(t, "Jaxon has been voted out! Their role was: AI.", result.SystemMessage.Text)

	// input roster is untouched
	assert.Equal(t, model.S_ACTIVE, players[4].Status)
	assert.Equal(t, model.S_KICKED, FindPlayerByID(result.Players, "player_5").Status)
}

func TestTallyQuorum(t *testing.T) {
	players := testRoster(5, 5)
	rule := model.EliminationRule{Kind: model.RULE_QUORUM, Quorum: 0.5}
	votes := map[string]string{
		"player_1": "player_3",
		"player_2": "player_3",
	}
	assert.Nil(t, Tally(votes, players, rule).Eliminated, "needs ceil(5*0.5)=3 votes")

	votes["player_4"] = "player_3"
	result := Tally(votes, players, rule)
	require.NotNil(t, result.Eliminated)
	assert.Equal(t, "player_3", result.Eliminated.ID)
}

func TestTallyTieEliminatesNobody(t *testing.T) {
	players := testRoster(5, 5)
	rule := model.EliminationRule{Kind: model.RULE_QUORUM, Quorum: 0.4}
	votes := map[string]string{
		"player_1": "player_3",
		"player_2": "player_3",
		"player_3": "player_5",
		"player_4": "player_5",
	}
	result := Tally(votes, players, rule)
	assert.Nil(t, result.Eliminated)
	assert.Nil(t, result.SystemMessage)
	assert.Equal(t, 2, result.Counts["player_3"])
	assert.Equal(t, 2, result.Counts["player_5"])
}

func TestCountVotesIgnoresInvalidVotes(t *testing.T) {
	players := kick(testRoster(5, 5), "player_4")
	votes := map[string]string{
		"player_1": "player_1",
		"player_2": "player_4",
		"player_4": "player_5",
		"ghost":    "player_5",
		"player_3": "player_5",
	}
	counts := CountVotes(votes, players)
	assert.Equal(t, map[string]int{"player_5": 1}, counts)
}
