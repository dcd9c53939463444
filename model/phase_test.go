package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseTransitions(t *testing.T) {
	assert.True(t, P_CHAT.CanTransitionTo(P_VOTE_PROMPT))
	assert.True(t, P_CHAT.CanTransitionTo(P_VOTING))
	assert.True(t, P_VOTING.CanTransitionTo(P_CHAT))
	assert.True(t, P_ELIMINATION.CanTransitionTo(P_RESULTS))
	assert.False(t, P_VOTE_PROMPT.CanTransitionTo(P_CHAT))
	assert.False(t, P_RESULTS.CanTransitionTo(P_CHAT))

	for _, phase := range []Phase{P_CHAT, P_VOTE_PROMPT, P_VOTING, P_ELIMINATION} {
		assert.True(t, phase.CanTransitionTo(P_RESULTS), phase)
		assert.False(t, phase.IsTerminal())
	}
	assert.True(t, P_RESULTS.IsTerminal())
	assert.False(t, P_VOTE_PROMPT.IsTimed())
	assert.True(t, P_ELIMINATION.IsTimed())
}
