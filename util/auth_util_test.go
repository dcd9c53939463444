package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerToken(t *testing.T) {
	token, err := IssuePlayerToken("secret", "game-1", time.Hour)
	require.NoError(t, err)

	assert.True(t, IsValidPlayerToken("secret", token, "game-1"))
	assert.False(t, IsValidPlayerToken("secret", token, "game-2"))
	assert.False(t, IsValidPlayerToken("other", token, "game-1"))
	assert.False(t, IsValidReceiver("secret", token))
}

func TestReceiverToken(t *testing.T) {
	token, err := IssueReceiverToken("secret", 0)
	require.NoError(t, err)

	assert.True(t, IsValidReceiver("secret", token))
	assert.False(t, IsValidPlayerToken("secret", token, ""))
	assert.False(t, IsValidReceiver("secret", "not-a-token"))
}

func TestNonPositiveTTLNeverExpires(t *testing.T) {
	token, err := IssuePlayerToken("secret", "game-1", -time.Minute)
	require.NoError(t, err)
	assert.True(t, IsValidPlayerToken("secret", token, "game-1"))
}
