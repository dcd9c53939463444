package util

import (
	"testing"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hi there", NormalizeText("  hi \n there ", 0))
	assert.Equal(t, "", NormalizeText(" \t\n", 10))
	assert.Equal(t, "héllo", NormalizeText("héllo wörld", 5))
}

func TestFormatChatHistory(t *testing.T) {
	human := model.NewHumanPlayer()
	messages := []model.Message{
		model.NewPlayerMessage("1", human, "who's the bot", 0),
		model.NewSystemMessage("Time's up! Please cast your votes."),
	}
	assert.Equal(t, "You: who's the bot\nSystem: Time's up! Please cast your votes.", FormatChatHistory(messages))
	assert.Equal(t, "", FormatChatHistory(nil))
}

func TestAppendChatHistory(t *testing.T) {
	assert.Equal(t, "player_1: hi\nAI: yo", AppendChatHistory("", "player_1", "hi", "yo"))
	assert.Equal(t, "old\nplayer_1: hi\nAI: yo", AppendChatHistory("old", "player_1", "hi", "yo"))
}

func TestCannedReply(t *testing.T) {
	rnd := NewRand(3)
	for range 20 {
		assert.True(t, IsCannedReply(CannedReply(rnd)))
	}
}
