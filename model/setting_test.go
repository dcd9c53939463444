package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestGameSettingsNormalize(t *testing.T) {
	settings, err := GameSettings{PlayerCount: 10, GameMode: M_FIND_AI}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 2, settings.AIs())

	settings, err = GameSettings{PlayerCount: 4, GameMode: M_FIND_AI}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, settings.AIs())

	settings, err = GameSettings{PlayerCount: 6, AICount: intPtr(2), GameMode: M_HIDE_FROM_AI}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 5, settings.AIs())
}

func TestGameSettingsNormalizeRejects(t *testing.T) {
	cases := []GameSettings{
		{PlayerCount: 2, GameMode: M_FIND_AI},
		{PlayerCount: 21, GameMode: M_FIND_AI},
		{PlayerCount: 5, AICount: intPtr(5), GameMode: M_FIND_AI},
		{PlayerCount: 5, AICount: intPtr(0), GameMode: M_FIND_AI},
		{PlayerCount: 5, GameMode: "guess-who"},
	}
	for _, settings := range cases {
		_, err := settings.Normalize()
		assert.ErrorIs(t, err, ErrInvalidSettings, "%+v", settings)
	}
}

func TestEliminationRuleRequired(t *testing.T) {
	assert.Equal(t, 3, EliminationRule{Kind: RULE_THRESHOLD, Threshold: 3}.Required(10))
	assert.Equal(t, 3, EliminationRule{Kind: RULE_QUORUM, Quorum: 0.5}.Required(5))
	assert.Equal(t, 2, EliminationRule{Kind: RULE_QUORUM, Quorum: 0.5}.Required(4))

	assert.Error(t, EliminationRule{Kind: RULE_THRESHOLD}.Validate())
	assert.Error(t, EliminationRule{Kind: RULE_QUORUM, Quorum: 1.5}.Validate())
	assert.Error(t, EliminationRule{Kind: "majority"}.Validate())
}

func TestNewSetting(t *testing.T) {
	config := DefaultConfig()
	setting, err := NewSetting(config)
	require.NoError(t, err)
	assert.Equal(t, 360, setting.ChatDuration)
	assert.Equal(t, 60, setting.VoteDuration)
	assert.Equal(t, RULE_THRESHOLD, setting.Rule.Kind)
	assert.Equal(t, FALLBACK_RANDOM, setting.NPC.VoteFallback)
	assert.Equal(t, time.Second, setting.TickInterval)

	config.Game.VoteDuration = 0
	_, err = NewSetting(config)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}
