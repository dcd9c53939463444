package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidSettings = errors.New("invalid game settings")

const (
	MinPlayerCount = 3
	MaxPlayerCount = 20
)

type RuleKind string

const (
	RULE_THRESHOLD RuleKind = "threshold"
	RULE_QUORUM    RuleKind = "quorum"
)

type VoteFallback string

const (
	FALLBACK_RANDOM  VoteFallback = "random"
	FALLBACK_ABSTAIN VoteFallback = "abstain"
)

// EliminationRule decides when a tally removes a player. Only one kind is active per game.
type EliminationRule struct {
	Kind      RuleKind `json:"kind"`
	Threshold int      `json:"threshold,omitempty"`
	Quorum    float64  `json:"quorum,omitempty"`
}

func (r EliminationRule) Validate() error {
	switch r.Kind {
	case RULE_THRESHOLD:
		if r.Threshold < 1 {
			return fmt.Errorf("%w: threshold must be at least 1", ErrInvalidSettings)
		}
	case RULE_QUORUM:
		if r.Quorum <= 0 || r.Quorum > 1 {
			return fmt.Errorf("%w: quorum must be in (0, 1]", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown elimination rule %q", ErrInvalidSettings, r.Kind)
	}
	return nil
}

// Required is the vote count a player needs against them, given the number of active players.
func (r EliminationRule) Required(activeCount int) int {
	if r.Kind == RULE_QUORUM {
		return int(math.Ceil(float64(activeCount) * r.Quorum))
	}
	return r.Threshold
}

// GameSettings is what a player picks in the lobby.
type GameSettings struct {
	PlayerCount int      `json:"playerCount" binding:"required,min=3,max=20"`
	AICount     *int     `json:"aiCount,omitempty" binding:"omitempty,min=0"`
	GameMode    GameMode `json:"gameMode" binding:"required,oneof=find-ai hide-from-ai"`
}

func DefaultAICount(playerCount int) int {
	return max(1, playerCount/5)
}

// Normalize validates the settings and resolves the AI count for the mode.
func (s GameSettings) Normalize() (GameSettings, error) {
	if _, ok := GameModeFromString(string(s.GameMode)); !ok {
		return s, fmt.Errorf("%w: unknown game mode %q", ErrInvalidSettings, s.GameMode)
	}
	if s.PlayerCount < MinPlayerCount || s.PlayerCount > MaxPlayerCount {
		return s, fmt.Errorf("%w: player count must be between %d and %d", ErrInvalidSettings, MinPlayerCount, MaxPlayerCount)
	}
	aiCount := DefaultAICount(s.PlayerCount)
	if s.AICount != nil {
		aiCount = *s.AICount
	}
	if s.GameMode == M_HIDE_FROM_AI {
		aiCount = s.PlayerCount - 1
	}
	if aiCount < 1 || aiCount > s.PlayerCount-1 {
		return s, fmt.Errorf("%w: ai count must be between 1 and %d", ErrInvalidSettings, s.PlayerCount-1)
	}
	s.AICount = &aiCount
	return s, nil
}

func (s GameSettings) AIs() int {
	if s.AICount == nil {
		return DefaultAICount(s.PlayerCount)
	}
	return *s.AICount
}

// Setting holds the resolved game rules shared by every session of a server.
type Setting struct {
	ChatDuration       int             `json:"chatDuration"`
	VoteDuration       int             `json:"voteDuration"`
	RevealDuration     int             `json:"revealDuration"`
	TickInterval       time.Duration   `json:"-"`
	MaxRounds          int             `json:"maxRounds"`
	AutoStartVote      bool            `json:"autoStartVote"`
	AllowVoteChange    bool            `json:"allowVoteChange"`
	ClearChatEachRound bool            `json:"clearChatEachRound"`
	MaxMessageLength   int             `json:"maxMessageLength"`
	Rule               EliminationRule `json:"rule"`
	NPC                struct {
		Seed             int64        `json:"seed"`
		Chat             bool         `json:"chat"`
		NoticeDelay      DelayRange   `json:"-"`
		ComposeDelay     DelayRange   `json:"-"`
		VoteDelay        DelayRange   `json:"-"`
		SkipChance       float64      `json:"skipChance"`
		GutFeelingChance float64      `json:"gutFeelingChance"`
		VoteFallback     VoteFallback `json:"voteFallback"`
	} `json:"npc"`
	Timeout struct {
		ChatReply    time.Duration `json:"-"`
		VoteDecision time.Duration `json:"-"`
	} `json:"-"`
}

func NewSetting(config Config) (*Setting, error) {
	setting := Setting{
		ChatDuration:       seconds(config.Game.ChatDuration),
		VoteDuration:       seconds(config.Game.VoteDuration),
		RevealDuration:     seconds(config.Game.RevealDuration),
		TickInterval:       config.Game.TickInterval,
		MaxRounds:          config.Game.MaxRounds,
		AutoStartVote:      config.Game.AutoStartVote,
		AllowVoteChange:    config.Game.AllowVoteChange,
		ClearChatEachRound: config.Game.ClearChatEachRound,
		MaxMessageLength:   config.Game.MaxMessageLength,
		Rule: EliminationRule{
			Kind:      RuleKind(config.Game.Elimination.Rule),
			Threshold: config.Game.Elimination.Threshold,
			Quorum:    config.Game.Elimination.Quorum,
		},
	}
	if err := setting.Rule.Validate(); err != nil {
		return nil, err
	}
	if setting.ChatDuration <= 0 || setting.VoteDuration <= 0 {
		return nil, fmt.Errorf("%w: chat and vote durations must be positive", ErrInvalidSettings)
	}
	if setting.MaxRounds < 1 {
		return nil, fmt.Errorf("%w: max rounds must be at least 1", ErrInvalidSettings)
	}
	if setting.TickInterval <= 0 {
		setting.TickInterval = time.Second
	}
	setting.NPC.Seed = config.Game.NPC.Seed
	setting.NPC.Chat = config.Game.NPC.Chat
	setting.NPC.NoticeDelay = config.Game.NPC.NoticeDelay
	setting.NPC.ComposeDelay = config.Game.NPC.ComposeDelay
	setting.NPC.VoteDelay = config.Game.NPC.VoteDelay
	setting.NPC.SkipChance = config.Game.NPC.SkipChance
	setting.NPC.GutFeelingChance = config.Game.NPC.GutFeelingChance
	switch VoteFallback(config.Game.NPC.VoteFallback) {
	case FALLBACK_ABSTAIN:
		setting.NPC.VoteFallback = FALLBACK_ABSTAIN
	default:
		setting.NPC.VoteFallback = FALLBACK_RANDOM
	}
	setting.Timeout.ChatReply = config.Game.Timeout.ChatReply
	setting.Timeout.VoteDecision = config.Game.Timeout.VoteDecision
	return &setting, nil
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
