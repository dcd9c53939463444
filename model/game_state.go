package model

import "fmt"

// GameState is the whole state of one session. Values are treated as immutable:
// transitions work on a Clone and never write through a shared map or slice.
type GameState struct {
	ID              string
	Mode            GameMode
	HumanID         string
	Phase           Phase
	Players         []Player
	Messages        []Message
	PendingVotes    map[string]string
	TimeRemaining   int
	CurrentRound    int
	AliveAICount    int
	AliveHumanCount int
	LastEliminated  *Player
	Typing          map[string]bool
	Result          *Result
	Sequence        int
}

func NewInitializeGameState(id string, mode GameMode, players []Player, chatDuration int) GameState {
	state := GameState{
		ID:            id,
		Mode:          mode,
		HumanID:       HumanPlayerID,
		Phase:         P_CHAT,
		Players:       append([]Player(nil), players...),
		Messages:      []Message{},
		PendingVotes:  make(map[string]string),
		TimeRemaining: chatDuration,
		CurrentRound:  0,
		Typing:        make(map[string]bool),
	}
	state.RecountAlive()
	return state
}

func (g GameState) Clone() GameState {
	clone := g
	clone.Players = append([]Player(nil), g.Players...)
	// messages are immutable, so the backing array is shared and capped to force a copy on append
	clone.Messages = g.Messages[:len(g.Messages):len(g.Messages)]
	clone.PendingVotes = make(map[string]string, len(g.PendingVotes))
	for voter, target := range g.PendingVotes {
		clone.PendingVotes[voter] = target
	}
	clone.Typing = make(map[string]bool, len(g.Typing))
	for id, typing := range g.Typing {
		clone.Typing[id] = typing
	}
	if g.LastEliminated != nil {
		player := *g.LastEliminated
		clone.LastEliminated = &player
	}
	if g.Result != nil {
		result := *g.Result
		clone.Result = &result
	}
	return clone
}

// RecountAlive recomputes the alive counters from the roster.
func (g *GameState) RecountAlive() {
	g.AliveAICount, g.AliveHumanCount = 0, 0
	for _, player := range g.Players {
		if !player.IsActive() {
			continue
		}
		if player.IsAI {
			g.AliveAICount++
		} else {
			g.AliveHumanCount++
		}
	}
}

// NextMessageID hands out a session-unique id for messages the scheduler creates.
func (g *GameState) NextMessageID(prefix string) string {
	g.Sequence++
	return fmt.Sprintf("%s_%d", prefix, g.Sequence)
}

func (g GameState) FindPlayer(id string) (Player, bool) {
	for _, player := range g.Players {
		if player.ID == id {
			return player, true
		}
	}
	return Player{}, false
}

func (g GameState) IsActive(id string) bool {
	player, ok := g.FindPlayer(id)
	return ok && player.IsActive()
}

func (g GameState) Human() Player {
	player, _ := g.FindPlayer(g.HumanID)
	return player
}

func (g GameState) IsFinished() bool {
	return g.Phase.IsTerminal()
}

// Votes returns the pending votes in player order.
func (g GameState) Votes() []Vote {
	votes := make([]Vote, 0, len(g.PendingVotes))
	for _, player := range g.Players {
		if target, ok := g.PendingVotes[player.ID]; ok {
			votes = append(votes, Vote{VoterID: player.ID, TargetID: target})
		}
	}
	return votes
}

func (g GameState) VoteCounts() map[string]int {
	counts := make(map[string]int)
	for _, target := range g.PendingVotes {
		counts[target]++
	}
	return counts
}
