package util

import (
	"errors"
	"fmt"

	"github.com/aiwolfdial/whos-the-ai/model"
)

var ErrInvalidRoster = errors.New("invalid roster")

var namePool = []string{
	"Cyra", "Nexus", "Echo", "Jaxon", "Aria", "Silas", "Mira", "Orion", "Luna", "Raptor",
	"Zane", "Vesper", "Gage", "Seraph", "Cortex", "Nova", "Ronin", "Blitz", "Helia",
}

// GenerateRoster builds the players for a new game: the human first, then the NPCs.
func GenerateRoster(playerCount, aiCount int, mode model.GameMode, rnd Rand) ([]model.Player, error) {
	if playerCount < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidRoster, playerCount)
	}
	if mode == model.M_HIDE_FROM_AI {
		aiCount = playerCount - 1
	}
	if aiCount < 0 || aiCount > playerCount-1 {
		return nil, fmt.Errorf("%w: ai count %d out of range for %d players", ErrInvalidRoster, aiCount, playerCount)
	}

	names := make([]string, len(namePool))
	copy(names, namePool)
	rnd.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	npcCount := playerCount - 1
	aiIdxs := make(map[int]bool, aiCount)
	order := make([]int, npcCount)
	for i := range order {
		order[i] = i
	}
	rnd.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	for _, idx := range order[:aiCount] {
		aiIdxs[idx] = true
	}

	players := make([]model.Player, 0, playerCount)
	players = append(players, model.NewHumanPlayer())
	for i := range npcCount {
		players = append(players, model.NewPlayer(i+2, npcName(names, i), aiIdxs[i]))
	}
	return players, nil
}

func npcName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s %d", names[i%len(names)], i/len(names)+1)
}

func CountAliveTeams(players []model.Player) (int, int) {
	var humans, ais int
	for _, player := range players {
		if !player.IsActive() {
			continue
		}
		if player.IsAI {
			ais++
		} else {
			humans++
		}
	}
	return humans, ais
}

// CalcWinSideTeam decides whether the game is over after a change to the roster.
func CalcWinSideTeam(players []model.Player, mode model.GameMode) (model.Team, model.Reason) {
	humans, ais := CountAliveTeams(players)
	switch mode {
	case model.M_HIDE_FROM_AI:
		human := FindPlayerByID(players, model.HumanPlayerID)
		if human == nil || !human.IsActive() {
			return model.T_AI, model.R_HUMAN_FOUND
		}
		if ais == 0 {
			return model.T_HUMAN, model.R_HUMAN_SURVIVED
		}
	default:
		if ais == 0 {
			return model.T_HUMAN, model.R_ALL_AI_FOUND
		}
		if humans <= 1 {
			return model.T_AI, model.R_HUMANS_OUTNUMBERED
		}
	}
	return model.T_NONE, ""
}

// CalcRoundLimitWinner settles a game that ran out of rounds undecided.
func CalcRoundLimitWinner(players []model.Player, mode model.GameMode) (model.Team, model.Reason) {
	if team, reason := CalcWinSideTeam(players, mode); team != model.T_NONE {
		return team, reason
	}
	if mode == model.M_HIDE_FROM_AI {
		return model.T_HUMAN, model.R_HUMAN_SURVIVED
	}
	return model.T_AI, model.R_ROUND_LIMIT
}
