package util

import "github.com/aiwolfdial/whos-the-ai/model"

func SelectRandomPlayer(rnd Rand, players []model.Player) model.Player {
	return players[rnd.IntN(len(players))]
}

func FilterPlayers(players []model.Player, filter func(model.Player) bool) []model.Player {
	filtered := make([]model.Player, 0)
	for _, player := range players {
		if filter(player) {
			filtered = append(filtered, player)
		}
	}
	return filtered
}

func FindPlayerByID(players []model.Player, id string) *model.Player {
	for i := range players {
		if players[i].ID == id {
			return &players[i]
		}
	}
	return nil
}

func ActivePlayers(players []model.Player) []model.Player {
	return FilterPlayers(players, func(player model.Player) bool {
		return player.IsActive()
	})
}

// ActiveNPCs returns every active player the server plays for.
func ActiveNPCs(players []model.Player) []model.Player {
	return FilterPlayers(players, func(player model.Player) bool {
		return player.IsActive() && !player.IsHuman()
	})
}

// EligibleTargets lists whom voter may vote for: never itself or a kicked player,
// and in find-ai an AI never targets another AI.
func EligibleTargets(players []model.Player, voter model.Player, mode model.GameMode) []model.Player {
	return FilterPlayers(players, func(player model.Player) bool {
		if player.ID == voter.ID || !player.IsActive() {
			return false
		}
		if mode == model.M_FIND_AI && voter.IsAI && player.IsAI {
			return false
		}
		return true
	})
}

func ToVoteTargets(players []model.Player) []model.VoteTarget {
	targets := make([]model.VoteTarget, 0, len(players))
	for _, player := range players {
		targets = append(targets, model.VoteTarget{ID: player.ID, Name: player.Name})
	}
	return targets
}
