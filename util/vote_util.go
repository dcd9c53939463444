package util

import (
	"fmt"
	"sort"

	"github.com/aiwolfdial/whos-the-ai/model"
)

type TallyResult struct {
	Eliminated    *model.Player
	Players       []model.Player
	SystemMessage *model.Message
	Counts        map[string]int
}

// Tally counts the valid votes and applies rule. It has no side effects: the returned
// Players is a fresh slice with the eliminated player, if any, marked kicked.
func Tally(votes map[string]string, players []model.Player, rule model.EliminationRule) TallyResult {
	result := TallyResult{
		Players: append([]model.Player(nil), players...),
		Counts:  CountVotes(votes, players),
	}
	required := rule.Required(len(ActivePlayers(players)))
	if required < 1 {
		required = 1
	}
	candidates := getMaxCountCandidates(result.Counts, required)
	if len(candidates) != 1 {
		return result
	}
	for i := range result.Players {
		if result.Players[i].ID != candidates[0] {
			continue
		}
		result.Players[i].Status = model.S_KICKED
		eliminated := result.Players[i]
		result.Eliminated = &eliminated
		message := model.NewSystemMessage(EliminationText(eliminated))
		result.SystemMessage = &message
		break
	}
	return result
}

// CountVotes ignores votes cast by or against unknown or kicked players and self-votes.
func CountVotes(votes map[string]string, players []model.Player) map[string]int {
	active := make(map[string]bool, len(players))
	for _, player := range ActivePlayers(players) {
		active[player.ID] = true
	}
	counter := make(map[string]int)
	for voter, target := range votes {
		if !active[voter] || !active[target] || voter == target {
			continue
		}
		counter[target]++
	}
	return counter
}

// getMaxCountCandidates returns every player tied at the highest count, if that count reaches required.
func getMaxCountCandidates(counter map[string]int, required int) []string {
	var max int
	for _, count := range counter {
		if count > max {
			max = count
		}
	}
	candidates := make([]string, 0)
	if max < required {
		return candidates
	}
	for id, count := range counter {
		if count == max {
			candidates = append(candidates, id)
		}
	}
	sort.Strings(candidates)
	return candidates
}

func EliminationText(player model.Player) string {
	return fmt.Sprintf("%s has been voted out! Their role was: %s.", player.Name, player.RoleName())
}
