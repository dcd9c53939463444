package logic

import (
	"errors"
	"log/slog"
	"time"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
)

// scheduleVotes staggers one vote per active NPC across the voting window. Runs with g.mu held.
func (g *Game) scheduleVotes(round int) {
	voters := util.ActiveNPCs(g.state.Players)
	window := time.Duration(max(g.setting.VoteDuration-1, 0)) * g.setting.TickInterval
	for i, voter := range voters {
		delay := util.Clamp(g.humanizer.VoteDelay(i, len(voters)), 0, window)
		g.after(delay, func() {
			g.vote(voter.ID, round)
		})
	}
}

func (g *Game) vote(voterID string, round int) {
	state := g.State()
	if state.Phase != model.P_VOTING || state.CurrentRound != round || !state.IsActive(voterID) {
		slog.Debug("npc vote is no longer wanted", "id", g.ID, "player", voterID, "round", round)
		return
	}
	voter, _ := state.FindPlayer(voterID)
	targets := util.EligibleTargets(state.Players, voter, state.Mode)
	if len(targets) == 0 {
		slog.Warn("npc has no eligible vote target", "id", g.ID, "player", voter.String())
		return
	}
	target, ok := g.decideVote(voter, targets, state)
	if !ok {
		slog.Info("npc abstained", "id", g.ID, "player", voter.String(), "round", round)
		return
	}
	err := g.dispatch(model.NewVoteAction(model.P_VOTING, round, voter.ID, target.ID))
	if err != nil && !errors.Is(err, ErrStaleAction) && !errors.Is(err, ErrInvalidPlayer) {
		slog.Warn("npc vote was rejected", "id", g.ID, "player", voter.String(), "target", target.ID, "error", err)
	}
}

// decideVote picks a target for voter. The boolean is false when the NPC abstains.
func (g *Game) decideVote(voter model.Player, targets []model.Player, state model.GameState) (model.Player, bool) {
	if !voter.IsAI {
		return g.humanizer.Pick(targets), true
	}
	if state.Mode == model.M_FIND_AI && g.humanizer.GutFeeling() {
		slog.Info("npc voted on gut feeling", "id", g.ID, "player", voter.String())
		return g.humanizer.Pick(targets), true
	}

	request := model.VoteRequest{
		VoterID:         voter.ID,
		VoterName:       voter.Name,
		EligibleTargets: util.ToVoteTargets(targets),
		ChatHistory:     util.FormatChatHistory(state.Messages),
		GameMode:        state.Mode,
	}
	ctx, cancel := g.gatewayContext(g.setting.Timeout.VoteDecision)
	defer cancel()
	start := time.Now()
	response, err := g.gateway.VoteDecision(ctx, request)
	if g.jsonLogger != nil {
		g.jsonLogger.TrackRequest(g.ID, voter, "vote", request, response, err, start)
	}
	if err != nil {
		slog.Warn("vote decision failed", "id", g.ID, "player", voter.String(), "error", err)
		if g.setting.NPC.VoteFallback == model.FALLBACK_ABSTAIN {
			return model.Player{}, false
		}
		return g.humanizer.Pick(targets), true
	}
	if target := util.FindPlayerByID(targets, response.VotedForPlayerID); target != nil {
		return *target, true
	}
	slog.Warn("vote decision named an ineligible target, picking at random", "id", g.ID, "player", voter.String(), "target", response.VotedForPlayerID)
	return g.humanizer.Pick(targets), true
}
