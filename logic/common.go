package logic

import (
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/whos-the-ai/model"
)

// handleEvent runs with g.mu held. Anything slow it starts goes through a timer.
func (g *Game) handleEvent(event model.Event) {
	switch event.Type {
	case model.E_TICK:
		g.broadcast(g.newPacket("tick"))
	case model.E_PHASE_CHANGED:
		slog.Info("phase changed", "id", g.ID, "phase", event.Phase, "round", event.Round)
		if g.gameLogger != nil {
			g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,phase,%s", event.Round, event.Phase))
		}
		g.broadcast(g.newPacket("phase"))
		if event.Phase == model.P_VOTING {
			g.scheduleVotes(event.Round)
		}
	case model.E_MESSAGE_ADDED:
		message := event.Message
		slog.Info("message added", "id", g.ID, "author", message.AuthorID, "round", message.Round)
		if g.gameLogger != nil {
			g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,message,%s,%q", message.Round, message.AuthorID, message.Text))
		}
		packet := g.newPacket("message")
		view := message.View()
		packet.Message = &view
		packet.FromID = &message.AuthorID
		g.broadcast(packet)
		if message.AuthorID == g.state.HumanID {
			g.scheduleReplies(*message)
		}
	case model.E_TYPING_CHANGED:
		packet := g.newPacket("typing")
		packet.FromID = &event.PlayerID
		g.broadcast(packet)
	case model.E_VOTE_CAST:
		slog.Info("vote cast", "id", g.ID, "voter", event.PlayerID, "target", event.TargetID, "round", event.Round)
		if g.gameLogger != nil {
			g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,vote,%s,%s", event.Round, event.PlayerID, event.TargetID))
		}
		packet := g.newPacket("vote")
		packet.FromID = &event.PlayerID
		packet.ToID = &event.TargetID
		g.broadcast(packet)
	case model.E_PLAYER_ELIMINATED:
		slog.Info("player eliminated", "id", g.ID, "player", event.Player.String(), "round", event.Round)
		if g.gameLogger != nil {
			g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,eliminate,%s,%s", event.Round, event.Player.ID, event.Player.RoleName()))
		}
		packet := g.newPacket("eliminate")
		packet.ToID = &event.Player.ID
		g.broadcast(packet)
	case model.E_NO_ELIMINATION:
		slog.Info("no player eliminated", "id", g.ID, "round", event.Round)
		if g.gameLogger != nil {
			g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,eliminate,none", event.Round))
		}
		g.broadcast(g.newPacket("eliminate"))
	case model.E_GAME_FINISHED:
		g.finishGame(*event.Result)
	}
}

func (g *Game) finishGame(result model.Result) {
	if g.gameLogger != nil {
		for _, player := range g.state.Players {
			g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,status,%s,%s,%s,%q", result.Round, player.ID, player.RoleName(), player.Status, player.Name))
		}
		g.gameLogger.AppendLog(g.ID, fmt.Sprintf("%d,result,%d,%d,%s,%s", result.Round, g.state.AliveHumanCount, g.state.AliveAICount, result.Winner, result.Reason))
	}
	packet := g.newPacket("finish")
	message := result.Headline
	packet.Message = &model.Message{AuthorID: model.SystemPlayerID, AuthorName: model.SystemPlayerName, Text: message, IsSystem: true, Round: result.Round}
	g.broadcast(packet)
	if g.jsonLogger != nil {
		g.jsonLogger.TrackEndGame(g.ID, result, g.state.Players)
	}
	if g.gameLogger != nil {
		g.gameLogger.TrackEndGame(g.ID)
	}
	if g.realtimeBroadcaster != nil {
		g.realtimeBroadcaster.TrackEndGame(g.ID)
	}
	slog.Info("game finished", "id", g.ID, "winner", result.Winner, "reason", result.Reason, "round", result.Round)

	g.cancel()
	g.stopTimers()
	g.markDone()
}

func (g *Game) newPacket(event string) model.BroadcastPacket {
	g.realtimeBroadcasterPacketIdx++
	view := model.NewView(g.state)
	return model.BroadcastPacket{
		ID:    g.ID,
		Idx:   g.realtimeBroadcasterPacketIdx,
		Event: event,
		Round: g.state.CurrentRound,
		Phase: g.state.Phase,
		State: &view,
	}
}

func (g *Game) broadcast(packet model.BroadcastPacket) {
	if g.realtimeBroadcaster != nil && packet.Event != "tick" {
		g.realtimeBroadcaster.Broadcast(packet)
	}
	g.subscribersMu.Lock()
	defer g.subscribersMu.Unlock()
	for _, subscriber := range g.subscribers {
		subscriber(packet)
	}
}
