package logic

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/oklog/ulid/v2"
)

var ErrEmptyReply = errors.New("gateway returned an empty reply")

// scheduleReplies lets every active NPC react to a human chat line. Runs with g.mu held.
func (g *Game) scheduleReplies(message model.Message) {
	phase, round := g.state.Phase, g.state.CurrentRound
	history := util.FormatChatHistory(g.state.Messages[:len(g.state.Messages)-1])
	for _, npc := range util.ActiveNPCs(g.state.Players) {
		if !npc.IsAI && !g.setting.NPC.Chat {
			continue
		}
		if g.humanizer.SkipReply() {
			slog.Info("npc skipped reply", "id", g.ID, "player", npc.String())
			continue
		}
		request := model.ChatRequest{
			SpeakerID:     message.AuthorID,
			Message:       message.Text,
			ChatHistory:   history,
			GameMode:      g.state.Mode,
			ResponderID:   npc.ID,
			ResponderName: npc.Name,
			ResponderIsAI: npc.IsAI,
		}
		g.after(g.humanizer.NoticeDelay(), func() {
			g.reply(npc, request, phase, round)
		})
	}
}

func (g *Game) reply(npc model.Player, request model.ChatRequest, phase model.Phase, round int) {
	if err := g.dispatch(model.NewTypingAction(phase, round, npc.ID, true)); err != nil {
		return
	}
	text, err := g.requestReply(npc, request)
	if err != nil {
		slog.Warn("npc reply failed, skipping", "id", g.ID, "player", npc.String(), "error", err)
		g.dispatch(model.NewTypingAction(phase, round, npc.ID, false))
		return
	}
	g.after(g.humanizer.ComposeDelay(), func() {
		message := model.NewPlayerMessage(ulid.Make().String(), npc, text, round)
		g.dispatch(model.NewMessageAction(phase, round, message))
	})
}

func (g *Game) requestReply(npc model.Player, request model.ChatRequest) (string, error) {
	ctx, cancel := g.gatewayContext(g.setting.Timeout.ChatReply)
	defer cancel()
	start := time.Now()
	response, err := g.gateway.ChatReply(ctx, request)
	if g.jsonLogger != nil {
		g.jsonLogger.TrackRequest(g.ID, npc, "chat", request, response, err, start)
	}
	if err != nil {
		return "", err
	}
	text := util.NormalizeText(response.Response, g.setting.MaxMessageLength)
	if text == "" {
		return "", ErrEmptyReply
	}
	if util.IsCannedReply(text) {
		slog.Debug("npc sent a canned reply", "id", g.ID, "player", npc.String())
	}
	return text, nil
}

func (g *Game) gatewayContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(g.ctx)
	}
	return context.WithTimeout(g.ctx, timeout)
}
