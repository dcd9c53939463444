package core

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aiwolfdial/whos-the-ai/logic"
	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/service"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/tidwall/gjson"
)

const gameKey = "game"

type messageBody struct {
	Text string `json:"text" binding:"required"`
}

type voteBody struct {
	TargetID string `json:"targetId" binding:"required"`
}

func (s *Server) createGame(c *gin.Context) {
	if s.signaled.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
		return
	}
	var settings model.GameSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	game, err := s.newGame(settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.sessions.Add(game); err != nil {
		game.Close()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	game.Start()

	var token string
	if s.config.Server.Authentication.Enable {
		token, err = util.IssuePlayerToken(s.config.Server.Authentication.Secret, game.ID, s.config.Game.SessionTTL)
		if err != nil {
			slog.Error("failed to issue player token", "id", game.ID, "error", err)
			s.sessions.Remove(game.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"id": game.ID, "token": token, "state": game.View()})
}

func (s *Server) loadGame() gin.HandlerFunc {
	return func(c *gin.Context) {
		game, err := s.sessions.Get(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Set(gameKey, game)
		c.Next()
	}
}

func gameFrom(c *gin.Context) *logic.Game {
	return c.MustGet(gameKey).(*logic.Game)
}

func (s *Server) getGame(c *gin.Context) {
	c.JSON(http.StatusOK, gameFrom(c).View())
}

func (s *Server) sendMessage(c *gin.Context) {
	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	game := gameFrom(c)
	respond(c, game, game.SendMessage(body.Text))
}

func (s *Server) confirmVote(c *gin.Context) {
	game := gameFrom(c)
	respond(c, game, game.ConfirmVote())
}

func (s *Server) castVote(c *gin.Context) {
	var body voteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	game := gameFrom(c)
	respond(c, game, game.CastVote(body.TargetID))
}

func (s *Server) continueGame(c *gin.Context) {
	game := gameFrom(c)
	respond(c, game, game.Continue())
}

func (s *Server) deleteGame(c *gin.Context) {
	if err := s.sessions.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func respond(c *gin.Context, game *logic.Game, err error) {
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "state": game.View()})
		return
	}
	c.JSON(http.StatusOK, game.View())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, logic.ErrEmptyMessage), errors.Is(err, logic.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrGameClosed):
		return http.StatusGone
	case errors.Is(err, logic.ErrPhaseMismatch), errors.Is(err, logic.ErrVoteLocked),
		errors.Is(err, logic.ErrInvalidPlayer), errors.Is(err, logic.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleAI exposes the configured gateway with the {action, ...} → {result} contract
// that service.RemoteGateway speaks.
func (s *Server) handleAI(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch action := gjson.GetBytes(data, "action").String(); action {
	case service.ActionChatReply:
		var request model.ChatRequest
		if err := binding.JSON.BindBody(data, &request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		response, err := s.gateway.ChatReply(c.Request.Context(), request)
		if err != nil {
			slog.Warn("ai chat reply failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service failed", "fallback": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": response})
	case service.ActionVoteDecision:
		var request model.VoteRequest
		if err := binding.JSON.BindBody(data, &request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		response, err := s.gateway.VoteDecision(c.Request.Context(), request)
		if err != nil {
			slog.Warn("ai vote decision failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service failed", "fallback": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": response})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}

func (s *Server) handleConnections(c *gin.Context) {
	if s.signaled.Load() {
		slog.Warn("refusing connection during shutdown")
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	id := c.Query("game")
	game, err := s.sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if s.config.Server.Authentication.Enable && !util.IsValidPlayerToken(s.config.Server.Authentication.Secret, requestToken(c), id) {
		slog.Warn("invalid token", "game_id", id)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	header := c.Request.Header.Clone()
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	conn := model.NewConnection(ws, &header, id)
	// every packet carries the full view, so nothing is lost between these two lines
	view := game.View()
	conn.Send(model.BroadcastPacket{ID: id, Event: "state", Round: view.Round, Phase: view.Phase, State: &view})
	unsubscribe := game.Subscribe(conn.Send)
	go func() {
		select {
		case <-conn.Done():
		case <-game.Done():
			conn.Close()
		}
		unsubscribe()
	}()
	conn.Serve()
}
