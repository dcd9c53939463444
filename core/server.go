package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aiwolfdial/whos-the-ai/logic"
	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/service"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const reapInterval = time.Minute

type Server struct {
	config              model.Config
	upgrader            websocket.Upgrader
	sessions            *SessionStore
	gameSetting         *model.Setting
	gateway             service.Gateway
	signaled            atomic.Bool
	jsonLogger          *service.JSONLogger
	gameLogger          *service.GameLogger
	realtimeBroadcaster *service.RealtimeBroadcaster
}

func NewServer(config model.Config) (*Server, error) {
	gameSetting, err := model.NewSetting(config)
	if err != nil {
		slog.Error("failed to build game settings", "error", err)
		return nil, err
	}
	gateway, err := service.NewGateway(config, util.NewLockedRand(util.NewRand(config.Game.NPC.Seed)))
	if err != nil {
		slog.Error("failed to build gateway", "error", err)
		return nil, err
	}
	server := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessions:    NewSessionStore(config.Game.MaxSessions, config.Game.SessionTTL),
		gameSetting: gameSetting,
		gateway:     gateway,
	}
	if config.JSONLogger.Enable {
		server.jsonLogger = service.NewJSONLogger(config)
	}
	if config.GameLogger.Enable {
		server.gameLogger = service.NewGameLogger(config)
	}
	if config.RealtimeBroadcaster.Enable {
		server.realtimeBroadcaster = service.NewRealtimeBroadcaster(config)
	}
	return server, nil
}

// SetGateway swaps the reply source for games created from now on.
func (s *Server) SetGateway(gateway service.Gateway) {
	s.gateway = gateway
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Header("Server", Version.ServerHeader())

		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, Version)
	})
	router.POST("/api/games", s.createGame)
	games := router.Group("/api/games/:id", s.loadGame())
	if s.config.Server.Authentication.Enable {
		games.Use(s.verifyPlayerMiddleware())
	}
	games.GET("", s.getGame)
	games.POST("/messages", s.sendMessage)
	games.POST("/confirm", s.confirmVote)
	games.POST("/votes", s.castVote)
	games.POST("/continue", s.continueGame)
	games.DELETE("", s.deleteGame)

	router.POST("/api/ai", s.handleAI)
	router.GET("/ws", s.handleConnections)

	if s.config.RealtimeBroadcaster.Enable {
		realtimeGroup := router.Group("/realtime")
		if s.config.Server.Authentication.Enable {
			realtimeGroup.Use(s.verifyReceiverMiddleware())
		}
		realtimeGroup.Static("/", s.config.RealtimeBroadcaster.OutputDir)
	}
	return router
}

func (s *Server) Run() error {
	address := s.config.Server.HTTP.Host + ":" + strconv.Itoa(s.config.Server.HTTP.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: s.Router(),
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go s.reap(ctx)

	go func() {
		trap := make(chan os.Signal, 1)
		signal.Notify(trap, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)
		sig := <-trap
		slog.Info("received signal", "signal", sig)
		s.signaled.Store(true)
		s.gracefullyShutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down http server", "error", err)
		}
	}()

	slog.Info("server started", "host", s.config.Server.HTTP.Host, "port", s.config.Server.HTTP.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		return err
	}
	return nil
}

// gracefullyShutdown waits for running games to finish, up to the configured grace period.
func (s *Server) gracefullyShutdown() {
	deadline := time.Now().Add(s.config.Server.ShutdownGrace)
	for !s.sessions.AllFinished() && time.Now().Before(deadline) {
		time.Sleep(time.Second)
	}
	s.sessions.CloseAll()
	slog.Info("closed all game sessions")
}

func (s *Server) reap(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if count := s.sessions.Reap(now); count > 0 {
				slog.Info("reaped game sessions", "count", count, "remaining", s.sessions.Len())
			}
		}
	}
}

func (s *Server) verifyPlayerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !util.IsValidPlayerToken(s.config.Server.Authentication.Secret, requestToken(c), c.Param("id")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (s *Server) verifyReceiverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" || !util.IsValidReceiver(s.config.Server.Authentication.Secret, token) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

func (s *Server) newGame(settings model.GameSettings) (*logic.Game, error) {
	game, err := logic.NewGame(&s.config, s.gameSetting, settings, s.gateway)
	if err != nil {
		return nil, err
	}
	if s.jsonLogger != nil {
		game.SetJSONLogger(s.jsonLogger)
	}
	if s.gameLogger != nil {
		game.SetGameLogger(s.gameLogger)
	}
	if s.realtimeBroadcaster != nil {
		game.SetRealtimeBroadcaster(s.realtimeBroadcaster)
	}
	return game, nil
}
