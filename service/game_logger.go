package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aiwolfdial/whos-the-ai/model"
)

// GameLogger writes a compact comma separated trace of a game, one event per line.
// Free-text fields such as names and chat lines are written as quoted Go strings.
type GameLogger struct {
	mu               sync.Mutex
	logsData         map[string]*GameLog
	outputDir        string
	templateFilename string
}

type GameLog struct {
	id       string
	filename string
	logs     []string
}

func NewGameLogger(config model.Config) *GameLogger {
	return &GameLogger{
		logsData:         make(map[string]*GameLog),
		outputDir:        config.GameLogger.OutputDir,
		templateFilename: config.GameLogger.Filename,
	}
}

func (g *GameLogger) TrackStartGame(id string, players []model.Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	logData := &GameLog{
		id:       id,
		filename: expandFilename(g.templateFilename, id, ""),
		logs:     make([]string, 0, len(players)),
	}
	for _, player := range players {
		logData.logs = append(logData.logs, fmt.Sprintf("0,status,%s,%s,%s,%q", player.ID, player.RoleName(), player.Status, player.Name))
	}
	g.logsData[id] = logData
}

func (g *GameLogger) TrackEndGame(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if logData, exists := g.logsData[id]; exists {
		g.saveLog(logData)
		delete(g.logsData, id)
	}
}

func (g *GameLogger) AppendLog(id string, log string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if logData, exists := g.logsData[id]; exists {
		logData.logs = append(logData.logs, strings.ReplaceAll(log, "\n", " "))
		g.saveLog(logData)
	}
}

func (g *GameLogger) saveLog(logData *GameLog) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		slog.Error("failed to create game log directory", "path", g.outputDir, "error", err)
		return
	}
	filePath := filepath.Join(g.outputDir, fmt.Sprintf("%s.log", logData.filename))
	if err := os.WriteFile(filePath, []byte(strings.Join(logData.logs, "\n")), 0644); err != nil {
		slog.Error("failed to write game log", "path", filePath, "error", err)
	}
}
