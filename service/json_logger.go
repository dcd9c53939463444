package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aiwolfdial/whos-the-ai/model"
)

// JSONLogger records every gateway round trip of a game and writes it out as one JSON document.
type JSONLogger struct {
	mu               sync.Mutex
	data             map[string]*JSONLog
	outputDir        string
	templateFilename string
}

type JSONLog struct {
	id       string
	filename string
	settings model.GameSettings
	players  []any
	result   *model.Result
	entries  []any
}

func NewJSONLogger(config model.Config) *JSONLogger {
	return &JSONLogger{
		data:             make(map[string]*JSONLog),
		outputDir:        config.JSONLogger.OutputDir,
		templateFilename: config.JSONLogger.Filename,
	}
}

func (j *JSONLogger) TrackStartGame(id string, settings model.GameSettings, players []model.Player) {
	j.mu.Lock()
	defer j.mu.Unlock()
	data := &JSONLog{
		id:       id,
		filename: expandFilename(j.templateFilename, id, settings.GameMode),
		settings: settings,
		players:  playerEntries(players),
		entries:  make([]any, 0),
	}
	j.data[id] = data
}

func (j *JSONLogger) TrackEndGame(id string, result model.Result, players []model.Player) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if data, exists := j.data[id]; exists {
		data.result = &result
		data.players = playerEntries(players)
		j.saveGameData(data)
		delete(j.data, id)
	}
}

// TrackRequest appends one gateway call. kind is "chat" or "vote".
func (j *JSONLogger) TrackRequest(id string, player model.Player, kind string, request any, response any, err error, start time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	data, exists := j.data[id]
	if !exists {
		return
	}
	entry := map[string]any{
		"player":             player.String(),
		"kind":               kind,
		"request_timestamp":  start.UnixMilli(),
		"response_timestamp": time.Now().UnixMilli(),
		"request":            request,
	}
	if err != nil {
		entry["error"] = err.Error()
	} else {
		entry["response"] = response
	}
	data.entries = append(data.entries, entry)
	j.saveGameData(data)
}

func (j *JSONLogger) saveGameData(data *JSONLog) {
	game := map[string]any{
		"game_id":  data.id,
		"settings": data.settings,
		"players":  data.players,
		"result":   data.result,
		"entries":  data.entries,
	}
	jsonData, err := json.Marshal(game)
	if err != nil {
		slog.Error("failed to encode json log", "id", data.id, "error", err)
		return
	}
	if err := os.MkdirAll(j.outputDir, 0755); err != nil {
		slog.Error("failed to create json log directory", "path", j.outputDir, "error", err)
		return
	}
	filePath := filepath.Join(j.outputDir, fmt.Sprintf("%s.json", data.filename))
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		slog.Error("failed to write json log", "path", filePath, "error", err)
	}
}

func playerEntries(players []model.Player) []any {
	entries := make([]any, 0, len(players))
	for _, player := range players {
		entries = append(entries, map[string]any{
			"id":     player.ID,
			"name":   player.Name,
			"role":   player.RoleName(),
			"status": player.Status,
		})
	}
	return entries
}

// expandFilename fills the {game_id}, {timestamp} and {mode} placeholders of a log filename template.
func expandFilename(template string, id string, mode model.GameMode) string {
	filename := strings.ReplaceAll(template, "{game_id}", id)
	filename = strings.ReplaceAll(filename, "{timestamp}", fmt.Sprintf("%d", time.Now().Unix()))
	return strings.ReplaceAll(filename, "{mode}", string(mode))
}
