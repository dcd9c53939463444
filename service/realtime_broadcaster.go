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

// RealtimeBroadcaster mirrors every broadcast packet into a JSONL file per game and keeps
// games.json listing the games still in progress, for the static viewer under /realtime.
type RealtimeBroadcaster struct {
	config model.RealtimeBroadcasterConfig
	data   sync.Map
	listMu sync.Mutex
}

type RealtimeBroadcasterLog struct {
	id        string
	filename  string
	players   []any
	logs      []string
	logsMu    sync.Mutex
	updatedAt time.Time
}

func NewRealtimeBroadcaster(config model.Config) *RealtimeBroadcaster {
	rb := &RealtimeBroadcaster{
		config: config.RealtimeBroadcaster,
	}
	if err := os.MkdirAll(rb.config.OutputDir, 0755); err != nil {
		slog.Error("failed to create realtime output directory", "error", err)
		return nil
	}
	if err := os.WriteFile(filepath.Join(rb.config.OutputDir, "games.json"), []byte("[]"), 0644); err != nil {
		slog.Error("failed to initialise games list", "error", err)
		return nil
	}
	slog.Info("initialised realtime broadcaster", "output_dir", rb.config.OutputDir)
	return rb
}

func (rb *RealtimeBroadcaster) TrackStartGame(id string, players []model.Player) {
	gameLog := &RealtimeBroadcasterLog{
		id:        id,
		filename:  expandFilename(rb.config.Filename, id, ""),
		players:   playerEntries(players),
		logs:      make([]string, 0),
		updatedAt: time.Now(),
	}
	rb.data.Store(id, gameLog)
	rb.writeGamesListFile()
}

func (rb *RealtimeBroadcaster) TrackEndGame(id string) {
	value, exists := rb.data.LoadAndDelete(id)
	if !exists {
		return
	}
	gameLog := value.(*RealtimeBroadcasterLog)
	gameLog.logsMu.Lock()
	logs := append([]string(nil), gameLog.logs...)
	gameLog.logsMu.Unlock()

	rb.writeGameFile(gameLog.filename, logs)
	rb.writeGamesListFile()
}

func (rb *RealtimeBroadcaster) Broadcast(packet model.BroadcastPacket) {
	value, exists := rb.data.Load(packet.ID)
	if !exists {
		return
	}
	data, err := json.Marshal(packet)
	if err != nil {
		slog.Error("failed to encode broadcast packet", "error", err)
		return
	}
	gameLog := value.(*RealtimeBroadcasterLog)
	gameLog.logsMu.Lock()
	gameLog.logs = append(gameLog.logs, string(data))
	gameLog.updatedAt = time.Now()
	logs := append([]string(nil), gameLog.logs...)
	gameLog.logsMu.Unlock()

	rb.writeGameFile(gameLog.filename, logs)
	slog.Debug("saved broadcast packet", "game_id", packet.ID, "idx", packet.Idx)
}

func (rb *RealtimeBroadcaster) writeGamesListFile() {
	type Item struct {
		ID        string    `json:"id"`
		Filename  string    `json:"filename"`
		Players   []any     `json:"players"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	rb.listMu.Lock()
	defer rb.listMu.Unlock()
	items := make([]Item, 0)
	rb.data.Range(func(_, value any) bool {
		gameLog := value.(*RealtimeBroadcasterLog)
		gameLog.logsMu.Lock()
		items = append(items, Item{
			ID:        gameLog.id,
			Filename:  gameLog.filename,
			Players:   gameLog.players,
			UpdatedAt: gameLog.updatedAt,
		})
		gameLog.logsMu.Unlock()
		return true
	})

	data, err := json.Marshal(items)
	if err != nil {
		slog.Error("failed to encode games list", "error", err)
		return
	}
	filePath := filepath.Join(rb.config.OutputDir, "games.json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		slog.Error("failed to write games list", "error", err)
	}
}

func (rb *RealtimeBroadcaster) writeGameFile(filename string, logs []string) {
	filePath := filepath.Join(rb.config.OutputDir, fmt.Sprintf("%s.jsonl", filename))
	if err := os.WriteFile(filePath, []byte(strings.Join(logs, "\n")), 0644); err != nil {
		slog.Error("failed to write game file", "error", err, "path", filePath)
	}
}
