package core

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aiwolfdial/whos-the-ai/logic"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrTooManySessions = errors.New("too many game sessions")
)

// SessionStore holds the running games of a server, keyed by game id.
type SessionStore struct {
	maxSessions int
	ttl         time.Duration
	mu          sync.Mutex
	sessions    map[string]*logic.Game
}

func NewSessionStore(maxSessions int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		maxSessions: maxSessions,
		ttl:         ttl,
		sessions:    make(map[string]*logic.Game),
	}
}

func (ss *SessionStore) Add(game *logic.Game) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.maxSessions > 0 && len(ss.sessions) >= ss.maxSessions {
		return ErrTooManySessions
	}
	ss.sessions[game.ID] = game
	slog.Info("added game session", "id", game.ID, "sessions", len(ss.sessions))
	return nil
}

func (ss *SessionStore) Get(id string) (*logic.Game, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	game, exists := ss.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return game, nil
}

// Remove closes the game and forgets it.
func (ss *SessionStore) Remove(id string) error {
	ss.mu.Lock()
	game, exists := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()
	if !exists {
		return ErrSessionNotFound
	}
	game.Close()
	slog.Info("removed game session", "id", id)
	return nil
}

func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Reap closes and removes every session whose last human action is older than the ttl.
func (ss *SessionStore) Reap(now time.Time) int {
	if ss.ttl <= 0 {
		return 0
	}
	ss.mu.Lock()
	expired := make([]*logic.Game, 0)
	for id, game := range ss.sessions {
		if now.Sub(game.UpdatedAt()) > ss.ttl {
			expired = append(expired, game)
			delete(ss.sessions, id)
		}
	}
	ss.mu.Unlock()
	for _, game := range expired {
		game.Close()
		slog.Info("reaped idle game session", "id", game.ID)
	}
	return len(expired)
}

// AllFinished reports whether no session still has a game in progress.
func (ss *SessionStore) AllFinished() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for _, game := range ss.sessions {
		if !game.IsFinished() {
			return false
		}
	}
	return true
}

func (ss *SessionStore) CloseAll() {
	ss.mu.Lock()
	games := make([]*logic.Game, 0, len(ss.sessions))
	for id, game := range ss.sessions {
		games = append(games, game)
		delete(ss.sessions, id)
	}
	ss.mu.Unlock()
	for _, game := range games {
		game.Close()
	}
}
